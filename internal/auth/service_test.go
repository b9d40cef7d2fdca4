package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eps-tools/storefront-backend/internal/users"
	pkgAuth "github.com/eps-tools/storefront-backend/pkg/auth"
	"github.com/eps-tools/storefront-backend/pkg/config"
	"github.com/eps-tools/storefront-backend/pkg/db/dbtest"
	"github.com/eps-tools/storefront-backend/pkg/enums"
	pkgerrors "github.com/eps-tools/storefront-backend/pkg/errors"
	"github.com/eps-tools/storefront-backend/pkg/security"
)

var testJWT = config.JWTConfig{Secret: "test-secret", Issuer: "eps-storefront", ExpirationMinutes: 15}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo: users.NewRepository(dbtest.Open(t)),
		Hasher: security.NewHasher(config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		}),
		JWTConfig: testJWT,
	})
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestRegisterIssuesUserToken(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Register(context.Background(), RegisterRequest{
		Username: "ivan",
		Email:    "Ivan@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.Equal(t, "Bearer", res.TokenType)
	require.Equal(t, "ivan@example.com", res.User.Email)
	require.Equal(t, enums.UserRoleUser, res.User.Role)

	claims, err := pkgAuth.ParseAccessToken(testJWT, res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claims.UserID)
	require.False(t, claims.IsAdmin())
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Username: "ivan", Email: "ivan@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Username: "ivan", Email: "other@example.com", Password: "password1"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDuplicateKey), "got %v", err)
	require.Equal(t, "username", pkgerrors.As(err).Details().(map[string]any)["field"])

	_, err = svc.Register(ctx, RegisterRequest{Username: "petr", Email: "IVAN@example.com", Password: "password1"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDuplicateKey), "got %v", err)
	require.Equal(t, "email", pkgerrors.As(err).Details().(map[string]any)["field"])

	_, err = svc.Register(ctx, RegisterRequest{Username: "short", Email: "s@example.com", Password: "short"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.RegisterAdmin(ctx, RegisterRequest{Username: "root", Email: "root@example.com", Password: "admin-password"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginRequest{Username: "root", Password: "admin-password"})
	require.NoError(t, err)
	require.NotNil(t, res.User.LastLoginAt)

	claims, err := pkgAuth.ParseAccessToken(testJWT, res.AccessToken)
	require.NoError(t, err)
	require.True(t, claims.IsAdmin())

	_, err = svc.Login(ctx, LoginRequest{Username: "root", Password: "wrong-password"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)

	_, err = svc.Login(ctx, LoginRequest{Username: "ghost", Password: "whatever"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)

	user, err := svc.GetUser(ctx, res.User.ID)
	require.NoError(t, err)
	require.Equal(t, "root", user.Username)
}
