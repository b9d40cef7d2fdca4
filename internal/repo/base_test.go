package repo

import (
	"context"
	"testing"

	"github.com/eps-tools/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type row struct {
	ID   int64
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&row{}))
	return conn
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	assert.Same(t, db, base.DB(nil))
}

func TestBaseWithTx(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	assert.Equal(t, base, base.WithTx(nil))

	tx := db.Begin()
	defer tx.Rollback()
	assert.Same(t, tx, base.WithTx(tx).DB(nil))
}

func TestPageScope(t *testing.T) {
	db := newTestDB(t)
	for i := 1; i <= 25; i++ {
		require.NoError(t, db.Create(&row{Name: "row"}).Error)
	}

	var got []row
	p := pagination.Params{Page: 2, Limit: 10}
	require.NoError(t, db.Order("id").Scopes(Page(p)).Find(&got).Error)
	require.Len(t, got, 10)
	assert.Equal(t, int64(11), got[0].ID)
	assert.Equal(t, int64(20), got[9].ID)
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%drill%`, ContainsPattern("DRILL"))
	assert.Equal(t, `%50\%%`, ContainsPattern("50%"))
	assert.Equal(t, `%a\_b%`, ContainsPattern("a_b"))

	db := newTestDB(t)
	require.NoError(t, db.Create(&row{Name: "100% steel"}).Error)
	require.NoError(t, db.Create(&row{Name: "1000 steel"}).Error)

	var got []row
	require.NoError(t, db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, ContainsPattern("100%")).Find(&got).Error)
	require.Len(t, got, 1)
	assert.Equal(t, "100% steel", got[0].Name)
}
