package db

import (
	"errors"
	"strings"

	pkgerrors "github.com/eps-tools/storefront-backend/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint failure. When
// constraintName is provided, the constraint (or sqlite column list) must
// appear in the error.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if !matchesCode(err, pgUniqueViolation) &&
		!errors.Is(err, gorm.ErrDuplicatedKey) &&
		!containsAny(err.Error(), "duplicate key value", "UNIQUE constraint failed") {
		return false
	}
	return constraintName == "" || strings.Contains(err.Error(), constraintName)
}

// IsForeignKeyViolation reports whether err is a referential integrity failure.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return matchesCode(err, pgForeignKeyViolation) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) ||
		containsAny(err.Error(), "violates foreign key constraint", "FOREIGN KEY constraint failed")
}

// IsCheckViolation reports whether err is a CHECK constraint failure.
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	return matchesCode(err, pgCheckViolation) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) ||
		containsAny(err.Error(), "violates check constraint", "CHECK constraint failed")
}

// IsNotFound reports whether err is gorm's missing-record sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// MapError converts persistence failures into typed API errors. Errors that
// are already typed pass through untouched.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	switch {
	case IsNotFound(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, entity+" not found")
	case IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeDuplicateKey, err, entity+" already exists")
	case IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeInvalidReference, err, entity+" references a missing record")
	case IsCheckViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, entity+" violates a constraint")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database operation failed")
	}
}

func matchesCode(err error, code string) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}

func containsAny(msg string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}
