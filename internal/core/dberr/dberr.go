package dberr

import (
	"errors"

	"github.com/frahmantamala/worklog/internal"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Map converts driver errors into the application taxonomy. Unknown errors pass through untouched.
func Map(err error) error {
	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err):
		return internal.ErrDuplicate.WithCause(err)
	case IsForeignKeyViolation(err):
		return internal.NewValidationError("Referenced record does not exist", internal.ErrCodeInvalidReference).WithCause(err)
	}
	return err
}
