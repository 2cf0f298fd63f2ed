package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/biogames/biogames-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the stores react to.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

type violation struct {
	sentinel error
	label    string
}

var violations = map[string]violation{
	codeUniqueViolation:     {store.ErrDuplicate, "unique violation"},
	codeForeignKeyViolation: {store.ErrInvalidEntity, "foreign key violation"},
	codeCheckViolation:      {store.ErrInvalidEntity, "check violation"},
	codeNotNullViolation:    {store.ErrInvalidEntity, "not null violation"},
}

// pgError extracts the driver error from err, or nil.
func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// MapError translates driver errors into the store sentinels. Errors it
// does not recognize are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	pgErr := pgError(err)
	if pgErr == nil {
		return err
	}
	v, ok := violations[pgErr.Code]
	if !ok {
		return err
	}
	target := pgErr.ConstraintName
	if pgErr.Code == codeNotNullViolation {
		target = pgErr.ColumnName
	}
	return fmt.Errorf("%w: %s (%s): %v", v.sentinel, v.label, target, err)
}

func IsUniqueViolation(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == codeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == codeForeignKeyViolation
}

// rowsAffected reads the affected count, reporting a driver failure as an
// error of the given entity operation.
func rowsAffected(result sql.Result, entity, operation string) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError(entity, operation, "failed to get rows affected", err)
	}
	return n, nil
}
