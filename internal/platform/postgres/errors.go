package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scry-concepts/internal/store"
)

// SQLSTATE codes the result store translates.
var sqlStateErrors = map[string]error{
	"23505": store.ErrDuplicate,     // unique_violation
	"23502": store.ErrInvalidEntity, // not_null_violation
	"23514": store.ErrInvalidEntity, // check_violation
	"22001": store.ErrInvalidEntity, // string_data_right_truncation
	"42P01": store.ErrSchemaMissing, // undefined_table
}

// MapError translates a pgx error into a store sentinel, keeping the
// original in the message. Unknown errors are returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	sentinel, ok := sqlStateErrors[pgErr.Code]
	if !ok {
		return err
	}

	detail := pgErr.ConstraintName
	if detail == "" {
		detail = pgErr.ColumnName
	}
	if detail == "" {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	return fmt.Errorf("%w (%s): %v", sentinel, detail, err)
}
