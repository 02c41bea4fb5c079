package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-event-hub/internal/domain/apperr"
)

// mapErr translates constraint violations into the shared failure kinds.
// what names the record for the error message.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflictf("%s already exists (%s)", what, pgErr.ConstraintName)
		case pgerrcode.CheckViolation:
			return apperr.Validationf("%s violates %s", what, pgErr.ConstraintName)
		case pgerrcode.NotNullViolation:
			return apperr.Validationf("%s: %s is required", what, pgErr.ColumnName)
		}
	}
	return apperr.Internal(err)
}
