package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
)

const uniqueViolation = "23505"

// mapErr translates driver errors into apperror values. what names the missing record.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound(what + " not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperror.Conflict(what + " already exists").WithCause(err)
	}
	return err
}
