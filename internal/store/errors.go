package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no row matches both the resource id and
	// the owning user. Callers cannot tell "missing" from "owned by someone else".
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned by CreateUser on a duplicate email.
	ErrEmailTaken = errors.New("email already registered")
)

// isUniqueViolation reports whether err is a PostgreSQL unique constraint violation (code 23505).
func isUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}
