package postgres

import (
	"database/sql"
	"errors"
)

// sqlx wraps scan errors, so compare with errors.Is rather than equality.
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
