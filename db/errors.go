package db

import (
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code raised when an insert conflicts with a
// unique index, including the partial index guarding pending requests.
const uniqueViolation = "23505"

// IsUniqueViolation returns true if the error was caused by a unique constraint
// conflict. The protocol layer relies on this to translate a lost check-then-insert race
// into a duplicate-proposal failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
