package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
	numericValueOutOfRange    = "22003"
	emailConstraint           = "ux_accounts_email"
	idempotencyConstraint     = "ux_transactions_idempotency_key"
)

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

// isMalformedID reports a key that cannot be cast to the UUID id columns.
// No row can carry such a key.
func isMalformedID(err error) bool {
	return hasCode(err, invalidTextRepresentation)
}

func isNumericOverflow(err error) bool {
	return hasCode(err, numericValueOutOfRange)
}
