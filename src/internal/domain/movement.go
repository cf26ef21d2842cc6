package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultDescription      = "Online operation"
	MaxDescriptionLength    = 255
	MaxIdempotencyKeyLength = 128
)

type MovementRequest struct {
	Type           MovementType
	Amount         decimal.Decimal
	Description    string
	Installments   int
	IdempotencyKey string
}

// Normalize validates the request and returns it with the amount rounded to
// cents, the description defaulted and installments cleared for every type
// other than loan origination.
func (r MovementRequest) Normalize() (MovementRequest, error) {
	var errs []string

	movementType, err := ParseMovementType(string(r.Type))
	if err != nil {
		errs = append(errs, fmt.Sprintf("type %q is not supported", r.Type))
	}
	r.Type = movementType

	if r.Amount.Sign() <= 0 {
		errs = append(errs, "amount must be greater than zero")
	} else if r.Amount = RoundMoney(r.Amount); r.Amount.Sign() <= 0 {
		errs = append(errs, "amount must be at least 0.01")
	} else if r.Amount.GreaterThan(MaxAmount) {
		errs = append(errs, fmt.Sprintf("amount must be at most %s", FormatMoney(MaxAmount)))
	}

	if r.Type == MovementLoanOrigination {
		if r.Installments <= 0 {
			errs = append(errs, "installments must be greater than zero for loan_origination")
		}
	} else {
		r.Installments = 0
	}

	r.Description = strings.TrimSpace(r.Description)
	if r.Description == "" {
		r.Description = DefaultDescription
	}
	if len(r.Description) > MaxDescriptionLength {
		errs = append(errs, fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}

	r.IdempotencyKey = strings.TrimSpace(r.IdempotencyKey)
	if len(r.IdempotencyKey) > MaxIdempotencyKeyLength {
		errs = append(errs, fmt.Sprintf("idempotency key must be at most %d characters", MaxIdempotencyKeyLength))
	}

	if len(errs) > 0 {
		return MovementRequest{}, fmt.Errorf("%w: %w", ErrInvalidArgument, errors.New(strings.Join(errs, "; ")))
	}

	return r, nil
}

// Matches reports whether a stored record was produced by an equivalent request.
func (r MovementRequest) Matches(txn Transaction) bool {
	if r.Type != txn.Type || !r.Amount.Equal(txn.Amount) {
		return false
	}
	if r.Type != MovementLoanOrigination {
		return true
	}

	return txn.Installments != nil && *txn.Installments == r.Installments
}
