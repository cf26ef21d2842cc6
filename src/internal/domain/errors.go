package domain

import "errors"

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrActiveLoanConflict  = errors.New("an active loan is still outstanding")
	ErrExcessivePayment    = errors.New("payment exceeds outstanding debt")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

// Store-level conditions. The engine absorbs these; callers never see them.
var (
	ErrVersionConflict         = errors.New("account version changed")
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
	ErrTransactionNotFound     = errors.New("transaction not found")
)

var (
	ErrEmailTaken = errors.New("email already registered")
	ErrInvalidPin = errors.New("invalid transaction pin")
)

// ErrorCode returns a stable code for err, used in API responses and metric labels.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return "OK"
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrTransactionNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidArgument):
		return "INVALID_ARGUMENT"
	case errors.Is(err, ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, ErrActiveLoanConflict):
		return "ACTIVE_LOAN_CONFLICT"
	case errors.Is(err, ErrExcessivePayment):
		return "EXCESSIVE_PAYMENT"
	case errors.Is(err, ErrConcurrencyConflict), errors.Is(err, ErrVersionConflict):
		return "CONCURRENCY_CONFLICT"
	case errors.Is(err, ErrEmailTaken):
		return "EMAIL_TAKEN"
	case errors.Is(err, ErrInvalidPin):
		return "INVALID_PIN"
	default:
		return "INTERNAL"
	}
}

// IsPermanent reports whether repeating the same request can never succeed.
func IsPermanent(err error) bool {
	switch ErrorCode(err) {
	case "NOT_FOUND", "INVALID_ARGUMENT", "INSUFFICIENT_FUNDS", "ACTIVE_LOAN_CONFLICT", "EXCESSIVE_PAYMENT", "EMAIL_TAKEN", "INVALID_PIN":
		return true
	default:
		return false
	}
}
