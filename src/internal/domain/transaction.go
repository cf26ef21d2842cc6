package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementDeposit            MovementType = "deposit"
	MovementWithdrawal         MovementType = "withdrawal"
	MovementLoanOrigination    MovementType = "loan_origination"
	MovementInstallmentPayment MovementType = "installment_payment"
	MovementSavingsTransfer    MovementType = "savings_transfer"
)

var movementAliases = map[string]MovementType{
	"entry":      MovementDeposit,
	"credit_use": MovementLoanOrigination,
	"payment":    MovementInstallmentPayment,
}

// ParseMovementType accepts the canonical names and the legacy aliases.
func ParseMovementType(raw string) (MovementType, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch MovementType(value) {
	case MovementDeposit, MovementWithdrawal, MovementLoanOrigination, MovementInstallmentPayment, MovementSavingsTransfer:
		return MovementType(value), nil
	}
	if alias, ok := movementAliases[value]; ok {
		return alias, nil
	}

	return "", fmt.Errorf("%w: unknown movement type %q", ErrInvalidArgument, raw)
}

func (t MovementType) PaymentMethod() string {
	switch t {
	case MovementDeposit:
		return "Deposit"
	case MovementWithdrawal:
		return "Withdrawal"
	case MovementSavingsTransfer:
		return "Internal"
	case MovementLoanOrigination:
		return "Loan"
	case MovementInstallmentPayment:
		return "Installment Payment"
	default:
		return "Other"
	}
}

type Transaction struct {
	ID             string
	AccountID      string
	Type           MovementType
	Amount         decimal.Decimal
	Description    string
	PaymentMethod  string
	Installments   *int
	IdempotencyKey string
	Timestamp      time.Time
}
