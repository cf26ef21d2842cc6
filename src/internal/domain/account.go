package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID                 string
	Name               string
	Email              string
	Phone              string
	Balance            decimal.Decimal
	Savings            decimal.Decimal
	CreditUsed         decimal.Decimal
	LoanTotal          decimal.Decimal
	InstallmentValue   decimal.Decimal
	TotalInstallments  int
	TransactionPinHash string
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasActiveLoan reports whether any debt survives rounding to cents.
func (a Account) HasActiveLoan() bool {
	return !IsZeroMoney(a.CreditUsed)
}
