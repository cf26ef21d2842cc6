package domain

import "github.com/shopspring/decimal"

type LoanStatus string

const (
	LoanStatusNone    LoanStatus = "none"
	LoanStatusOpen    LoanStatus = "open"
	LoanStatusSettled LoanStatus = "settled"
)

type LoanProgress struct {
	Status                LoanStatus
	InstallmentsPaid      int
	InstallmentsRemaining int
	Percentage            decimal.Decimal
}

func (a Account) LoanProgress() LoanProgress {
	if a.LoanTotal.Sign() <= 0 {
		if a.HasActiveLoan() {
			return LoanProgress{Status: LoanStatusOpen, Percentage: decimal.Zero}
		}
		return LoanProgress{Status: LoanStatusNone, Percentage: decimal.Zero}
	}

	repaid := RoundMoney(a.LoanTotal.Sub(a.CreditUsed))
	progress := LoanProgress{
		Status:     LoanStatusOpen,
		Percentage: RoundMoney(repaid.Div(a.LoanTotal).Mul(decimal.NewFromInt(100))),
	}
	if !a.HasActiveLoan() {
		progress.Status = LoanStatusSettled
	}

	if a.InstallmentValue.Sign() > 0 {
		progress.InstallmentsPaid = int(repaid.Div(a.InstallmentValue).Round(0).IntPart())
	}
	progress.InstallmentsRemaining = a.TotalInstallments - progress.InstallmentsPaid
	if progress.InstallmentsRemaining < 0 {
		progress.InstallmentsRemaining = 0
	}

	return progress
}
