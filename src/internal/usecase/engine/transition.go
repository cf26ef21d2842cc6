package engine

import (
	"fmt"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

// Transition computes the snapshot that results from applying req to account.
// req must already be normalized. The returned account keeps the input version.
func Transition(account domain.Account, req domain.MovementRequest) (domain.Account, error) {
	next := account
	amount := req.Amount

	switch req.Type {
	case domain.MovementDeposit:
		next.Balance = domain.RoundMoney(account.Balance.Add(amount))

	case domain.MovementWithdrawal:
		if err := requireFunds(account, amount); err != nil {
			return domain.Account{}, err
		}
		next.Balance = debit(account.Balance, amount)

	case domain.MovementSavingsTransfer:
		if err := requireFunds(account, amount); err != nil {
			return domain.Account{}, err
		}
		next.Balance = debit(account.Balance, amount)
		next.Savings = domain.RoundMoney(account.Savings.Add(amount))

	case domain.MovementLoanOrigination:
		if account.HasActiveLoan() {
			return domain.Account{}, fmt.Errorf("%w: %s still owed", domain.ErrActiveLoanConflict, domain.FormatMoney(account.CreditUsed))
		}
		if req.Installments <= 0 {
			return domain.Account{}, fmt.Errorf("%w: installments must be greater than zero", domain.ErrInvalidArgument)
		}
		next.LoanTotal = amount
		next.CreditUsed = amount
		next.TotalInstallments = req.Installments
		next.InstallmentValue = domain.RoundMoney(amount.Div(decimal.NewFromInt(int64(req.Installments))))

	case domain.MovementInstallmentPayment:
		if err := requireFunds(account, amount); err != nil {
			return domain.Account{}, err
		}
		debt := domain.RoundMoney(account.CreditUsed)
		if amount.GreaterThan(debt) {
			return domain.Account{}, fmt.Errorf("%w: paying %s against %s owed", domain.ErrExcessivePayment, domain.FormatMoney(amount), domain.FormatMoney(debt))
		}
		next.Balance = debit(account.Balance, amount)
		remaining := domain.RoundMoney(account.CreditUsed.Sub(amount))
		if remaining.Sign() <= 0 {
			next.CreditUsed = decimal.Zero
			next.LoanTotal = decimal.Zero
			next.InstallmentValue = decimal.Zero
			next.TotalInstallments = 0
		} else {
			next.CreditUsed = remaining
		}

	default:
		return domain.Account{}, fmt.Errorf("%w: unknown movement type %q", domain.ErrInvalidArgument, req.Type)
	}

	return next, nil
}

// requireFunds compares at cent precision, the same precision amounts are
// normalized to.
func requireFunds(account domain.Account, amount decimal.Decimal) error {
	if domain.RoundMoney(account.Balance).LessThan(amount) {
		return fmt.Errorf("%w: balance %s is below %s", domain.ErrInsufficientFunds, domain.FormatMoney(account.Balance), domain.FormatMoney(amount))
	}
	return nil
}

func debit(balance, amount decimal.Decimal) decimal.Decimal {
	next := domain.RoundMoney(domain.RoundMoney(balance).Sub(amount))
	if next.Sign() < 0 {
		return decimal.Zero
	}
	return next
}
