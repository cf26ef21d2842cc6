package queue

import (
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/events"
	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

type MovementMessage struct {
	AccountID      string          `json:"account_id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description,omitempty"`
	Installments   int             `json:"installments,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

func (m MovementMessage) ToDomain() domain.MovementRequest {
	return domain.MovementRequest{
		Type:           domain.MovementType(m.Type),
		Amount:         m.Amount,
		Description:    m.Description,
		Installments:   m.Installments,
		IdempotencyKey: m.IdempotencyKey,
	}
}

type EventMessage struct {
	Type              string    `json:"type"`
	AccountID         string    `json:"account_id"`
	Version           int64     `json:"version"`
	Balance           string    `json:"balance"`
	Savings           string    `json:"savings"`
	CreditUsed        string    `json:"credit_used"`
	LoanTotal         string    `json:"loan_total"`
	InstallmentValue  string    `json:"installment_value"`
	TotalInstallments int       `json:"total_installments"`
	TransactionID     string    `json:"transaction_id"`
	MovementType      string    `json:"movement_type"`
	Amount            string    `json:"amount"`
	Description       string    `json:"description"`
	PaymentMethod     string    `json:"payment_method"`
	Installments      *int      `json:"installments,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

func newEventMessage(event events.Event) EventMessage {
	return EventMessage{
		Type:              string(event.Type),
		AccountID:         event.AccountID,
		Version:           event.Account.Version,
		Balance:           domain.FormatMoney(event.Account.Balance),
		Savings:           domain.FormatMoney(event.Account.Savings),
		CreditUsed:        domain.FormatMoney(event.Account.CreditUsed),
		LoanTotal:         domain.FormatMoney(event.Account.LoanTotal),
		InstallmentValue:  domain.FormatMoney(event.Account.InstallmentValue),
		TotalInstallments: event.Account.TotalInstallments,
		TransactionID:     event.Transaction.ID,
		MovementType:      string(event.Transaction.Type),
		Amount:            domain.FormatMoney(event.Transaction.Amount),
		Description:       event.Transaction.Description,
		PaymentMethod:     event.Transaction.PaymentMethod,
		Installments:      event.Transaction.Installments,
		OccurredAt:        event.OccurredAt,
	}
}
