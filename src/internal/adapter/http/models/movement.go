package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

type SubmitMovementRequest struct {
	Type           string `json:"type"`
	Amount         string `json:"amount"`
	Description    string `json:"description,omitempty"`
	Installments   int    `json:"installments,omitempty"`
	TransactionPin string `json:"transactionPin,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

func (r SubmitMovementRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Type) == "" {
		errs = append(errs, "type is required")
	}

	amount := strings.TrimSpace(r.Amount)
	if amount == "" {
		errs = append(errs, "amount is required")
	} else if value, err := decimal.NewFromString(amount); err != nil {
		errs = append(errs, "amount must be a valid decimal")
	} else if value.Sign() <= 0 {
		errs = append(errs, "amount must be greater than zero")
	}

	if r.Installments < 0 {
		errs = append(errs, "installments cannot be negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// ToDomain assumes Validate passed.
func (r SubmitMovementRequest) ToDomain() domain.MovementRequest {
	amount, _ := decimal.NewFromString(strings.TrimSpace(r.Amount))

	return domain.MovementRequest{
		Type:           domain.MovementType(strings.TrimSpace(r.Type)),
		Amount:         amount,
		Description:    r.Description,
		Installments:   r.Installments,
		IdempotencyKey: r.IdempotencyKey,
	}
}

type TransactionResponse struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	PaymentMethod string `json:"paymentMethod"`
	Installments  *int   `json:"installments,omitempty"`
	Timestamp     string `json:"timestamp"`
}

func NewTransactionResponse(txn domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            txn.ID,
		AccountID:     txn.AccountID,
		Type:          string(txn.Type),
		Amount:        domain.FormatMoney(txn.Amount),
		Description:   txn.Description,
		PaymentMethod: txn.PaymentMethod,
		Installments:  txn.Installments,
		Timestamp:     txn.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

type MovementResponse struct {
	Client      ClientResponse      `json:"client"`
	Transaction TransactionResponse `json:"transaction"`
	Attempts    int                 `json:"attempts"`
	Replayed    bool                `json:"replayed"`
}

type TransactionListResponse struct {
	AccountID    string                `json:"accountId"`
	Count        int                   `json:"count"`
	Transactions []TransactionResponse `json:"transactions"`
}
