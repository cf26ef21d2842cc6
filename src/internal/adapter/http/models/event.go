package models

import (
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/events"
)

type EventResponse struct {
	Type        string              `json:"type"`
	AccountID   string              `json:"accountId"`
	Client      ClientResponse      `json:"client"`
	Transaction TransactionResponse `json:"transaction"`
	OccurredAt  string              `json:"occurredAt"`
}

func NewEventResponse(event events.Event) EventResponse {
	return EventResponse{
		Type:        string(event.Type),
		AccountID:   event.AccountID,
		Client:      NewClientResponse(event.Account),
		Transaction: NewTransactionResponse(event.Transaction),
		OccurredAt:  event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}
