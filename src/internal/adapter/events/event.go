package events

import (
	"context"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
)

type Type string

const (
	AccountChanged      Type = "account.changed"
	TransactionAppended Type = "transaction.appended"
)

type Event struct {
	Type        Type
	AccountID   string
	Account     domain.Account
	Transaction domain.Transaction
	OccurredAt  time.Time
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}
