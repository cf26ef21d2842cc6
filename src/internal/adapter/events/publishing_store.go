package events

import (
	"context"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/api-sage/cashflow-ledger/src/internal/logger"
)

// PublishingStore notifies publishers after every successful commit. A failing
// publisher is logged; the commit it reports on stands.
type PublishingStore struct {
	domain.Store
	publishers []Publisher
}

func NewPublishingStore(inner domain.Store, publishers ...Publisher) *PublishingStore {
	return &PublishingStore{Store: inner, publishers: publishers}
}

func (s *PublishingStore) ConditionalCommit(ctx context.Context, accountID string, expectedVersion int64, account domain.Account, txn domain.Transaction) error {
	if err := s.Store.ConditionalCommit(ctx, accountID, expectedVersion, account, txn); err != nil {
		return err
	}

	account.ID = accountID
	account.Version = expectedVersion + 1
	occurredAt := txn.Timestamp
	s.publish(context.WithoutCancel(ctx), Event{Type: AccountChanged, AccountID: accountID, Account: account, Transaction: txn, OccurredAt: occurredAt})
	s.publish(context.WithoutCancel(ctx), Event{Type: TransactionAppended, AccountID: accountID, Account: account, Transaction: txn, OccurredAt: occurredAt})

	return nil
}

func (s *PublishingStore) publish(ctx context.Context, event Event) {
	for _, publisher := range s.publishers {
		if err := publisher.Publish(ctx, event); err != nil {
			logger.Error("event publish failed", err, logger.Fields{
				"accountId":     event.AccountID,
				"eventType":     event.Type,
				"transactionId": event.Transaction.ID,
			})
		}
	}
}
