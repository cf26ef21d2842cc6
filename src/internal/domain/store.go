package domain

import "context"

type AccountStore interface {
	Get(ctx context.Context, accountID string) (Account, error)
	ConditionalCommit(ctx context.Context, accountID string, expectedVersion int64, account Account, txn Transaction) error
	FindByIdempotencyKey(ctx context.Context, accountID string, key string) (Transaction, error)
}

type ClientRepository interface {
	Create(ctx context.Context, account Account) (Account, error)
	Get(ctx context.Context, accountID string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
}

type TransactionRepository interface {
	// ListByAccount returns records newest first. A limit <= 0 returns all of them.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]Transaction, error)
}

type Store interface {
	AccountStore
	ClientRepository
	TransactionRepository
}
