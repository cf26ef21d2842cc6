package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/api-sage/cashflow-ledger/src/internal/usecase/engine"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func TestEngineConcurrentMovementsOnSQLite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if _, err := store.Create(ctx, domain.Account{ID: "acc-1", Email: "a@example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	eng := engine.New(store, engine.Options{MaxAttempts: 50, Backoff: time.Millisecond})

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := eng.Apply(ctx, "acc-1", domain.MovementRequest{Type: domain.MovementDeposit, Amount: decimal.RequireFromString("2.50")})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("apply: %v", err)
	}

	account, err := store.Get(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !account.Balance.Equal(decimal.RequireFromString("25.00")) || account.Version != 10 {
		t.Fatalf("expected 25.00 at version 10, got %s at %d", account.Balance, account.Version)
	}

	txns, err := store.ListByAccount(ctx, "acc-1", 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 10 {
		t.Fatalf("expected 10 records, got %d", len(txns))
	}
}
