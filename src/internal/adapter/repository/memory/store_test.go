package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

func TestConditionalCommitAdvancesVersion(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	if _, err := store.Create(ctx, domain.Account{ID: "acc-1", Email: "Ana@Example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	next := domain.Account{Balance: decimal.NewFromInt(10)}
	if err := store.ConditionalCommit(ctx, "acc-1", 0, next, domain.Transaction{ID: "t-1"}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := store.Get(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Version != 1 || !got.Balance.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected version 1 with balance 10, got version %d balance %s", got.Version, got.Balance)
	}

	if err := store.ConditionalCommit(ctx, "acc-1", 0, next, domain.Transaction{ID: "t-2"}); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected version conflict on stale version, got %v", err)
	}
	txns, _ := store.ListByAccount(ctx, "acc-1", 0)
	if len(txns) != 1 {
		t.Fatalf("expected rejected commit to leave one record, got %d", len(txns))
	}
}

func TestConditionalCommitUnknownAccount(t *testing.T) {
	err := NewStore().ConditionalCommit(context.Background(), "missing", 0, domain.Account{}, domain.Transaction{})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConditionalCommitRejectsReusedIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_, _ = store.Create(ctx, domain.Account{ID: "acc-1"})

	if err := store.ConditionalCommit(ctx, "acc-1", 0, domain.Account{}, domain.Transaction{ID: "t-1", IdempotencyKey: "k"}); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	err := store.ConditionalCommit(ctx, "acc-1", 1, domain.Account{}, domain.Transaction{ID: "t-2", IdempotencyKey: "k"})
	if !errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
		t.Fatalf("expected duplicate key, got %v", err)
	}

	got, _ := store.Get(ctx, "acc-1")
	if got.Version != 1 {
		t.Fatalf("expected duplicate key to leave version 1, got %d", got.Version)
	}

	found, err := store.FindByIdempotencyKey(ctx, "acc-1", "k")
	if err != nil || found.ID != "t-1" {
		t.Fatalf("expected t-1 for key, got %+v (%v)", found, err)
	}
}

func TestCreateRejectsDuplicateEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_, _ = store.Create(ctx, domain.Account{ID: "a", Email: "ana@example.com"})

	_, err := store.Create(ctx, domain.Account{ID: "b", Email: "ANA@example.com"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}

	got, err := store.GetByEmail(ctx, "Ana@Example.com")
	if err != nil || got.ID != "a" {
		t.Fatalf("expected lookup to find a, got %+v (%v)", got, err)
	}
}

func TestListByAccountNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_, _ = store.Create(ctx, domain.Account{ID: "acc-1"})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		txn := domain.Transaction{ID: string(rune('a' + i)), Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := store.ConditionalCommit(ctx, "acc-1", int64(i), domain.Account{}, txn); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}

	txns, err := store.ListByAccount(ctx, "acc-1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 2 || txns[0].ID != "c" || txns[1].ID != "b" {
		t.Fatalf("expected [c b], got %+v", txns)
	}
}
