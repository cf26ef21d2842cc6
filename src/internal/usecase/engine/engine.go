package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/google/uuid"
)

const (
	DefaultMaxAttempts = 5
	DefaultBackoff     = 5 * time.Millisecond
)

type Options struct {
	MaxAttempts int
	Backoff     time.Duration
	Now         func() time.Time
	NewID       func() string
}

type Result struct {
	Account     domain.Account
	Transaction domain.Transaction
	Attempts    int
	Replayed    bool
}

type Engine struct {
	store       domain.AccountStore
	maxAttempts int
	backoff     time.Duration
	now         func() time.Time
	newID       func() string
}

func New(store domain.AccountStore, opts Options) *Engine {
	e := &Engine{
		store:       store,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		now:         opts.Now,
		newID:       opts.NewID,
	}
	if e.maxAttempts <= 0 {
		e.maxAttempts = DefaultMaxAttempts
	}
	if e.backoff < 0 {
		e.backoff = 0
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}

	return e
}

// Apply validates req against the latest snapshot of the account and commits
// the new snapshot together with one transaction record. Version conflicts
// are retried against freshly read state up to the configured attempt budget.
func (e *Engine) Apply(ctx context.Context, accountID string, req domain.MovementRequest) (Result, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return Result{}, fmt.Errorf("%w: account id is required", domain.ErrInvalidArgument)
	}

	req, err := req.Normalize()
	if err != nil {
		return Result{}, err
	}

	if req.IdempotencyKey != "" {
		result, found, err := e.replay(ctx, accountID, req)
		if err != nil || found {
			return result, err
		}
	}

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		current, err := e.store.Get(ctx, accountID)
		if err != nil {
			return Result{}, err
		}

		next, err := Transition(current, req)
		if err != nil {
			return Result{}, err
		}

		now := e.now().UTC()
		next.Version = current.Version + 1
		next.UpdatedAt = now
		txn := e.record(accountID, req, now)

		err = e.store.ConditionalCommit(ctx, accountID, current.Version, next, txn)
		switch {
		case err == nil:
			return Result{Account: next, Transaction: txn, Attempts: attempt}, nil
		case errors.Is(err, domain.ErrVersionConflict):
			if attempt < e.maxAttempts {
				if err := e.wait(ctx, attempt); err != nil {
					return Result{}, err
				}
			}
		case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
			result, found, replayErr := e.replay(ctx, accountID, req)
			if replayErr != nil {
				return Result{}, replayErr
			}
			if !found {
				return Result{}, fmt.Errorf("%w: idempotency key %q", domain.ErrConcurrencyConflict, req.IdempotencyKey)
			}
			result.Attempts = attempt
			return result, nil
		default:
			return Result{}, err
		}
	}

	return Result{}, fmt.Errorf("%w: gave up after %d attempts", domain.ErrConcurrencyConflict, e.maxAttempts)
}

func (e *Engine) record(accountID string, req domain.MovementRequest, now time.Time) domain.Transaction {
	txn := domain.Transaction{
		ID:             e.newID(),
		AccountID:      accountID,
		Type:           req.Type,
		Amount:         req.Amount,
		Description:    req.Description,
		PaymentMethod:  req.Type.PaymentMethod(),
		IdempotencyKey: req.IdempotencyKey,
		Timestamp:      now,
	}
	if req.Type == domain.MovementLoanOrigination {
		installments := req.Installments
		txn.Installments = &installments
	}

	return txn
}

func (e *Engine) replay(ctx context.Context, accountID string, req domain.MovementRequest) (Result, bool, error) {
	existing, err := e.store.FindByIdempotencyKey(ctx, accountID, req.IdempotencyKey)
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}

	if !req.Matches(existing) {
		return Result{}, false, fmt.Errorf("%w: idempotency key %q was used for a different movement", domain.ErrInvalidArgument, req.IdempotencyKey)
	}

	current, err := e.store.Get(ctx, accountID)
	if err != nil {
		return Result{}, false, err
	}

	return Result{Account: current, Transaction: existing, Replayed: true}, true, nil
}

func (e *Engine) wait(ctx context.Context, attempt int) error {
	if e.backoff <= 0 {
		return nil
	}

	delay := e.backoff*time.Duration(attempt) + rand.N(e.backoff)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
