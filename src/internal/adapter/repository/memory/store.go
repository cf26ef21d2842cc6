package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
)

// Store keeps accounts and their transaction records in process memory.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]domain.Account
	emails       map[string]string
	transactions map[string][]domain.Transaction
	keys         map[string]domain.Transaction
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		emails:       make(map[string]string),
		transactions: make(map[string][]domain.Transaction),
		keys:         make(map[string]domain.Transaction),
	}
}

func (s *Store) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return domain.Account{}, fmt.Errorf("create account: id %q already exists", account.ID)
	}
	email := strings.ToLower(account.Email)
	if email != "" {
		if _, taken := s.emails[email]; taken {
			return domain.Account{}, domain.ErrEmailTaken
		}
		s.emails[email] = account.ID
	}

	s.accounts[account.ID] = account
	return account, nil
}

func (s *Store) Get(_ context.Context, accountID string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return account, nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return s.accounts[id], nil
}

func (s *Store) ConditionalCommit(_ context.Context, accountID string, expectedVersion int64, account domain.Account, txn domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if current.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	if txn.IdempotencyKey != "" {
		if _, used := s.keys[keyOf(accountID, txn.IdempotencyKey)]; used {
			return domain.ErrDuplicateIdempotencyKey
		}
		s.keys[keyOf(accountID, txn.IdempotencyKey)] = txn
	}

	account.ID = accountID
	account.Version = expectedVersion + 1
	s.accounts[accountID] = account
	s.transactions[accountID] = append(s.transactions[accountID], txn)

	return nil
}

func (s *Store) FindByIdempotencyKey(_ context.Context, accountID string, key string) (domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.keys[keyOf(accountID, key)]
	if !ok {
		return domain.Transaction{}, domain.ErrTransactionNotFound
	}

	return txn, nil
}

// ListByAccount returns the newest records first.
func (s *Store) ListByAccount(_ context.Context, accountID string, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	stored := s.transactions[accountID]
	out := make([]domain.Transaction, len(stored))
	for i, txn := range stored {
		out[len(stored)-1-i] = txn
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func keyOf(accountID, key string) string {
	return accountID + "\x00" + key
}
