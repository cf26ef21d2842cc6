package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/api-sage/cashflow-ledger/src/internal/logger"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Fixed width so that lexical order on the column equals time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const accountColumns = `id, name, email, phone, balance, savings, credit_used, loan_total,
	installment_value, total_installments, transaction_pin_hash, version, created_at, updated_at`

const transactionColumns = `id, account_id, type, amount, description, payment_method,
	installments, idempotency_key, occurred_at`

type Store struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Open creates the database file under path if needed and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and keeps SQLITE_BUSY out of commits.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	for i, stmt := range Migrations() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite migration %d: %w", i, err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account store create", logger.Fields{"accountId": account.ID, "email": account.Email})

	account.Email = strings.ToLower(account.Email)
	const query = `
INSERT INTO accounts (
	id, name, email, phone, balance, savings, credit_used, loan_total,
	installment_value, total_installments, transaction_pin_hash, version, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := s.db.ExecContext(
		ctx,
		query,
		account.ID,
		account.Name,
		account.Email,
		account.Phone,
		account.Balance.String(),
		account.Savings.String(),
		account.CreditUsed.String(),
		account.LoanTotal.String(),
		account.InstallmentValue.String(),
		account.TotalInstallments,
		account.TransactionPinHash,
		account.Version,
		formatTime(account.CreatedAt),
		formatTime(account.UpdatedAt),
	); err != nil {
		if isUniqueViolation(err, "accounts.email") {
			return domain.Account{}, domain.ErrEmailTaken
		}
		logger.Error("account store create failed", err, logger.Fields{"accountId": account.ID})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return s.Get(ctx, account.ID)
}

func (s *Store) Get(ctx context.Context, accountID string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

	var account domain.Account
	if err := scanAccount(s.db.QueryRowContext(ctx, query, accountID), &account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	return account, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`

	var account domain.Account
	if err := scanAccount(s.db.QueryRowContext(ctx, query, strings.ToLower(email)), &account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account by email: %w", err)
	}

	return account, nil
}

func (s *Store) ConditionalCommit(ctx context.Context, accountID string, expectedVersion int64, account domain.Account, txn domain.Transaction) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateQuery = `
UPDATE accounts
SET balance = ?, savings = ?, credit_used = ?, loan_total = ?,
    installment_value = ?, total_installments = ?,
    version = version + 1, updated_at = ?
WHERE id = ? AND version = ?`

	result, err := tx.ExecContext(
		ctx,
		updateQuery,
		account.Balance.String(),
		account.Savings.String(),
		account.CreditUsed.String(),
		account.LoanTotal.String(),
		account.InstallmentValue.String(),
		account.TotalInstallments,
		formatTime(account.UpdatedAt),
		accountID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update account snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if rows == 0 {
		var count int
		if err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM accounts WHERE id = ?`, accountID).Scan(&count); err != nil {
			return fmt.Errorf("check account existence: %w", err)
		}
		if count == 0 {
			err = domain.ErrAccountNotFound
			return err
		}
		err = domain.ErrVersionConflict
		return err
	}

	var installments sql.NullInt64
	if txn.Installments != nil {
		installments = sql.NullInt64{Int64: int64(*txn.Installments), Valid: true}
	}

	const insertQuery = `
INSERT INTO transactions (
	id, account_id, type, amount, description, payment_method, installments, idempotency_key, occurred_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err = tx.ExecContext(
		ctx,
		insertQuery,
		txn.ID,
		accountID,
		string(txn.Type),
		txn.Amount.String(),
		txn.Description,
		txn.PaymentMethod,
		installments,
		sql.NullString{String: txn.IdempotencyKey, Valid: txn.IdempotencyKey != ""},
		formatTime(txn.Timestamp),
	); err != nil {
		if isUniqueViolation(err, "transactions.account_id") {
			err = domain.ErrDuplicateIdempotencyKey
			return err
		}
		logger.Error("account store append transaction failed", err, logger.Fields{"accountId": accountID, "transactionId": txn.ID})
		return fmt.Errorf("insert transaction record: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit movement: %w", err)
	}

	return nil
}

func (s *Store) FindByIdempotencyKey(ctx context.Context, accountID string, key string) (domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = ? AND idempotency_key = ?`

	var txn domain.Transaction
	if err := scanTransaction(s.db.QueryRowContext(ctx, query, accountID, key), &txn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.ErrTransactionNotFound
		}
		return domain.Transaction{}, fmt.Errorf("find transaction by idempotency key: %w", err)
	}

	return txn, nil
}

func (s *Store) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
FROM transactions
WHERE account_id = ?
ORDER BY occurred_at DESC, rowid DESC
LIMIT ?`

	if limit <= 0 {
		// SQLite reads a negative LIMIT as no limit.
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		var txn domain.Transaction
		if err := scanTransaction(rows, &txn); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

func scanAccount(row rowScanner, account *domain.Account) error {
	var (
		balance, savings, creditUsed, loanTotal, installmentValue string
		createdAt, updatedAt                                      string
	)

	if err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Phone,
		&balance,
		&savings,
		&creditUsed,
		&loanTotal,
		&installmentValue,
		&account.TotalInstallments,
		&account.TransactionPinHash,
		&account.Version,
		&createdAt,
		&updatedAt,
	); err != nil {
		return err
	}

	var err error
	if account.Balance, err = decimal.NewFromString(balance); err != nil {
		return fmt.Errorf("parse balance: %w", err)
	}
	if account.Savings, err = decimal.NewFromString(savings); err != nil {
		return fmt.Errorf("parse savings: %w", err)
	}
	if account.CreditUsed, err = decimal.NewFromString(creditUsed); err != nil {
		return fmt.Errorf("parse credit used: %w", err)
	}
	if account.LoanTotal, err = decimal.NewFromString(loanTotal); err != nil {
		return fmt.Errorf("parse loan total: %w", err)
	}
	if account.InstallmentValue, err = decimal.NewFromString(installmentValue); err != nil {
		return fmt.Errorf("parse installment value: %w", err)
	}
	account.CreatedAt = parseTime(createdAt)
	account.UpdatedAt = parseTime(updatedAt)

	return nil
}

func scanTransaction(row rowScanner, txn *domain.Transaction) error {
	var (
		movementType, amount, occurredAt string
		installments                     sql.NullInt64
		idempotencyKey                   sql.NullString
	)

	if err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&movementType,
		&amount,
		&txn.Description,
		&txn.PaymentMethod,
		&installments,
		&idempotencyKey,
		&occurredAt,
	); err != nil {
		return err
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("parse amount: %w", err)
	}
	txn.Amount = value
	txn.Type = domain.MovementType(movementType)
	txn.IdempotencyKey = idempotencyKey.String
	txn.Timestamp = parseTime(occurredAt)
	if installments.Valid {
		n := int(installments.Int64)
		txn.Installments = &n
	}

	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, _ := time.Parse(timeLayout, value)
	return t
}

// modernc reports constraint failures as "UNIQUE constraint failed: table.column".
func isUniqueViolation(err error, column string) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}
