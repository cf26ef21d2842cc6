package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"github.com/api-sage/cashflow-ledger/src/internal/logger"
)

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

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account store create", logger.Fields{"accountId": account.ID, "email": account.Email})

	const query = `
INSERT INTO accounts (
	id,
	name,
	email,
	phone,
	balance,
	savings,
	credit_used,
	loan_total,
	installment_value,
	total_installments,
	transaction_pin_hash,
	version,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + accountColumns

	var created domain.Account
	if err := scanAccount(s.db.QueryRowContext(
		ctx,
		query,
		account.ID,
		account.Name,
		strings.ToLower(account.Email),
		account.Phone,
		account.Balance,
		account.Savings,
		account.CreditUsed,
		account.LoanTotal,
		account.InstallmentValue,
		account.TotalInstallments,
		account.TransactionPinHash,
		account.Version,
		account.CreatedAt,
		account.UpdatedAt,
	), &created); err != nil {
		if isUniqueViolation(err, emailConstraint) {
			return domain.Account{}, domain.ErrEmailTaken
		}
		logger.Error("account store create failed", err, logger.Fields{"accountId": account.ID})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return created, nil
}

func (s *Store) Get(ctx context.Context, accountID string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	var account domain.Account
	if err := scanAccount(s.db.QueryRowContext(ctx, query, accountID), &account); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	return account, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	var account domain.Account
	if err := scanAccount(s.db.QueryRowContext(ctx, query, strings.ToLower(email)), &account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account by email: %w", err)
	}

	return account, nil
}

// ConditionalCommit writes the snapshot and appends txn in one database
// transaction, only while the stored version still equals expectedVersion.
func (s *Store) ConditionalCommit(ctx context.Context, accountID string, expectedVersion int64, account domain.Account, txn domain.Transaction) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("account store begin commit failed", err, logger.Fields{"accountId": accountID})
		return fmt.Errorf("begin commit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateQuery = `
UPDATE accounts
SET balance = $3,
    savings = $4,
    credit_used = $5,
    loan_total = $6,
    installment_value = $7,
    total_installments = $8,
    version = version + 1,
    updated_at = $9
WHERE id = $1
  AND version = $2`

	result, err := tx.ExecContext(
		ctx,
		updateQuery,
		accountID,
		expectedVersion,
		account.Balance,
		account.Savings,
		account.CreditUsed,
		account.LoanTotal,
		account.InstallmentValue,
		account.TotalInstallments,
		account.UpdatedAt,
	)
	if err != nil {
		if isMalformedID(err) {
			err = domain.ErrAccountNotFound
			return err
		}
		if isNumericOverflow(err) {
			err = fmt.Errorf("%w: resulting balances exceed %s", domain.ErrInvalidArgument, domain.FormatMoney(domain.MaxAmount))
			return err
		}
		return fmt.Errorf("update account snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); err != nil {
			return fmt.Errorf("check account existence: %w", err)
		}
		if !exists {
			err = domain.ErrAccountNotFound
			return err
		}
		err = domain.ErrVersionConflict
		return err
	}

	const insertQuery = `
INSERT INTO transactions (
	id,
	account_id,
	type,
	amount,
	description,
	payment_method,
	installments,
	idempotency_key,
	occurred_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if _, err = tx.ExecContext(
		ctx,
		insertQuery,
		txn.ID,
		accountID,
		string(txn.Type),
		txn.Amount,
		txn.Description,
		txn.PaymentMethod,
		nullableInt(txn.Installments),
		nullableString(txn.IdempotencyKey),
		txn.Timestamp,
	); err != nil {
		if isUniqueViolation(err, idempotencyConstraint) {
			err = domain.ErrDuplicateIdempotencyKey
			return err
		}
		logger.Error("account store append transaction failed", err, logger.Fields{"accountId": accountID, "transactionId": txn.ID})
		return fmt.Errorf("insert transaction record: %w", err)
	}

	if err = tx.Commit(); err != nil {
		logger.Error("account store commit failed", err, logger.Fields{"accountId": accountID})
		return fmt.Errorf("commit movement: %w", err)
	}

	return nil
}

func (s *Store) FindByIdempotencyKey(ctx context.Context, accountID string, key string) (domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1 AND idempotency_key = $2`

	var txn domain.Transaction
	if err := scanTransaction(s.db.QueryRowContext(ctx, query, accountID, key), &txn); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return domain.Transaction{}, domain.ErrTransactionNotFound
		}
		return domain.Transaction{}, fmt.Errorf("find transaction by idempotency key: %w", err)
	}

	return txn, nil
}

func (s *Store) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
FROM transactions
WHERE account_id = $1
ORDER BY occurred_at DESC, id DESC
LIMIT $2`

	// LIMIT NULL returns every row.
	rows, err := s.db.QueryContext(ctx, query, accountID, sql.NullInt64{Int64: int64(limit), Valid: limit > 0})
	if err != nil {
		if isMalformedID(err) {
			return []domain.Transaction{}, nil
		}
		logger.Error("account store list transactions failed", err, logger.Fields{"accountId": accountID})
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0, max(limit, 0))
	for rows.Next() {
		var txn domain.Transaction
		if err := scanTransaction(rows, &txn); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txns, nil
}

func scanAccount(row rowScanner, account *domain.Account) error {
	return row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Phone,
		&account.Balance,
		&account.Savings,
		&account.CreditUsed,
		&account.LoanTotal,
		&account.InstallmentValue,
		&account.TotalInstallments,
		&account.TransactionPinHash,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
}

func scanTransaction(row rowScanner, txn *domain.Transaction) error {
	var (
		movementType   string
		installments   sql.NullInt64
		idempotencyKey sql.NullString
	)

	if err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&movementType,
		&txn.Amount,
		&txn.Description,
		&txn.PaymentMethod,
		&installments,
		&idempotencyKey,
		&txn.Timestamp,
	); err != nil {
		return err
	}

	txn.Type = domain.MovementType(movementType)
	if installments.Valid {
		value := int(installments.Int64)
		txn.Installments = &value
	}
	txn.IdempotencyKey = idempotencyKey.String

	return nil
}

func nullableInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullableString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
