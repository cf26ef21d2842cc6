package sqlite

// Migrations returns the schema statements. SQLite executes one statement
// per Exec, so each entry holds exactly one.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id                   TEXT PRIMARY KEY,
			name                 TEXT NOT NULL,
			email                TEXT NOT NULL,
			phone                TEXT NOT NULL DEFAULT '',
			balance              TEXT NOT NULL DEFAULT '0',
			savings              TEXT NOT NULL DEFAULT '0',
			credit_used          TEXT NOT NULL DEFAULT '0',
			loan_total           TEXT NOT NULL DEFAULT '0',
			installment_value    TEXT NOT NULL DEFAULT '0',
			total_installments   INTEGER NOT NULL DEFAULT 0,
			transaction_pin_hash TEXT NOT NULL DEFAULT '',
			version              INTEGER NOT NULL DEFAULT 0,
			created_at           TEXT NOT NULL,
			updated_at           TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_accounts_email ON accounts(email)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id              TEXT PRIMARY KEY,
			account_id      TEXT NOT NULL REFERENCES accounts(id),
			type            TEXT NOT NULL,
			amount          TEXT NOT NULL,
			description     TEXT NOT NULL,
			payment_method  TEXT NOT NULL,
			installments    INTEGER,
			idempotency_key TEXT,
			occurred_at     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_transactions_account_occurred_at ON transactions(account_id, occurred_at)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_transactions_idempotency_key
			ON transactions(account_id, idempotency_key) WHERE idempotency_key IS NOT NULL`,
	}
}
