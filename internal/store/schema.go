package store

import (
	"context"
	"fmt"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name VARCHAR(100) NOT NULL,
		kind VARCHAR(10) NOT NULL CHECK (kind IN ('wallet', 'bank', 'credit')),
		balance NUMERIC(15,2) NOT NULL DEFAULT 0,
		credit_limit NUMERIC(15,2),
		payment_due_date TIMESTAMPTZ,
		currency VARCHAR(3) NOT NULL DEFAULT 'USD',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK ((kind = 'credit') = (credit_limit IS NOT NULL AND payment_due_date IS NOT NULL))
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts(user_id);

	-- No foreign key to accounts: deleting an account leaves its transactions in place.
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		amount NUMERIC(15,2) NOT NULL CHECK (amount >= 0),
		type VARCHAR(10) NOT NULL CHECK (type IN ('income', 'expense')),
		category VARCHAR(100) NOT NULL DEFAULT '',
		description VARCHAR(255) NOT NULL DEFAULT '',
		date TIMESTAMPTZ NOT NULL,
		rating NUMERIC(4,2) NOT NULL DEFAULT 0 CHECK (rating BETWEEN 0 AND 10),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date DESC);

	CREATE TABLE IF NOT EXISTS scheduled_transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		amount NUMERIC(15,2) NOT NULL CHECK (amount >= 0),
		type VARCHAR(10) NOT NULL CHECK (type IN ('income', 'expense')),
		category VARCHAR(100) NOT NULL DEFAULT '',
		description VARCHAR(255) NOT NULL DEFAULT '',
		scheduled_date TIMESTAMPTZ NOT NULL,
		is_recurring BOOLEAN NOT NULL DEFAULT FALSE,
		recurrence_type VARCHAR(10),
		recurrence_end TIMESTAMPTZ,
		status VARCHAR(10) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'processed', 'cancelled')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scheduled_status_date ON scheduled_transactions(status, scheduled_date);

	CREATE TABLE IF NOT EXISTS budgets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		category VARCHAR(100) NOT NULL,
		amount NUMERIC(15,2) NOT NULL CHECK (amount >= 0),
		period VARCHAR(10) NOT NULL DEFAULT 'monthly',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- One budget per category per user
	CREATE UNIQUE INDEX IF NOT EXISTS idx_budgets_user_category ON budgets(user_id, category);
`

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
