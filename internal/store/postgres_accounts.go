package store

import (
	"context"
	"database/sql"
	"fmt"

	"finance-tracker-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, user_id, name, kind, balance, credit_limit, payment_due_date, currency, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a     models.Account
		limit sql.NullFloat64
		dueAt sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Kind, &a.Balance, &limit, &dueAt, &a.Currency, &a.CreatedAt); err != nil {
		return nil, err
	}
	if a.Kind == models.KindCredit {
		a.CreditTerms = &models.CreditTerms{CreditLimit: limit.Float64, PaymentDueDate: dueAt.Time}
	}
	return &a, nil
}

func creditArgs(a *models.Account) (sql.NullFloat64, sql.NullTime) {
	if !a.IsCredit() {
		return sql.NullFloat64{}, sql.NullTime{}
	}
	return sql.NullFloat64{Float64: a.CreditLimit, Valid: true}, sql.NullTime{Time: a.PaymentDueDate, Valid: true}
}

func (s *PostgresStore) ListAccounts(ctx context.Context, userID string) ([]*models.Account, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("list accounts: scanning: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *PostgresStore) GetAccount(ctx context.Context, userID, id string) (*models.Account, error) {
	a, err := scanAccount(s.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2`+s.forUpdate("accounts"), id, userID))
	if err != nil {
		return nil, notFound(err, "account", id)
	}
	return a, nil
}

func (s *PostgresStore) CreateAccount(ctx context.Context, a *models.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	limit, due := creditArgs(a)
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO accounts (id, user_id, name, kind, balance, credit_limit, payment_due_date, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		a.ID, a.UserID, a.Name, string(a.Kind), a.Balance, limit, due, a.Currency,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateAccount(ctx context.Context, a *models.Account) error {
	limit, due := creditArgs(a)
	res, err := s.q.ExecContext(ctx, `
		UPDATE accounts SET name = $3, balance = $4, credit_limit = $5, payment_due_date = $6, currency = $7
		WHERE id = $1 AND user_id = $2`,
		a.ID, a.UserID, a.Name, a.Balance, limit, due, a.Currency)
	if err != nil {
		return fmt.Errorf("update account %s: %w", a.ID, err)
	}
	return requireRow(res, "account", a.ID)
}

func (s *PostgresStore) DeleteAccount(ctx context.Context, userID, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	return requireRow(res, "account", id)
}

// AdjustBalance increments in the database so concurrent adjustments do not
// overwrite each other.
func (s *PostgresStore) AdjustBalance(ctx context.Context, userID, id string, delta decimal.Decimal) (*models.Account, error) {
	a, err := scanAccount(s.q.QueryRowContext(ctx, `
		UPDATE accounts SET balance = balance + $3::numeric
		WHERE id = $1 AND user_id = $2
		RETURNING `+accountColumns,
		id, userID, delta.String()))
	if err != nil {
		return nil, notFound(err, "account", id)
	}
	return a, nil
}
