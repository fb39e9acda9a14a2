package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"finance-tracker-backend/internal/models"

	"github.com/google/uuid"
)

const transactionSelect = `
	SELECT t.id, t.user_id, t.account_id, t.amount, t.type, t.category, t.description, t.date, t.rating, t.created_at,
	       a.name AS account_name, a.kind AS account_kind
	FROM transactions t
	LEFT JOIN accounts a ON a.id = t.account_id AND a.user_id = t.user_id`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		t    models.Transaction
		name sql.NullString
		kind sql.NullString
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.AccountID, &t.Amount, &t.Type, &t.Category, &t.Description, &t.Date, &t.Rating, &t.CreatedAt,
		&name, &kind,
	)
	if err != nil {
		return nil, err
	}
	if name.Valid {
		n, k := name.String, models.AccountKind(kind.String)
		t.AccountName, t.AccountKind = &n, &k
	}
	return &t, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) ([]*models.Transaction, error) {
	where := []string{"t.user_id = $1"}
	args := []any{userID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Category != "" {
		add("t.category = $%d", f.Category)
	}
	if f.Type != "" {
		add("t.type = $%d", string(f.Type))
	}
	if f.AccountID != "" {
		add("t.account_id = $%d", f.AccountID)
	}
	if f.Start != nil {
		add("t.date >= $%d", *f.Start)
	}
	if f.End != nil {
		add("t.date <= $%d", *f.End)
	}

	query := transactionSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY t.date DESC, t.created_at DESC"
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	// ensure empty array ([]) instead of null when no rows
	transactions := make([]*models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: scanning: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (s *PostgresStore) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	t, err := scanTransaction(s.q.QueryRowContext(ctx, transactionSelect+` WHERE t.id = $1 AND t.user_id = $2`+s.forUpdate("t"), id, userID))
	if err != nil {
		return nil, notFound(err, "transaction", id)
	}
	return t, nil
}

func (s *PostgresStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO transactions (id, user_id, account_id, amount, type, category, description, date, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		t.ID, t.UserID, t.AccountID, t.Amount, string(t.Type), t.Category, t.Description, t.Date, t.Rating,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = $3, amount = $4, type = $5, category = $6, description = $7, date = $8, rating = $9
		WHERE id = $1 AND user_id = $2`,
		t.ID, t.UserID, t.AccountID, t.Amount, string(t.Type), t.Category, t.Description, t.Date, t.Rating)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	return requireRow(res, "transaction", t.ID)
}

func (s *PostgresStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return requireRow(res, "transaction", id)
}
