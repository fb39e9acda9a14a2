package store

import (
	"context"
	"fmt"

	"finance-tracker-backend/internal/models"

	"github.com/google/uuid"
)

const budgetColumns = `id, user_id, category, amount, period, created_at`

func scanBudget(row rowScanner) (*models.Budget, error) {
	var b models.Budget
	if err := row.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount, &b.Period, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PostgresStore) ListBudgets(ctx context.Context, userID string) ([]*models.Budget, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1 ORDER BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := make([]*models.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("list budgets: scanning: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (s *PostgresStore) GetBudget(ctx context.Context, userID, id string) (*models.Budget, error) {
	b, err := scanBudget(s.q.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, notFound(err, "budget", id)
	}
	return b, nil
}

func (s *PostgresStore) CreateBudget(ctx context.Context, b *models.Budget) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO budgets (id, user_id, category, amount, period)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		b.ID, b.UserID, b.Category, b.Amount, string(b.Period),
	).Scan(&b.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("budget for %s: %w", b.Category, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateBudget(ctx context.Context, b *models.Budget) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE budgets SET category = $3, amount = $4, period = $5
		WHERE id = $1 AND user_id = $2`,
		b.ID, b.UserID, b.Category, b.Amount, string(b.Period))
	if isUniqueViolation(err) {
		return fmt.Errorf("budget for %s: %w", b.Category, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("update budget %s: %w", b.ID, err)
	}
	return requireRow(res, "budget", b.ID)
}

func (s *PostgresStore) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	return requireRow(res, "budget", id)
}
