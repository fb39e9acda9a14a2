package ledger

import (
	"context"
	"fmt"

	"finance-tracker-backend/internal/models"

	"github.com/shopspring/decimal"
)

// BudgetPatch carries optional budget changes.
type BudgetPatch struct {
	Category *string        `json:"category"`
	Amount   *float64       `json:"amount"`
	Period   *models.Period `json:"period"`
}

func (s *Service) ListBudgets(ctx context.Context, userID string) ([]*models.Budget, error) {
	return s.store.ListBudgets(ctx, userID)
}

func (s *Service) GetBudget(ctx context.Context, userID, id string) (*models.Budget, error) {
	return s.store.GetBudget(ctx, userID, id)
}

// CreateBudget stores a budget. A second budget for the same category
// reports store.ErrDuplicate.
func (s *Service) CreateBudget(ctx context.Context, userID string, b models.Budget) (*models.Budget, error) {
	b.ID = ""
	b.UserID = userID
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateBudget(ctx, &b); err != nil {
		return nil, fmt.Errorf("create budget: %w", err)
	}
	return &b, nil
}

func (s *Service) UpdateBudget(ctx context.Context, userID, id string, p BudgetPatch) (*models.Budget, error) {
	b, err := s.store.GetBudget(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	if p.Category != nil && *p.Category != "" {
		b.Category = *p.Category
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Period != nil && *p.Period != "" {
		b.Period = *p.Period
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	return b, nil
}

func (s *Service) DeleteBudget(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteBudget(ctx, userID, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// BudgetStatuses reports, for each budget, the expenses in its category
// since the start of the current period.
func (s *Service) BudgetStatuses(ctx context.Context, userID string) ([]models.BudgetStatus, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("budget status: %w", err)
	}
	now := s.now()
	statuses := make([]models.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		start := b.Period.Start(now)
		txns, err := s.store.ListTransactions(ctx, userID, models.TransactionFilter{
			Category: b.Category,
			Type:     models.Expense,
			Start:    &start,
		})
		if err != nil {
			return nil, fmt.Errorf("budget status: %w", err)
		}
		spent := decimal.Zero
		for _, t := range txns {
			spent = spent.Add(decimal.NewFromFloat(t.Amount))
		}
		spentF, _ := spent.Float64()
		remaining, _ := decimal.NewFromFloat(b.Amount).Sub(spent).Float64()
		statuses = append(statuses, models.BudgetStatus{
			Budget:      *b,
			PeriodStart: start,
			Spent:       spentF,
			Remaining:   remaining,
		})
	}
	return statuses, nil
}
