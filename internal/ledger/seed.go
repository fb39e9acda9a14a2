package ledger

import (
	"context"
	"fmt"
	"time"

	"finance-tracker-backend/internal/models"
)

type demoTransaction struct {
	daysAgo     int
	description string
	amount      float64
	category    string
	kind        models.Direction
	onCard      bool
}

// A handful of income/expense entries over the last ~30 days.
var demoTransactions = []demoTransaction{
	{28, "Monthly Salary", 3200.00, "Salary", models.Income, false},
	{25, "Freelance: Landing Page", 850.00, "Freelance", models.Income, false},
	{24, "Rent - Apartment", 1500.00, "Rent", models.Expense, false},
	{22, "Utilities - Electricity", 120.45, "Utilities", models.Expense, false},
	{20, "Groceries - Whole Foods", 96.72, "Groceries", models.Expense, true},
	{19, "Subway Pass", 45.00, "Transportation", models.Expense, false},
	{16, "Movie Night", 28.50, "Entertainment", models.Expense, true},
	{14, "Groceries - Trader Joes", 64.11, "Groceries", models.Expense, true},
	{13, "Freelance: Dashboard Charts", 600.00, "Freelance", models.Income, false},
	{11, "Utilities - Internet", 60.00, "Utilities", models.Expense, false},
	{8, "Concert Tickets", 140.00, "Entertainment", models.Expense, true},
	{6, "Groceries - Costco", 132.39, "Groceries", models.Expense, true},
	{4, "Rideshare", 22.30, "Transportation", models.Expense, false},
	{1, "Dinner Out", 54.80, "Entertainment", models.Expense, true},
}

var demoBudgets = []models.Budget{
	{Category: "Groceries", Amount: 400, Period: models.PeriodMonthly},
	{Category: "Entertainment", Amount: 200, Period: models.PeriodMonthly},
	{Category: "Transportation", Amount: 150, Period: models.PeriodMonthly},
}

// SeedDemo fills userID with demo accounts, transactions, budgets and a
// recurring rent schedule. It does nothing when the user already has
// accounts and reports whether it seeded.
func (s *Service) SeedDemo(ctx context.Context, userID string) (bool, error) {
	existing, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("checking accounts: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	now := s.now()
	limit := 2500.0
	due := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 14)

	checking, err := s.CreateAccount(ctx, userID, NewAccount{Name: "Checking", Type: models.KindBank, Balance: 1000})
	if err != nil {
		return false, fmt.Errorf("seeding demo accounts: %w", err)
	}
	if _, err := s.CreateAccount(ctx, userID, NewAccount{Name: "Wallet", Type: models.KindWallet, Balance: 80}); err != nil {
		return false, fmt.Errorf("seeding demo accounts: %w", err)
	}
	card, err := s.CreateAccount(ctx, userID, NewAccount{
		Name: "Visa", Type: models.KindCredit, CreditLimit: &limit, PaymentDueDate: &due,
	})
	if err != nil {
		return false, fmt.Errorf("seeding demo accounts: %w", err)
	}

	for _, d := range demoTransactions {
		date := now.AddDate(0, 0, -d.daysAgo)
		account := checking.ID
		if d.onCard {
			account = card.ID
		}
		if _, err := s.CreateTransaction(ctx, userID, NewTransaction{
			AccountID:   account,
			Amount:      d.amount,
			Type:        d.kind,
			Category:    d.category,
			Description: d.description,
			Date:        &date,
		}); err != nil {
			return false, fmt.Errorf("seeding demo transactions: %w", err)
		}
	}

	for _, b := range demoBudgets {
		if _, err := s.CreateBudget(ctx, userID, b); err != nil {
			return false, fmt.Errorf("seeding demo budgets: %w", err)
		}
	}

	monthly := models.Monthly
	if _, err := s.CreateScheduled(ctx, userID, NewScheduled{
		AccountID:      checking.ID,
		Amount:         1500,
		Type:           models.Expense,
		Category:       "Rent",
		Description:    "Rent - Apartment",
		ScheduledDate:  now.AddDate(0, 0, 6),
		IsRecurring:    true,
		RecurrenceType: &monthly,
	}); err != nil {
		return false, fmt.Errorf("seeding demo schedule: %w", err)
	}

	s.log.Info().Str("user_id", userID).Int("transactions", len(demoTransactions)).Msg("Demo data seeded")
	return true, nil
}
