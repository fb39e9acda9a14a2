package models

import (
	"strings"
	"time"
)

// Period is the window a budget amount applies to.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// Start returns the beginning of the period containing now. Weeks start on Monday.
func (p Period) Start(now time.Time) time.Time {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodYearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	}
}

// Budget is a spending target for one category. Category is unique per user.
type Budget struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Period    Period    `json:"period"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the budget fields, defaulting Period to monthly.
func (b *Budget) Validate() error {
	b.Category = strings.TrimSpace(b.Category)
	if b.Category == "" {
		return Invalid("category", "is required")
	}
	if !finite(b.Amount) || b.Amount < 0 {
		return Invalid("amount", "must be a non-negative number")
	}
	if b.Period == "" {
		b.Period = PeriodMonthly
	}
	if !b.Period.Valid() {
		return Invalid("period", "must be one of weekly, monthly, yearly")
	}
	return nil
}

// BudgetStatus is a budget with its spending in the current period.
type BudgetStatus struct {
	Budget
	PeriodStart time.Time `json:"periodStart"`
	Spent       float64   `json:"spent"`
	Remaining   float64   `json:"remaining"`
}
