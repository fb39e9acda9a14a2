// Package summary computes read-only totals over a user's transactions and
// accounts. Nothing here is cached; callers recompute per request.
package summary

import (
	"sort"

	"finance-tracker-backend/internal/models"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// AccountRow is the per-account line of a Summary.
type AccountRow struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Type        models.AccountKind `json:"type"`
	Balance     float64            `json:"balance"`
	CreditLimit float64            `json:"creditLimit"`
	Utilization float64            `json:"utilization"`
}

// Summary holds the transaction and account totals.
type Summary struct {
	TotalIncome       float64            `json:"totalIncome"`
	TotalExpenses     float64            `json:"totalExpenses"`
	NetBalance        float64            `json:"netBalance"`
	TransactionCount  int                `json:"transactionCount"`
	CategoryBreakdown map[string]float64 `json:"categoryBreakdown"`
	ByCategory        []CategoryTotal    `json:"byCategory"`

	// TotalBalance is cash held minus credit owed.
	TotalBalance     float64      `json:"totalBalance"`
	TotalCashBalance float64      `json:"totalCashBalance"`
	TotalCreditUsed  float64      `json:"totalCreditUsed"`
	TotalCreditLimit float64      `json:"totalCreditLimit"`
	CreditUsage      float64      `json:"creditUsage"`
	Accounts         []AccountRow `json:"accounts"`
}

// TransactionTotals sums income and expenses and breaks expenses down by
// category. Income never appears in the breakdown.
type TransactionTotals struct {
	Income     decimal.Decimal
	Expenses   decimal.Decimal
	ByCategory map[string]decimal.Decimal
	Count      int
}

// Transactions computes TransactionTotals over txns.
func Transactions(txns []*models.Transaction) TransactionTotals {
	totals := TransactionTotals{
		Income:     decimal.Zero,
		Expenses:   decimal.Zero,
		ByCategory: make(map[string]decimal.Decimal),
	}
	for _, t := range txns {
		amount := decimal.NewFromFloat(t.Amount)
		switch t.Type {
		case models.Income:
			totals.Income = totals.Income.Add(amount)
		case models.Expense:
			totals.Expenses = totals.Expenses.Add(amount)
			totals.ByCategory[t.Category] = totals.ByCategory[t.Category].Add(amount)
		}
		totals.Count++
	}
	return totals
}

// AccountTotals are the balance sums over an account set.
type AccountTotals struct {
	Cash        decimal.Decimal
	CreditUsed  decimal.Decimal
	CreditLimit decimal.Decimal
}

// Accounts sums cash balances of wallet and bank accounts and the used and
// available credit of credit accounts.
func Accounts(accounts []*models.Account) AccountTotals {
	totals := AccountTotals{Cash: decimal.Zero, CreditUsed: decimal.Zero, CreditLimit: decimal.Zero}
	for _, a := range accounts {
		if a.IsCredit() {
			totals.CreditUsed = totals.CreditUsed.Add(decimal.NewFromFloat(a.Balance))
			totals.CreditLimit = totals.CreditLimit.Add(decimal.NewFromFloat(a.CreditLimit))
			continue
		}
		totals.Cash = totals.Cash.Add(decimal.NewFromFloat(a.Balance))
	}
	return totals
}

// Utilization is used/limit as a percentage, 0 when limit is not positive.
func (t AccountTotals) Utilization() float64 {
	if !t.CreditLimit.IsPositive() {
		return 0
	}
	pct, _ := t.CreditUsed.Div(t.CreditLimit).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

func f64(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}

// Compute builds the full Summary.
func Compute(txns []*models.Transaction, accounts []*models.Account) Summary {
	tt := Transactions(txns)
	at := Accounts(accounts)

	s := Summary{
		TotalIncome:       f64(tt.Income),
		TotalExpenses:     f64(tt.Expenses),
		NetBalance:        f64(tt.Income.Sub(tt.Expenses)),
		TransactionCount:  tt.Count,
		CategoryBreakdown: make(map[string]float64, len(tt.ByCategory)),
		ByCategory:        make([]CategoryTotal, 0, len(tt.ByCategory)),
		TotalBalance:      f64(at.Cash.Sub(at.CreditUsed)),
		TotalCashBalance:  f64(at.Cash),
		TotalCreditUsed:   f64(at.CreditUsed),
		TotalCreditLimit:  f64(at.CreditLimit),
		CreditUsage:       at.Utilization(),
		Accounts:          make([]AccountRow, 0, len(accounts)),
	}
	for category, total := range tt.ByCategory {
		s.CategoryBreakdown[category] = f64(total)
		s.ByCategory = append(s.ByCategory, CategoryTotal{Category: category, Total: f64(total)})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Total == s.ByCategory[j].Total {
			return s.ByCategory[i].Category < s.ByCategory[j].Category
		}
		return s.ByCategory[i].Total > s.ByCategory[j].Total
	})
	for _, a := range accounts {
		row := AccountRow{ID: a.ID, Name: a.Name, Type: a.Kind, Balance: a.Balance}
		if a.IsCredit() {
			row.CreditLimit = a.CreditLimit
			row.Utilization = a.Utilization()
		}
		s.Accounts = append(s.Accounts, row)
	}
	return s
}
