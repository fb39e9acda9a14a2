package ledger

import (
	"context"
	"sort"

	"finance-tracker-backend/internal/models"
)

// Category is a category name seen in the user's transactions, with how
// often it was used per direction.
type Category struct {
	Name     string `json:"name"`
	Income   int    `json:"income"`
	Expenses int    `json:"expenses"`
}

// Categories lists the distinct categories the user has booked, by name.
func (s *Service) Categories(ctx context.Context, userID string) ([]Category, error) {
	txns, err := s.store.ListTransactions(ctx, userID, models.TransactionFilter{})
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*Category)
	for _, t := range txns {
		c, ok := byName[t.Category]
		if !ok {
			c = &Category{Name: t.Category}
			byName[t.Category] = c
		}
		if t.Type == models.Income {
			c.Income++
		} else {
			c.Expenses++
		}
	}

	result := make([]Category, 0, len(byName))
	for _, c := range byName {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
