package ledger

import (
	"context"
	"fmt"
	"time"

	"finance-tracker-backend/internal/models"
	"finance-tracker-backend/internal/store"
)

// NewAccount is the input to CreateAccount. CreditLimit and PaymentDueDate
// are required for credit accounts and rejected for the others.
type NewAccount struct {
	Name           string             `json:"name"`
	Type           models.AccountKind `json:"type"`
	Balance        float64            `json:"balance"`
	CreditLimit    *float64           `json:"creditLimit"`
	PaymentDueDate *time.Time         `json:"paymentDueDate"`
	Currency       string             `json:"currency"`
}

func (in NewAccount) creditTerms() (*models.CreditTerms, error) {
	if in.Type != models.KindCredit {
		if in.CreditLimit != nil || in.PaymentDueDate != nil {
			return nil, models.Invalid("creditLimit", "is only allowed on credit accounts")
		}
		return nil, nil
	}
	if in.CreditLimit == nil {
		return nil, models.Invalid("creditLimit", "is required for credit accounts")
	}
	if in.PaymentDueDate == nil {
		return nil, models.Invalid("paymentDueDate", "is required for credit accounts")
	}
	return &models.CreditTerms{CreditLimit: *in.CreditLimit, PaymentDueDate: *in.PaymentDueDate}, nil
}

// CreateAccount stores a new account for userID.
func (s *Service) CreateAccount(ctx context.Context, userID string, in NewAccount) (*models.Account, error) {
	credit, err := in.creditTerms()
	if err != nil {
		return nil, err
	}
	a, err := models.NewAccount(userID, in.Name, in.Type, in.Balance, in.Currency, credit)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// UpdateAccount edits an account. A balance in the patch replaces the stored
// balance as is; it is a manual correction and bypasses reconciliation.
func (s *Service) UpdateAccount(ctx context.Context, userID, id string, p models.AccountPatch) (*models.Account, error) {
	var a *models.Account
	err := s.store.InTx(ctx, func(tx store.Store) error {
		var err error
		if a, err = tx.GetAccount(ctx, userID, id); err != nil {
			return err
		}
		if err := p.Apply(a); err != nil {
			return err
		}
		return tx.UpdateAccount(ctx, a)
	})
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if p.Balance != nil {
		s.log.Info().Str("user_id", userID).Str("account_id", id).Float64("balance", a.Balance).
			Msg("Account balance overwritten")
	}
	return a, nil
}

// DeleteAccount removes an account. Its transactions are left in place.
func (s *Service) DeleteAccount(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteAccount(ctx, userID, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (s *Service) ListAccounts(ctx context.Context, userID string) ([]*models.Account, error) {
	return s.store.ListAccounts(ctx, userID)
}

func (s *Service) GetAccount(ctx context.Context, userID, id string) (*models.Account, error) {
	return s.store.GetAccount(ctx, userID, id)
}
