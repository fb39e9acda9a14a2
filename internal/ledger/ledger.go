// Package ledger keeps account balances consistent with the transactions that
// reference them. Every operation takes the acting user's id explicitly and
// runs its reads and writes inside one store transaction, so a failure part
// way through leaves no partial effect.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker-backend/internal/models"
	"finance-tracker-backend/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Service implements the balance-affecting operations and the owner-scoped
// CRUD around them.
type Service struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for processing dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service over st.
func New(st store.Store, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{store: st, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store for read-only callers.
func (s *Service) Store() store.Store { return s.store }

// adjust adds delta to an account balance. A zero delta is not written.
func (s *Service) adjust(ctx context.Context, tx store.Store, userID, accountID string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	acct, err := tx.AdjustBalance(ctx, userID, accountID, delta)
	if err != nil {
		return err
	}
	s.log.Debug().
		Str("user_id", userID).
		Str("account_id", accountID).
		Str("delta", delta.String()).
		Float64("balance", acct.Balance).
		Msg("Account balance adjusted")
	return nil
}

// reverse removes delta from an account that may have been deleted. A
// missing account is skipped.
func (s *Service) reverse(ctx context.Context, tx store.Store, userID, accountID string, delta decimal.Decimal) error {
	err := s.adjust(ctx, tx, userID, accountID, delta.Neg())
	if errors.Is(err, store.ErrNotFound) {
		s.log.Warn().
			Str("user_id", userID).
			Str("account_id", accountID).
			Msg("Account missing, balance reversal skipped")
		return nil
	}
	return err
}

// NewTransaction is the input to CreateTransaction. Date defaults to now and
// Rating to 0.
type NewTransaction struct {
	AccountID   string           `json:"accountId"`
	Amount      float64          `json:"amount"`
	Type        models.Direction `json:"type"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Date        *time.Time       `json:"date"`
	Rating      *float64         `json:"rating"`
}

func (s *Service) buildTransaction(userID string, in NewTransaction) (*models.Transaction, error) {
	t := &models.Transaction{
		UserID:      userID,
		AccountID:   in.AccountID,
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
		Description: in.Description,
		Date:        s.now(),
	}
	if in.Date != nil && !in.Date.IsZero() {
		t.Date = *in.Date
	}
	if in.Rating != nil {
		t.Rating = *in.Rating
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTransaction records a transaction and applies its delta to the
// account. The account must exist and belong to userID.
func (s *Service) CreateTransaction(ctx context.Context, userID string, in NewTransaction) (*models.Transaction, error) {
	t, err := s.buildTransaction(userID, in)
	if err != nil {
		return nil, err
	}
	err = s.store.InTx(ctx, func(tx store.Store) error {
		return s.apply(ctx, tx, t)
	})
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (s *Service) apply(ctx context.Context, tx store.Store, t *models.Transaction) error {
	// Checked even for a zero delta so the ownership rule always holds.
	if _, err := tx.GetAccount(ctx, t.UserID, t.AccountID); err != nil {
		return err
	}
	if err := s.adjust(ctx, tx, t.UserID, t.AccountID, t.Delta()); err != nil {
		return err
	}
	return tx.CreateTransaction(ctx, t)
}

// TransactionPatch carries optional transaction changes. Empty strings are
// treated as absent.
type TransactionPatch struct {
	AccountID   *string           `json:"accountId"`
	Amount      *float64          `json:"amount"`
	Type        *models.Direction `json:"type"`
	Category    *string           `json:"category"`
	Description *string           `json:"description"`
	Date        *time.Time        `json:"date"`
	Rating      *float64          `json:"rating"`
}

func (p TransactionPatch) validate() error {
	if p.Amount != nil {
		if err := models.ValidateAmount(*p.Amount); err != nil {
			return err
		}
	}
	if p.Type != nil && *p.Type != "" && !p.Type.Valid() {
		return models.Invalid("type", "must be income or expense")
	}
	if p.Rating != nil {
		if err := models.ValidateRating(*p.Rating); err != nil {
			return err
		}
	}
	return nil
}

func (p TransactionPatch) applyTo(t *models.Transaction) {
	if p.AccountID != nil && *p.AccountID != "" {
		t.AccountID = *p.AccountID
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil && *p.Type != "" {
		t.Type = *p.Type
	}
	if p.Category != nil && *p.Category != "" {
		t.Category = *p.Category
	}
	if p.Description != nil && *p.Description != "" {
		t.Description = *p.Description
	}
	if p.Date != nil && !p.Date.IsZero() {
		t.Date = *p.Date
	}
	if p.Rating != nil {
		t.Rating = *p.Rating
	}
}

// UpdateTransaction changes a transaction. The old effect is always computed
// from the stored record, never from the patch. When the account changes the
// old effect leaves the old account and the new effect lands on the new one.
func (s *Service) UpdateTransaction(ctx context.Context, userID, id string, p TransactionPatch) (*models.Transaction, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var updated *models.Transaction
	err := s.store.InTx(ctx, func(tx store.Store) error {
		old, err := tx.GetTransaction(ctx, userID, id)
		if err != nil {
			return err
		}
		next := *old
		p.applyTo(&next)

		if next.AccountID != old.AccountID {
			if _, err := tx.GetAccount(ctx, userID, next.AccountID); err != nil {
				return err
			}
			if err := s.reverse(ctx, tx, userID, old.AccountID, old.Delta()); err != nil {
				return err
			}
			if err := s.adjust(ctx, tx, userID, next.AccountID, next.Delta()); err != nil {
				return err
			}
		} else if net := next.Delta().Sub(old.Delta()); !net.IsZero() {
			err := s.adjust(ctx, tx, userID, old.AccountID, net)
			if errors.Is(err, store.ErrNotFound) {
				s.log.Warn().Str("user_id", userID).Str("account_id", old.AccountID).
					Msg("Account missing, balance adjustment skipped")
			} else if err != nil {
				return err
			}
		}

		if err := tx.UpdateTransaction(ctx, &next); err != nil {
			return err
		}
		updated, err = tx.GetTransaction(ctx, userID, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its effect. If the
// account no longer exists the transaction is still deleted.
func (s *Service) DeleteTransaction(ctx context.Context, userID, id string) error {
	err := s.store.InTx(ctx, func(tx store.Store) error {
		t, err := tx.GetTransaction(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := s.reverse(ctx, tx, userID, t.AccountID, t.Delta()); err != nil {
			return err
		}
		return tx.DeleteTransaction(ctx, userID, id)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// SetRating updates only the rating. Balances are untouched.
func (s *Service) SetRating(ctx context.Context, userID, id string, rating float64) (*models.Transaction, error) {
	if err := models.ValidateRating(rating); err != nil {
		return nil, err
	}
	var t *models.Transaction
	err := s.store.InTx(ctx, func(tx store.Store) error {
		var err error
		if t, err = tx.GetTransaction(ctx, userID, id); err != nil {
			return err
		}
		t.Rating = rating
		return tx.UpdateTransaction(ctx, t)
	})
	if err != nil {
		return nil, fmt.Errorf("set rating: %w", err)
	}
	return t, nil
}

// ListTransactions returns the user's transactions newest first.
func (s *Service) ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) ([]*models.Transaction, error) {
	return s.store.ListTransactions(ctx, userID, f)
}

// GetTransaction returns one transaction.
func (s *Service) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}
