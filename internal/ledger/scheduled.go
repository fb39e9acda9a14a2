package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker-backend/internal/models"
	"finance-tracker-backend/internal/store"
)

// NewScheduled is the input to CreateScheduled.
type NewScheduled struct {
	AccountID      string             `json:"accountId"`
	Amount         float64            `json:"amount"`
	Type           models.Direction   `json:"type"`
	Category       string             `json:"category"`
	Description    string             `json:"description"`
	ScheduledDate  time.Time          `json:"scheduledDate"`
	IsRecurring    bool               `json:"isRecurring"`
	RecurrenceType *models.Recurrence `json:"recurrenceType"`
	RecurrenceEnd  *time.Time         `json:"recurrenceEnd"`
}

// CreateScheduled stores a pending schedule against one of the user's accounts.
func (s *Service) CreateScheduled(ctx context.Context, userID string, in NewScheduled) (*models.ScheduledTransaction, error) {
	st := &models.ScheduledTransaction{
		UserID:         userID,
		AccountID:      in.AccountID,
		Amount:         in.Amount,
		Type:           in.Type,
		Category:       in.Category,
		Description:    in.Description,
		ScheduledDate:  in.ScheduledDate,
		IsRecurring:    in.IsRecurring,
		RecurrenceType: in.RecurrenceType,
		RecurrenceEnd:  in.RecurrenceEnd,
		Status:         models.StatusPending,
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetAccount(ctx, userID, st.AccountID); err != nil {
		return nil, fmt.Errorf("create scheduled transaction: %w", err)
	}
	if err := s.store.CreateScheduled(ctx, st); err != nil {
		return nil, fmt.Errorf("create scheduled transaction: %w", err)
	}
	return st, nil
}

// UpdateScheduled edits a schedule in any state. A new account must belong
// to the user. Status may be overwritten with any valid status.
func (s *Service) UpdateScheduled(ctx context.Context, userID, id string, p models.ScheduledPatch) (*models.ScheduledTransaction, error) {
	var updated *models.ScheduledTransaction
	err := s.store.InTx(ctx, func(tx store.Store) error {
		st, err := tx.GetScheduled(ctx, userID, id)
		if err != nil {
			return err
		}
		oldAccount := st.AccountID
		if err := p.Apply(st); err != nil {
			return err
		}
		if st.AccountID != oldAccount {
			if _, err := tx.GetAccount(ctx, userID, st.AccountID); err != nil {
				return err
			}
		}
		if err := tx.UpdateScheduled(ctx, st); err != nil {
			return err
		}
		updated, err = tx.GetScheduled(ctx, userID, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update scheduled transaction: %w", err)
	}
	return updated, nil
}

// DeleteScheduled removes a schedule in any state. Pending schedules were
// never applied, so balances are untouched.
func (s *Service) DeleteScheduled(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteScheduled(ctx, userID, id); err != nil {
		return fmt.Errorf("delete scheduled transaction: %w", err)
	}
	return nil
}

// ProcessResult is the outcome of processing a schedule.
type ProcessResult struct {
	Transaction *models.Transaction          `json:"transaction"`
	Next        *models.ScheduledTransaction `json:"next,omitempty"`
}

// ProcessScheduled turns a pending schedule into a transaction dated now,
// applies its delta and marks the schedule processed. Schedules that are not
// pending report store.ErrNotFound. For recurring schedules the next
// occurrence is created as a new pending schedule.
func (s *Service) ProcessScheduled(ctx context.Context, userID, id string) (*ProcessResult, error) {
	var result ProcessResult
	err := s.store.InTx(ctx, func(tx store.Store) error {
		st, err := tx.GetPendingScheduled(ctx, userID, id)
		if err != nil {
			return err
		}
		t := &models.Transaction{
			UserID:      userID,
			AccountID:   st.AccountID,
			Amount:      st.Amount,
			Type:        st.Type,
			Category:    st.Category,
			Description: st.Description,
			Date:        s.now(),
		}
		if err := s.apply(ctx, tx, t); err != nil {
			return err
		}
		if err := tx.MarkProcessed(ctx, userID, id); err != nil {
			return err
		}
		if next := st.NextOccurrence(); next != nil {
			if err := tx.CreateScheduled(ctx, next); err != nil {
				return err
			}
			result.Next = next
		}
		result.Transaction = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("process scheduled transaction: %w", err)
	}
	s.log.Info().
		Str("user_id", userID).
		Str("scheduled_id", id).
		Str("transaction_id", result.Transaction.ID).
		Msg("Scheduled transaction processed")
	return &result, nil
}

// ProcessDue processes every pending schedule of every user dated at or
// before now. Records that fail are logged and left pending.
func (s *Service) ProcessDue(ctx context.Context) (int, error) {
	due, err := s.store.ListDueScheduled(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("process due: %w", err)
	}
	processed := 0
	for _, st := range due {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		if _, err := s.ProcessScheduled(ctx, st.UserID, st.ID); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				s.log.Error().Err(err).Str("scheduled_id", st.ID).Msg("Failed to process due scheduled transaction")
			}
			continue
		}
		processed++
	}
	return processed, nil
}

// ListScheduled returns the user's schedules by date ascending.
func (s *Service) ListScheduled(ctx context.Context, userID string, status models.ScheduleStatus) ([]*models.ScheduledTransaction, error) {
	if status != "" && !status.Valid() {
		return nil, models.Invalid("status", "must be one of pending, processed, cancelled")
	}
	return s.store.ListScheduled(ctx, userID, status)
}

// GetScheduled returns one schedule.
func (s *Service) GetScheduled(ctx context.Context, userID, id string) (*models.ScheduledTransaction, error) {
	return s.store.GetScheduled(ctx, userID, id)
}
