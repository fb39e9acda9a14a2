// Package store persists accounts, transactions, scheduled transactions and
// budgets. Every query is scoped by the owning user's id.
package store

import (
	"context"
	"errors"
	"time"

	"finance-tracker-backend/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound means the record does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a uniqueness constraint was violated.
	ErrDuplicate = errors.New("already exists")
)

type AccountRepository interface {
	ListAccounts(ctx context.Context, userID string) ([]*models.Account, error)
	GetAccount(ctx context.Context, userID, id string) (*models.Account, error)
	CreateAccount(ctx context.Context, a *models.Account) error
	UpdateAccount(ctx context.Context, a *models.Account) error
	DeleteAccount(ctx context.Context, userID, id string) error
	// AdjustBalance adds delta to the stored balance in one atomic step and
	// returns the updated account.
	AdjustBalance(ctx context.Context, userID, id string, delta decimal.Decimal) (*models.Account, error)
}

type TransactionRepository interface {
	// ListTransactions returns matching transactions, newest first.
	ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) ([]*models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error
}

type ScheduledRepository interface {
	// ListScheduled returns the user's schedules by scheduled date ascending.
	// An empty status matches all.
	ListScheduled(ctx context.Context, userID string, status models.ScheduleStatus) ([]*models.ScheduledTransaction, error)
	GetScheduled(ctx context.Context, userID, id string) (*models.ScheduledTransaction, error)
	// GetPendingScheduled behaves like GetScheduled but reports ErrNotFound
	// for records that are not pending.
	GetPendingScheduled(ctx context.Context, userID, id string) (*models.ScheduledTransaction, error)
	// ListDueScheduled returns pending schedules of every user dated at or before t.
	ListDueScheduled(ctx context.Context, t time.Time) ([]*models.ScheduledTransaction, error)
	CreateScheduled(ctx context.Context, s *models.ScheduledTransaction) error
	UpdateScheduled(ctx context.Context, s *models.ScheduledTransaction) error
	// MarkProcessed flips a pending schedule to processed. It reports
	// ErrNotFound when the record is no longer pending.
	MarkProcessed(ctx context.Context, userID, id string) error
	DeleteScheduled(ctx context.Context, userID, id string) error
}

type BudgetRepository interface {
	ListBudgets(ctx context.Context, userID string) ([]*models.Budget, error)
	GetBudget(ctx context.Context, userID, id string) (*models.Budget, error)
	CreateBudget(ctx context.Context, b *models.Budget) error
	UpdateBudget(ctx context.Context, b *models.Budget) error
	DeleteBudget(ctx context.Context, userID, id string) error
}

// Store is the full persistence surface.
type Store interface {
	AccountRepository
	TransactionRepository
	ScheduledRepository
	BudgetRepository

	// InTx runs fn against a view of the store whose writes commit together
	// when fn returns nil and are discarded otherwise. Calling InTx on the
	// view runs fn directly.
	InTx(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
	Close() error
}
