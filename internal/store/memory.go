package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"finance-tracker-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory Store. It is safe for concurrent use; data is
// lost on restart. InTx calls are serialized and roll back by restoring a
// snapshot, so writes made outside InTx while one is running can be lost on
// rollback.
type MemoryStore struct {
	mu        sync.RWMutex
	txMu      sync.Mutex
	accounts  map[string]*models.Account
	txns      map[string]*models.Transaction
	scheduled map[string]*models.ScheduledTransaction
	budgets   map[string]*models.Budget
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:  make(map[string]*models.Account),
		txns:      make(map[string]*models.Transaction),
		scheduled: make(map[string]*models.ScheduledTransaction),
		budgets:   make(map[string]*models.Budget),
		now:       time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

// InTx implements Store.
func (m *MemoryStore) InTx(ctx context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.snapshot()
	if err := fn(memTx{m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memTx struct{ *MemoryStore }

func (t memTx) InTx(ctx context.Context, fn func(Store) error) error { return fn(t) }

type memSnapshot struct {
	accounts  map[string]*models.Account
	txns      map[string]*models.Transaction
	scheduled map[string]*models.ScheduledTransaction
	budgets   map[string]*models.Budget
}

func (m *MemoryStore) snapshot() memSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := memSnapshot{
		accounts:  make(map[string]*models.Account, len(m.accounts)),
		txns:      make(map[string]*models.Transaction, len(m.txns)),
		scheduled: make(map[string]*models.ScheduledTransaction, len(m.scheduled)),
		budgets:   make(map[string]*models.Budget, len(m.budgets)),
	}
	for k, v := range m.accounts {
		s.accounts[k] = copyAccount(v)
	}
	for k, v := range m.txns {
		c := *v
		s.txns[k] = &c
	}
	for k, v := range m.scheduled {
		c := *v
		s.scheduled[k] = &c
	}
	for k, v := range m.budgets {
		c := *v
		s.budgets[k] = &c
	}
	return s
}

func (m *MemoryStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts, m.txns, m.scheduled, m.budgets = s.accounts, s.txns, s.scheduled, s.budgets
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	if a.CreditTerms != nil {
		ct := *a.CreditTerms
		c.CreditTerms = &ct
	}
	return &c
}

// Accounts

func (m *MemoryStore) ListAccounts(ctx context.Context, userID string) ([]*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.Account, 0)
	for _, a := range m.accounts {
		if a.UserID == userID {
			result = append(result, copyAccount(a))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MemoryStore) GetAccount(ctx context.Context, userID, id string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	return copyAccount(a), nil
}

func (m *MemoryStore) CreateAccount(ctx context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.now()
	}
	m.accounts[a.ID] = copyAccount(a)
	return nil
}

func (m *MemoryStore) UpdateAccount(ctx context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.accounts[a.ID]
	if !ok || existing.UserID != a.UserID {
		return fmt.Errorf("account %s: %w", a.ID, ErrNotFound)
	}
	m.accounts[a.ID] = copyAccount(a)
	return nil
}

func (m *MemoryStore) DeleteAccount(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	delete(m.accounts, id)
	return nil
}

func (m *MemoryStore) AdjustBalance(ctx context.Context, userID, id string, delta decimal.Decimal) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return nil, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	a.Balance, _ = decimal.NewFromFloat(a.Balance).Add(delta).Float64()
	return copyAccount(a), nil
}

// Transactions

// decorate fills the account name/kind; callers hold m.mu.
func (m *MemoryStore) decorate(t *models.Transaction) {
	t.AccountName, t.AccountKind = nil, nil
	if a, ok := m.accounts[t.AccountID]; ok && a.UserID == t.UserID {
		name, kind := a.Name, a.Kind
		t.AccountName, t.AccountKind = &name, &kind
	}
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.Transaction, 0)
	for _, t := range m.txns {
		if t.UserID != userID || !f.Match(t) {
			continue
		}
		c := *t
		m.decorate(&c)
		result = append(result, &c)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.txns[id]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	c := *t
	m.decorate(&c)
	return &c, nil
}

func (m *MemoryStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.now()
	}
	c := *t
	c.AccountName, c.AccountKind = nil, nil
	m.txns[t.ID] = &c
	return nil
}

func (m *MemoryStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.txns[t.ID]
	if !ok || existing.UserID != t.UserID {
		return fmt.Errorf("transaction %s: %w", t.ID, ErrNotFound)
	}
	c := *t
	c.AccountName, c.AccountKind = nil, nil
	m.txns[t.ID] = &c
	return nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.txns[id]
	if !ok || t.UserID != userID {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	delete(m.txns, id)
	return nil
}

// Scheduled transactions

func (m *MemoryStore) decorateScheduled(s *models.ScheduledTransaction) {
	s.AccountName, s.AccountKind = nil, nil
	if a, ok := m.accounts[s.AccountID]; ok && a.UserID == s.UserID {
		name, kind := a.Name, a.Kind
		s.AccountName, s.AccountKind = &name, &kind
	}
}

func (m *MemoryStore) ListScheduled(ctx context.Context, userID string, status models.ScheduleStatus) ([]*models.ScheduledTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.ScheduledTransaction, 0)
	for _, s := range m.scheduled {
		if s.UserID != userID || (status != "" && s.Status != status) {
			continue
		}
		c := *s
		m.decorateScheduled(&c)
		result = append(result, &c)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].ScheduledDate.Before(result[j].ScheduledDate) })
	return result, nil
}

func (m *MemoryStore) GetScheduled(ctx context.Context, userID, id string) (*models.ScheduledTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.scheduled[id]
	if !ok || s.UserID != userID {
		return nil, fmt.Errorf("scheduled transaction %s: %w", id, ErrNotFound)
	}
	c := *s
	m.decorateScheduled(&c)
	return &c, nil
}

func (m *MemoryStore) GetPendingScheduled(ctx context.Context, userID, id string) (*models.ScheduledTransaction, error) {
	s, err := m.GetScheduled(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if s.Status != models.StatusPending {
		return nil, fmt.Errorf("pending scheduled transaction %s: %w", id, ErrNotFound)
	}
	return s, nil
}

func (m *MemoryStore) ListDueScheduled(ctx context.Context, t time.Time) ([]*models.ScheduledTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.ScheduledTransaction, 0)
	for _, s := range m.scheduled {
		if s.Status == models.StatusPending && !s.ScheduledDate.After(t) {
			c := *s
			result = append(result, &c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].ScheduledDate.Before(result[j].ScheduledDate) })
	return result, nil
}

func (m *MemoryStore) CreateScheduled(ctx context.Context, s *models.ScheduledTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = m.now()
	}
	c := *s
	c.AccountName, c.AccountKind = nil, nil
	m.scheduled[s.ID] = &c
	return nil
}

func (m *MemoryStore) UpdateScheduled(ctx context.Context, s *models.ScheduledTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.scheduled[s.ID]
	if !ok || existing.UserID != s.UserID {
		return fmt.Errorf("scheduled transaction %s: %w", s.ID, ErrNotFound)
	}
	c := *s
	c.AccountName, c.AccountKind = nil, nil
	m.scheduled[s.ID] = &c
	return nil
}

func (m *MemoryStore) MarkProcessed(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.scheduled[id]
	if !ok || s.UserID != userID || s.Status != models.StatusPending {
		return fmt.Errorf("pending scheduled transaction %s: %w", id, ErrNotFound)
	}
	s.Status = models.StatusProcessed
	return nil
}

func (m *MemoryStore) DeleteScheduled(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.scheduled[id]
	if !ok || s.UserID != userID {
		return fmt.Errorf("scheduled transaction %s: %w", id, ErrNotFound)
	}
	delete(m.scheduled, id)
	return nil
}

// Budgets

func (m *MemoryStore) ListBudgets(ctx context.Context, userID string) ([]*models.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.Budget, 0)
	for _, b := range m.budgets {
		if b.UserID == userID {
			c := *b
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

func (m *MemoryStore) GetBudget(ctx context.Context, userID, id string) (*models.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.budgets[id]
	if !ok || b.UserID != userID {
		return nil, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	c := *b
	return &c, nil
}

// categoryTaken reports whether another budget of userID uses category; callers hold m.mu.
func (m *MemoryStore) categoryTaken(userID, category, exceptID string) bool {
	for _, b := range m.budgets {
		if b.UserID == userID && b.Category == category && b.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *MemoryStore) CreateBudget(ctx context.Context, b *models.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.categoryTaken(b.UserID, b.Category, "") {
		return fmt.Errorf("budget for %s: %w", b.Category, ErrDuplicate)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = m.now()
	}
	c := *b
	m.budgets[b.ID] = &c
	return nil
}

func (m *MemoryStore) UpdateBudget(ctx context.Context, b *models.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.budgets[b.ID]
	if !ok || existing.UserID != b.UserID {
		return fmt.Errorf("budget %s: %w", b.ID, ErrNotFound)
	}
	if m.categoryTaken(b.UserID, b.Category, b.ID) {
		return fmt.Errorf("budget for %s: %w", b.Category, ErrDuplicate)
	}
	c := *b
	m.budgets[b.ID] = &c
	return nil
}

func (m *MemoryStore) DeleteBudget(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.budgets[id]
	if !ok || b.UserID != userID {
		return fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	delete(m.budgets, id)
	return nil
}
