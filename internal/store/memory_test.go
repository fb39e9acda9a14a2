package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance-tracker-backend/internal/models"

	"github.com/shopspring/decimal"
)

func seedAccount(t *testing.T, m *MemoryStore, userID string, balance float64) *models.Account {
	t.Helper()
	a := &models.Account{UserID: userID, Name: "Checking", Kind: models.KindBank, Balance: balance, Currency: "USD"}
	if err := m.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return a
}

func TestMemoryStore_AccountScoping(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	a := seedAccount(t, m, "alice", 10)

	if _, err := m.GetAccount(ctx, "bob", a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAccount by other user = %v, want ErrNotFound", err)
	}
	if _, err := m.AdjustBalance(ctx, "bob", a.ID, decimal.NewFromInt(5)); !errors.Is(err, ErrNotFound) {
		t.Errorf("AdjustBalance by other user = %v, want ErrNotFound", err)
	}
	list, _ := m.ListAccounts(ctx, "bob")
	if len(list) != 0 {
		t.Errorf("bob sees %d accounts", len(list))
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	a := seedAccount(t, m, "alice", 10)

	got, _ := m.GetAccount(ctx, "alice", a.ID)
	got.Balance = 999
	again, _ := m.GetAccount(ctx, "alice", a.ID)
	if again.Balance != 10 {
		t.Errorf("stored balance changed through returned pointer: %v", again.Balance)
	}
}

func TestMemoryStore_AdjustBalance(t *testing.T) {
	m := NewMemoryStore()
	a := seedAccount(t, m, "alice", 0.1)

	got, err := m.AdjustBalance(context.Background(), "alice", a.ID, decimal.RequireFromString("0.2"))
	if err != nil {
		t.Fatalf("AdjustBalance: %v", err)
	}
	if got.Balance != 0.3 {
		t.Errorf("balance = %v, want 0.3", got.Balance)
	}
}

func TestMemoryStore_ListTransactionsOrder(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, d := range []int{3, 1, 2} {
		txn := &models.Transaction{
			UserID: "alice", AccountID: "a", Amount: float64(i), Type: models.Expense,
			Category: "food", Date: base.AddDate(0, 0, d),
		}
		if err := m.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}
	if err := m.CreateTransaction(ctx, &models.Transaction{UserID: "bob", AccountID: "b", Type: models.Income, Date: base}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	list, err := m.ListTransactions(ctx, "alice", models.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d transactions, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Date.After(list[i-1].Date) {
			t.Errorf("transactions not newest first: %v before %v", list[i-1].Date, list[i].Date)
		}
	}

	start := base.AddDate(0, 0, 2)
	filtered, _ := m.ListTransactions(ctx, "alice", models.TransactionFilter{Start: &start})
	if len(filtered) != 2 {
		t.Errorf("got %d transactions since %v, want 2", len(filtered), start)
	}
}

func TestMemoryStore_TransactionDecoration(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	a := seedAccount(t, m, "alice", 0)

	txn := &models.Transaction{UserID: "alice", AccountID: a.ID, Amount: 1, Type: models.Income, Date: time.Now()}
	if err := m.CreateTransaction(ctx, txn); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	got, _ := m.GetTransaction(ctx, "alice", txn.ID)
	if got.AccountName == nil || *got.AccountName != "Checking" || got.AccountKind == nil || *got.AccountKind != models.KindBank {
		t.Errorf("transaction not decorated with account: %+v", got)
	}
}

func TestMemoryStore_MarkProcessed(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	s := &models.ScheduledTransaction{
		UserID: "alice", AccountID: "a", Amount: 1, Type: models.Income,
		ScheduledDate: time.Now(), Status: models.StatusPending,
	}
	if err := m.CreateScheduled(ctx, s); err != nil {
		t.Fatalf("CreateScheduled: %v", err)
	}

	if err := m.MarkProcessed(ctx, "alice", s.ID); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	if err := m.MarkProcessed(ctx, "alice", s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second MarkProcessed = %v, want ErrNotFound", err)
	}
	if _, err := m.GetPendingScheduled(ctx, "alice", s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPendingScheduled on processed = %v, want ErrNotFound", err)
	}
	if _, err := m.GetScheduled(ctx, "alice", s.ID); err != nil {
		t.Errorf("GetScheduled on processed: %v", err)
	}
}

func TestMemoryStore_ListDueScheduled(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	records := []struct {
		user   string
		date   time.Time
		status models.ScheduleStatus
	}{
		{"alice", now.Add(-time.Hour), models.StatusPending},
		{"bob", now, models.StatusPending},
		{"alice", now.Add(time.Hour), models.StatusPending},
		{"bob", now.Add(-time.Hour), models.StatusCancelled},
	}
	for _, r := range records {
		if err := m.CreateScheduled(ctx, &models.ScheduledTransaction{
			UserID: r.user, AccountID: "a", Type: models.Income, ScheduledDate: r.date, Status: r.status,
		}); err != nil {
			t.Fatalf("CreateScheduled: %v", err)
		}
	}

	due, err := m.ListDueScheduled(ctx, now)
	if err != nil {
		t.Fatalf("ListDueScheduled: %v", err)
	}
	if len(due) != 2 || due[0].UserID != "alice" || due[1].UserID != "bob" {
		t.Errorf("unexpected due schedules: %+v", due)
	}
}

func TestMemoryStore_BudgetUniqueness(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	food := &models.Budget{UserID: "alice", Category: "food", Amount: 100, Period: models.PeriodMonthly}
	if err := m.CreateBudget(ctx, food); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if err := m.CreateBudget(ctx, &models.Budget{UserID: "alice", Category: "food"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate CreateBudget = %v, want ErrDuplicate", err)
	}
	food.Amount = 150
	if err := m.UpdateBudget(ctx, food); err != nil {
		t.Errorf("UpdateBudget keeping its own category: %v", err)
	}
}

func TestMemoryStore_InTxRollback(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	a := seedAccount(t, m, "alice", 100)
	boom := errors.New("boom")

	err := m.InTx(ctx, func(tx Store) error {
		if _, err := tx.AdjustBalance(ctx, "alice", a.ID, decimal.NewFromInt(-40)); err != nil {
			return err
		}
		if err := tx.CreateTransaction(ctx, &models.Transaction{UserID: "alice", AccountID: a.ID, Amount: 40, Type: models.Expense}); err != nil {
			return err
		}
		return tx.InTx(ctx, func(Store) error { return boom })
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx error = %v, want %v", err, boom)
	}

	got, _ := m.GetAccount(ctx, "alice", a.ID)
	if got.Balance != 100 {
		t.Errorf("balance = %v after rollback, want 100", got.Balance)
	}
	list, _ := m.ListTransactions(ctx, "alice", models.TransactionFilter{})
	if len(list) != 0 {
		t.Errorf("got %d transactions after rollback, want 0", len(list))
	}
}

func TestMemoryStore_InTxCommit(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	a := seedAccount(t, m, "alice", 100)

	err := m.InTx(ctx, func(tx Store) error {
		_, err := tx.AdjustBalance(ctx, "alice", a.ID, decimal.NewFromInt(25))
		return err
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	got, _ := m.GetAccount(ctx, "alice", a.ID)
	if got.Balance != 125 {
		t.Errorf("balance = %v, want 125", got.Balance)
	}
}
