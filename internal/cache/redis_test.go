package cache

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestCache_DisabledIsNoop(t *testing.T) {
	c := New(nil, zerolog.Nop())
	ctx := context.Background()

	if c.Enabled() {
		t.Fatal("cache without client should be disabled")
	}
	c.Set(ctx, TransactionsKey("u1"), []string{"x"}, TransactionsTTL)

	var got []string
	if c.Get(ctx, TransactionsKey("u1"), &got) {
		t.Error("disabled cache should never hit")
	}
	c.InvalidateUser(ctx, "u1")
	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestCache_NilReceiver(t *testing.T) {
	var c *Cache
	if c.Enabled() {
		t.Fatal("nil cache should be disabled")
	}
}

func TestKeys(t *testing.T) {
	if TransactionsKey("u1") == AccountsKey("u1") || AccountsKey("u1") == BudgetsKey("u1") {
		t.Error("keys for different lists must differ")
	}
	if TransactionsKey("u1") == TransactionsKey("u2") {
		t.Error("keys must be scoped by user")
	}
}
