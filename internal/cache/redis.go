// Package cache is a Redis read-through cache for per-user list responses.
// A Cache built without a client is a no-op, so the API works without Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TransactionsTTL = 60 * time.Second
	AccountsTTL     = 60 * time.Second
	BudgetsTTL      = 5 * time.Minute
)

// Connect opens a Redis client for addr ("host:port" or a redis:// URL) and
// pings it.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	url := addr
	if !strings.Contains(url, "://") {
		url = "redis://" + url
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

type Cache struct {
	client *redis.Client
	log    zerolog.Logger
}

// New wraps client. client may be nil.
func New(client *redis.Client, log zerolog.Logger) *Cache {
	return &Cache{client: client, log: log}
}

// Enabled reports whether a Redis client is attached.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func TransactionsKey(userID string) string { return "transactions:" + userID }
func AccountsKey(userID string) string     { return "accounts:" + userID }
func BudgetsKey(userID string) string      { return "budgets:" + userID }

// Get decodes the cached JSON under key into dst and reports whether it hit.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	if !c.Enabled() {
		return false
	}
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	return json.Unmarshal([]byte(cached), dst) == nil
}

// Set stores v as JSON under key for ttl. Failures are logged only.
func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.SetEx(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// InvalidateUser drops every cached list of userID. Called after any write
// that can change balances or listings.
func (c *Cache) InvalidateUser(ctx context.Context, userID string) {
	if !c.Enabled() {
		return
	}
	keys := []string{TransactionsKey(userID), AccountsKey(userID), BudgetsKey(userID)}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("Cache invalidation failed")
	}
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
