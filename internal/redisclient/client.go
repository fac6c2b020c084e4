package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

//go:embed scripts/release_lock.lua
var releaseLockScript string

type Client struct {
	rdb           *redis.Client
	releaseScript *redis.Script
}

// NewClient creates a new Redis client with the lock script loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:           rdb,
		releaseScript: redis.NewScript(releaseLockScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// AcquireOrderLock takes a per-order lock gating webhook application. It is
// a fast-path gate only; the database row lock stays authoritative, so a
// Redis outage degrades throughput, not correctness. Returns the token
// needed to release, or ok=false when another delivery holds the lock.
func (c *Client) AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (token string, ok bool, err error) {
	token = uuid.New().String()
	ok, err = c.rdb.SetNX(ctx, fmt.Sprintf("lock:order:%s", orderID), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire order lock: %w", err)
	}
	return token, ok, nil
}

// ReleaseOrderLock releases the lock only if token still owns it, so an
// expired-and-reacquired lock is never deleted out from under its holder.
func (c *Client) ReleaseOrderLock(ctx context.Context, orderID, token string) error {
	_, err := c.releaseScript.Run(ctx, c.rdb,
		[]string{fmt.Sprintf("lock:order:%s", orderID)}, token).Result()
	if err != nil {
		return fmt.Errorf("release order lock: %w", err)
	}
	return nil
}

// CacheWebhookResult stores the resulting order state for an idempotency key
// so a fast retry skips the database round trip.
func (c *Client) CacheWebhookResult(ctx context.Context, idempotencyKey string, result interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal webhook result: %w", err)
	}
	return c.rdb.Set(ctx, fmt.Sprintf("webhook:%s", idempotencyKey), payload, ttl).Err()
}

// GetCachedWebhookResult fetches a previously cached webhook result into
// dest. Returns false when the key is unknown or expired.
func (c *Client) GetCachedWebhookResult(ctx context.Context, idempotencyKey string, dest interface{}) (bool, error) {
	payload, err := c.rdb.Get(ctx, fmt.Sprintf("webhook:%s", idempotencyKey)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get webhook result: %w", err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("unmarshal webhook result: %w", err)
	}
	return true, nil
}
