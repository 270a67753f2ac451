package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/decrement_stock.lua
var decrementStockScript string

//go:embed scripts/increment_stock.lua
var incrementStockScript string

// ErrStockNotCached is returned when a product has no counter in the
// cache; callers fall back to the database path.
var ErrStockNotCached = fmt.Errorf("stock counter not cached")

type Client struct {
	rdb             *redis.Client
	decrementScript *redis.Script
	incrementScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
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
		rdb:             rdb,
		decrementScript: redis.NewScript(decrementStockScript),
		incrementScript: redis.NewScript(incrementStockScript),
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

func stockKey(productID int64) string {
	return fmt.Sprintf("stock:%d", productID)
}

// DecrementStock atomically takes quantity units from the cached stock
// counter. Returns ok=false with the current counter value when stock is
// insufficient, and ErrStockNotCached when the product has no counter.
func (c *Client) DecrementStock(ctx context.Context, productID int64, quantity int) (ok bool, available int, err error) {
	result, err := c.decrementScript.Run(ctx, c.rdb, []string{stockKey(productID)}, quantity).Result()
	if err != nil {
		return false, 0, fmt.Errorf("decrement stock script failed: %w", err)
	}

	reply, isSlice := result.([]interface{})
	if !isSlice || len(reply) != 2 {
		return false, 0, fmt.Errorf("unexpected script result type")
	}
	code, _ := reply[0].(int64)
	value, _ := reply[1].(int64)

	switch code {
	case 1:
		return true, int(value), nil
	case 0:
		return false, int(value), nil
	default:
		return false, 0, ErrStockNotCached
	}
}

// IncrementStock atomically returns quantity units to the cached stock
// counter. Missing counters are reported as ErrStockNotCached.
func (c *Client) IncrementStock(ctx context.Context, productID int64, quantity int) error {
	result, err := c.incrementScript.Run(ctx, c.rdb, []string{stockKey(productID)}, quantity).Result()
	if err != nil {
		return fmt.Errorf("increment stock script failed: %w", err)
	}

	value, isInt := result.(int64)
	if !isInt {
		return fmt.Errorf("unexpected script result type")
	}
	if value < 0 {
		return ErrStockNotCached
	}
	return nil
}

// InitStock initializes the cached stock counter for a product
func (c *Client) InitStock(ctx context.Context, productID int64, stock int) error {
	return c.rdb.Set(ctx, stockKey(productID), stock, 0).Err()
}

// GetStock retrieves the cached stock counter
func (c *Client) GetStock(ctx context.Context, productID int64) (int, error) {
	value, err := c.rdb.Get(ctx, stockKey(productID)).Int()
	if err == redis.Nil {
		return 0, ErrStockNotCached
	}
	if err != nil {
		return 0, err
	}
	return value, nil
}

// DropStock removes the cached counter, forcing the next reader back to
// the database
func (c *Client) DropStock(ctx context.Context, productID int64) error {
	return c.rdb.Del(ctx, stockKey(productID)).Err()
}

// AcquireLock acquires a short-lived lock used to serialize amendments
// of one sale
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
