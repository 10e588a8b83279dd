package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/decrement_stock.lua
var decrementStockScript string

// ErrNotCached is returned when a product has no cached stock count
var ErrNotCached = fmt.Errorf("stock not cached")

// Client caches per-product stock counts. The database stays the source
// of truth; the cache serves fast stock reads and is kept consistent by
// a conditional Lua decrement.
type Client struct {
	rdb             *redis.Client
	decrementScript *redis.Script
}

// NewClient creates a new Redis client with the stock script loaded
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

func stockKey(productID string) string {
	return fmt.Sprintf("stock:%s", productID)
}

// SetStock stores a product's current stock count
func (c *Client) SetStock(ctx context.Context, productID string, stock int) error {
	return c.rdb.Set(ctx, stockKey(productID), stock, 0).Err()
}

// GetStock retrieves a cached stock count
func (c *Client) GetStock(ctx context.Context, productID string) (int, error) {
	val, err := c.rdb.Get(ctx, stockKey(productID)).Result()
	if err == redis.Nil {
		return 0, fmt.Errorf("%w: %s", ErrNotCached, productID)
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(val)
}

// DecrementStock atomically decrements a cached count via Lua.
// Returns false when the cached stock is insufficient; ErrNotCached
// when the product has no cache entry.
func (c *Client) DecrementStock(ctx context.Context, productID string, qty int) (bool, error) {
	result, err := c.decrementScript.Run(ctx, c.rdb, []string{stockKey(productID)}, qty).Result()
	if err != nil {
		return false, fmt.Errorf("decrement stock script failed: %w", err)
	}

	code, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}

	switch code {
	case -1:
		return false, fmt.Errorf("%w: %s", ErrNotCached, productID)
	case 0:
		return false, nil
	default:
		return true, nil
	}
}

// DeleteStock drops a product's cache entry, forcing the next read back
// to the database.
func (c *Client) DeleteStock(ctx context.Context, productID string) error {
	return c.rdb.Del(ctx, stockKey(productID)).Err()
}
