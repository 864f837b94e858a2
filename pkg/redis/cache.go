package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache provides typed caching utilities
// SSOT: cache helpers live here only
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) fullKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.fullKey(key)).Bytes()
	if err != nil {
		// Key not found is not an error
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.fullKey(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.fullKey(key)).Err()
}

// Exists reports whether a key is still present. Used by the recalculation
// flow to verify a delete propagated before giving up.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	n, err := c.client.Redis().Exists(ctx, c.fullKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists check failed: %w", err)
	}

	return n > 0, nil
}

// GetOrSet retrieves from cache or calls fn to populate it
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	found, err := c.Get(ctx, key, dest)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	// Cache miss - call function
	value, err := fn()
	if err != nil {
		return err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		// Log but don't fail
		return nil
	}

	data, _ := json.Marshal(value)
	return json.Unmarshal(data, dest)
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute  // effective product views
	TTLMedium = 10 * time.Minute // dashboards
	TTLLong   = 1 * time.Hour    // keyword volumes
	TTLDaily  = 24 * time.Hour   // catalog snapshots
)

// Common cache key generators

// DashboardKey is the per-user dashboard view that embeds market snapshots.
func DashboardKey(userID string) string {
	return fmt.Sprintf("dashboard:%s", userID)
}

func MarketKey(marketID string) string {
	return fmt.Sprintf("market:%s", marketID)
}

func ProductKey(asin string) string {
	return fmt.Sprintf("product:%s", asin)
}
