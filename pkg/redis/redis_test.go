package redis

import (
	"context"
	"testing"

	"github.com/BlockchainHB/launchfast-sub005/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()

	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)

	if client.Enabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	// When Redis is disabled, all requests should be allowed
	allowed, remaining, err := limiter.Allow(context.Background(), SellerSpriteRateLimit)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Error("Expected request to be allowed when Redis disabled")
	}
	if remaining != SellerSpriteRateLimit.Limit {
		t.Errorf("Expected remaining = %d, got %d", SellerSpriteRateLimit.Limit, remaining)
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	// When Redis is disabled, cache operations should be no-ops
	var result string
	found, err := cache.Get(ctx, "key", &result)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Expected cache miss when Redis disabled")
	}

	if err := cache.Set(ctx, "key", "value", TTLShort); err != nil {
		t.Errorf("Set() error = %v", err)
	}

	if err := cache.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	exists, err := cache.Exists(ctx, "key")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("Expected Exists to report false when Redis disabled")
	}
}

func TestCacheKeys(t *testing.T) {
	if got := DashboardKey("user-1"); got != "dashboard:user-1" {
		t.Errorf("DashboardKey = %q", got)
	}
	if got := MarketKey("mkt-9"); got != "market:mkt-9" {
		t.Errorf("MarketKey = %q", got)
	}
	if got := ProductKey("B08XYZ"); got != "product:B08XYZ" {
		t.Errorf("ProductKey = %q", got)
	}
}
