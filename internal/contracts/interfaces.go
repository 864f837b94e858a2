package contracts

import (
	"context"
	"time"
)

// ProductStore is the durable product record contract
type ProductStore interface {
	Get(ctx context.Context, id string) (*ProductRecord, error)
	GetByIDs(ctx context.Context, ids []string) ([]ProductRecord, error)
	ListByMarket(ctx context.Context, marketID string) ([]ProductRecord, error)
}

// OverrideStore persists product overrides. Upsert must be atomic and
// idempotent, keyed on the (user, product) uniqueness constraint.
type OverrideStore interface {
	Upsert(ctx context.Context, override *ProductOverride) (*ProductOverride, error)
	Get(ctx context.Context, userID, productID string) (*ProductOverride, error)
	GetForProducts(ctx context.Context, userID string, productIDs []string) (map[string]*ProductOverride, error)
	Delete(ctx context.Context, userID, productID string) error
}

// MarketStore persists markets and their recalculation snapshots
type MarketStore interface {
	Get(ctx context.Context, id string) (*MarketRecord, error)
	// MarketsContaining returns the distinct markets holding any of the
	// given products, each at most once.
	MarketsContaining(ctx context.Context, productIDs []string) ([]string, error)
	UpsertSnapshot(ctx context.Context, snapshot *MarketSnapshot) (*MarketSnapshot, error)
	GetSnapshot(ctx context.Context, marketID string) (*MarketSnapshot, error)
	// StaleMarkets lists markets whose snapshot is older than the cutoff
	// or missing entirely.
	StaleMarkets(ctx context.Context, cutoff time.Time) ([]string, error)
}

// CacheService is the read-through cache contract consumed by the
// recalculation flow. Deletion may be eventually consistent; callers
// re-check with Exists.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
