// Package recalc coordinates the override save path end to end: persist
// overrides, find the affected markets, recompute their snapshots and
// invalidate the caches that embed them.
package recalc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
	"github.com/BlockchainHB/launchfast-sub005/internal/market"
	"github.com/BlockchainHB/launchfast-sub005/internal/override"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
	"github.com/BlockchainHB/launchfast-sub005/pkg/redis"
)

// Pipeline stages, in the only order they may complete
const (
	StageOverridesPersisted = "overrides_persisted"
	StageMarketsIdentified  = "markets_identified"
	StageRecomputed         = "recomputed"
	StageSnapshotsPersisted = "snapshots_persisted"
	StageCacheInvalidated   = "cache_invalidated"
)

// Orchestrator coordinates the recalculation pipeline
// SSOT: recalculation ordering is decided here only
type Orchestrator struct {
	products  contracts.ProductStore
	overrides contracts.OverrideStore
	markets   contracts.MarketStore
	cache     contracts.CacheService

	merger     *override.Merger
	aggregator *market.Aggregator

	logger *logger.Logger
}

// NewOrchestrator creates a new orchestrator. All collaborators are
// injected; the orchestrator owns no connections of its own.
func NewOrchestrator(
	products contracts.ProductStore,
	overrides contracts.OverrideStore,
	markets contracts.MarketStore,
	cache contracts.CacheService,
	merger *override.Merger,
	aggregator *market.Aggregator,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		products:   products,
		overrides:  overrides,
		markets:    markets,
		cache:      cache,
		merger:     merger,
		aggregator: aggregator,
		logger:     log,
	}
}

// MarketResult is the per-market outcome of a recalculation run
type MarketResult struct {
	MarketID string                    `json:"market_id"`
	Snapshot *contracts.MarketSnapshot `json:"snapshot,omitempty"`
	Err      error                     `json:"-"`
	Error    string                    `json:"error,omitempty"`
}

// RunResult holds the outcome of a batch save and recalculation run
type RunResult struct {
	UserID          string                       `json:"user_id"`
	SavedOverrides  []*contracts.ProductOverride `json:"saved_overrides"`
	AffectedMarkets []string                     `json:"affected_markets"`
	Markets         []MarketResult               `json:"markets"`
	CompletedStages []string                     `json:"completed_stages"`
	CacheWarnings   []string                     `json:"cache_warnings,omitempty"`
	RecalcWarning   string                       `json:"recalculation_warning,omitempty"`
	Duration        time.Duration                `json:"-"`
}

// Failed reports whether any market recompute failed
func (r *RunResult) Failed() bool {
	for _, m := range r.Markets {
		if m.Err != nil {
			return true
		}
	}
	return false
}

// OverridesPersisted reports whether the whole batch crossed the durability
// boundary. Past that point failures degrade the response, they never undo
// the saved overrides.
func (r *RunResult) OverridesPersisted() bool {
	for _, s := range r.CompletedStages {
		if s == StageOverridesPersisted {
			return true
		}
	}
	return false
}

// BatchUpsertOverrides validates and persists a user's override batch,
// then recalculates every market containing an overridden product. All
// overrides are durable before the first market recompute starts, so a
// recompute never reads a half-saved batch. Market failures do not undo
// the saved overrides; they are reported per market.
func (o *Orchestrator) BatchUpsertOverrides(ctx context.Context, userID string, batch []*contracts.ProductOverride) (*RunResult, error) {
	start := time.Now()

	if err := override.ValidateBatch(batch); err != nil {
		return nil, err
	}
	for _, ov := range batch {
		ov.UserID = userID
	}

	result := &RunResult{
		UserID:          userID,
		CompletedStages: make([]string, 0, 5),
	}

	o.logger.WithFields(map[string]interface{}{
		"user_id":   userID,
		"overrides": len(batch),
	}).Info("Starting override batch save")

	// Persist every override before anything downstream runs. The rows come
	// back from the store with their assigned timestamps.
	productIDs := make([]string, 0, len(batch))
	for _, ov := range batch {
		row, err := o.overrides.Upsert(ctx, ov)
		if err != nil {
			return result, fmt.Errorf("persist override for product %s: %w", ov.ProductID, err)
		}
		result.SavedOverrides = append(result.SavedOverrides, row)
		productIDs = append(productIDs, ov.ProductID)
	}
	result.CompletedStages = append(result.CompletedStages, StageOverridesPersisted)

	// Affected markets, deduplicated. Legacy products outside any market
	// save fine but trigger no recompute.
	marketIDs, err := o.markets.MarketsContaining(ctx, productIDs)
	if err != nil {
		return result, fmt.Errorf("identify affected markets: %w", err)
	}
	result.AffectedMarkets = marketIDs
	result.CompletedStages = append(result.CompletedStages, StageMarketsIdentified)

	if len(marketIDs) == 0 {
		o.logger.WithField("user_id", userID).Info("No markets affected, skipping recompute")
		result.Duration = time.Since(start)
		return result, nil
	}

	o.recomputeMarkets(ctx, result, userID, marketIDs, "override_batch")
	result.Duration = time.Since(start)

	o.logger.WithFields(map[string]interface{}{
		"user_id":  userID,
		"markets":  len(marketIDs),
		"failed":   result.Failed(),
		"duration": result.Duration.Seconds(),
	}).Info("Override batch save completed")

	return result, nil
}

// RecalculateMarkets recomputes the named markets for a user, for example
// after an external data refresh
func (o *Orchestrator) RecalculateMarkets(ctx context.Context, userID string, marketIDs []string, reason string) (*RunResult, error) {
	start := time.Now()

	result := &RunResult{
		UserID:          userID,
		AffectedMarkets: marketIDs,
		CompletedStages: []string{StageMarketsIdentified},
	}

	if len(marketIDs) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	o.recomputeMarkets(ctx, result, userID, marketIDs, reason)
	result.Duration = time.Since(start)
	return result, nil
}

// BatchRecalculateForProducts recomputes every market containing one of
// the given products, for example after an override delete made the base
// records authoritative again
func (o *Orchestrator) BatchRecalculateForProducts(ctx context.Context, userID string, productIDs []string, reason string) (*RunResult, error) {
	marketIDs, err := o.markets.MarketsContaining(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("identify affected markets: %w", err)
	}
	return o.RecalculateMarkets(ctx, userID, marketIDs, reason)
}

// RecalculateMarket recomputes one market and returns its fresh snapshot.
// A market owned by another user is indistinguishable from a missing one.
func (o *Orchestrator) RecalculateMarket(ctx context.Context, userID, marketID, reason string) (*contracts.MarketSnapshot, error) {
	m, err := o.markets.Get(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if m.UserID != userID {
		return nil, contracts.NewNotFoundError("market", marketID)
	}

	snapshot, err := o.recomputeOne(ctx, userID, m.ID, reason)
	if err != nil {
		return nil, err
	}

	o.invalidate(ctx, userID, []string{marketID})

	return snapshot, nil
}

// EffectiveProduct merges a product with the user's active override, if any
func (o *Orchestrator) EffectiveProduct(ctx context.Context, userID, productID string) (*contracts.EffectiveProduct, error) {
	base, err := o.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	ov, err := o.overrides.Get(ctx, userID, productID)
	if err != nil && !contracts.IsNotFound(err) {
		return nil, fmt.Errorf("load override: %w", err)
	}

	return o.merger.Merge(base, ov), nil
}

// recomputeMarkets runs the recompute, snapshot and invalidation stages
// over a set of markets. Recomputes run concurrently; each market's
// snapshot is durable before its cache keys are touched.
func (o *Orchestrator) recomputeMarkets(ctx context.Context, result *RunResult, userID string, marketIDs []string, reason string) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	results := make([]MarketResult, 0, len(marketIDs))
	for _, marketID := range marketIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			mr := MarketResult{MarketID: id}
			snapshot, err := o.recomputeOne(ctx, userID, id, reason)
			if err != nil {
				mr.Err = err
				mr.Error = err.Error()
				o.logger.WithError(err).WithField("market_id", id).Error("Market recompute failed")
			} else {
				mr.Snapshot = snapshot
			}

			mu.Lock()
			results = append(results, mr)
			mu.Unlock()
		}(marketID)
	}
	wg.Wait()

	result.Markets = results
	result.CompletedStages = append(result.CompletedStages, StageRecomputed, StageSnapshotsPersisted)

	// Only markets that actually got a new snapshot need invalidating
	fresh := make([]string, 0, len(results))
	for _, mr := range results {
		if mr.Err == nil {
			fresh = append(fresh, mr.MarketID)
		}
	}

	result.CacheWarnings = o.invalidate(ctx, userID, fresh)
	result.CompletedStages = append(result.CompletedStages, StageCacheInvalidated)
}

// recomputeOne loads a market's members, applies the user's overrides,
// aggregates and persists the snapshot
func (o *Orchestrator) recomputeOne(ctx context.Context, userID, marketID, reason string) (*contracts.MarketSnapshot, error) {
	members, err := o.products.ListByMarket(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.ID
	}

	overrides, err := o.overrides.GetForProducts(ctx, userID, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	merged := make([]contracts.EffectiveProduct, len(members))
	for i := range members {
		merged[i] = *o.merger.Merge(&members[i], overrides[members[i].ID])
	}

	snapshot, err := o.aggregator.Aggregate(marketID, merged, reason)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	if _, err := o.markets.UpsertSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	return snapshot, nil
}

// invalidate deletes the cache keys embedding the recalculated markets and
// verifies each delete landed, retrying once. A key that survives both
// attempts is reported, never fatal; the snapshots are already durable and
// the entries expire on their own TTL.
func (o *Orchestrator) invalidate(ctx context.Context, userID string, marketIDs []string) []string {
	if len(marketIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(marketIDs)+1)
	keys = append(keys, redis.DashboardKey(userID))
	for _, id := range marketIDs {
		keys = append(keys, redis.MarketKey(id))
	}

	var warnings []string
	for _, key := range keys {
		if !o.deleteVerified(ctx, key) {
			warnings = append(warnings, key)
			o.logger.WithFields(map[string]interface{}{
				"user_id": userID,
				"key":     key,
			}).Warn("Cache entry survived invalidation")
		}
	}

	return warnings
}

// deleteVerified deletes a key and confirms it is gone, with one retry
func (o *Orchestrator) deleteVerified(ctx context.Context, key string) bool {
	for attempt := 0; attempt < 2; attempt++ {
		if err := o.cache.Delete(ctx, key); err != nil {
			o.logger.WithError(err).WithField("key", key).Warn("Cache delete failed")
			continue
		}

		exists, err := o.cache.Exists(ctx, key)
		if err != nil {
			o.logger.WithError(err).WithField("key", key).Warn("Cache verify failed")
			continue
		}
		if !exists {
			return true
		}
	}
	return false
}
