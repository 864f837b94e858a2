package commands

import (
	"fmt"

	"github.com/BlockchainHB/launchfast-sub005/internal/market"
	"github.com/BlockchainHB/launchfast-sub005/internal/override"
	"github.com/BlockchainHB/launchfast-sub005/internal/recalc"
	"github.com/BlockchainHB/launchfast-sub005/internal/store"
	"github.com/BlockchainHB/launchfast-sub005/pkg/config"
	"github.com/BlockchainHB/launchfast-sub005/pkg/database"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
	"github.com/BlockchainHB/launchfast-sub005/pkg/redis"
)

// deps bundles the collaborators every command constructs the same way
// SSOT: wiring happens here only; commands just pick what they need
type deps struct {
	cfg    *config.Config
	logger *logger.Logger
	db     *database.DB
	redis  *redis.Client
	cache  *redis.Cache

	products  *store.ProductRepository
	overrides *store.OverrideRepository
	markets   *store.MarketRepository

	orchestrator *recalc.Orchestrator
}

// buildDeps loads config and connects everything downstream of it
func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "launchfast")

	products := store.NewProductRepository(db.Pool)
	overrides := store.NewOverrideRepository(db.Pool)
	markets := store.NewMarketRepository(db.Pool)

	orch := recalc.NewOrchestrator(
		products, overrides, markets, cache,
		override.NewMerger(log),
		market.NewAggregator(log),
		log,
	)

	return &deps{
		cfg:          cfg,
		logger:       log,
		db:           db,
		redis:        redisClient,
		cache:        cache,
		products:     products,
		overrides:    overrides,
		markets:      markets,
		orchestrator: orch,
	}, nil
}

// close releases the connections in reverse construction order
func (d *deps) close() {
	if d.redis != nil {
		d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
