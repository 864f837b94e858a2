// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
	"github.com/BlockchainHB/launchfast-sub005/internal/recalc"
	"github.com/BlockchainHB/launchfast-sub005/pkg/config"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
)

// StaleMarketsJob refreshes markets whose snapshot is missing or older
// than the configured age. Base records drift as providers re-ingest, so
// a snapshot left alone long enough stops reflecting its members.
type StaleMarketsJob struct {
	orchestrator *recalc.Orchestrator
	markets      contracts.MarketStore
	cfg          config.RecalcConfig
	logger       *logger.Logger
}

// NewStaleMarketsJob creates a new stale market refresh job
func NewStaleMarketsJob(
	orch *recalc.Orchestrator,
	markets contracts.MarketStore,
	cfg config.RecalcConfig,
	log *logger.Logger,
) *StaleMarketsJob {
	return &StaleMarketsJob{
		orchestrator: orch,
		markets:      markets,
		cfg:          cfg,
		logger:       log,
	}
}

// Name returns the job name
func (j *StaleMarketsJob) Name() string {
	return "stale_markets_refresh"
}

// Schedule returns the cron schedule expression
func (j *StaleMarketsJob) Schedule() string {
	return j.cfg.CronSchedule
}

// Run refreshes every stale market. Per-market failures are logged and
// counted but never abort the sweep.
func (j *StaleMarketsJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.cfg.MaxSnapshotAge)

	stale, err := j.markets.StaleMarkets(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale markets: %w", err)
	}

	if len(stale) == 0 {
		j.logger.Debug("No stale markets to refresh")
		return nil
	}

	j.logger.WithFields(map[string]interface{}{
		"markets": len(stale),
		"cutoff":  cutoff.Format(time.RFC3339),
	}).Info("Refreshing stale markets")

	var failed int
	for _, marketID := range stale {
		m, err := j.markets.Get(ctx, marketID)
		if err != nil {
			j.logger.WithError(err).WithField("market_id", marketID).Error("Stale market lookup failed")
			failed++
			continue
		}

		if _, err := j.orchestrator.RecalculateMarket(ctx, m.UserID, m.ID, "scheduled_refresh"); err != nil {
			j.logger.WithError(err).WithField("market_id", marketID).Error("Stale market refresh failed")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d stale markets failed to refresh", failed, len(stale))
	}

	return nil
}
