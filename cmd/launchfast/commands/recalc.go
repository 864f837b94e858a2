package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// recalcCmd represents the recalc command
var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recalculate market snapshots",
	Long: `Recomputes market snapshots outside the API flow.

With --market, one market is recomputed. With --stale, every market whose
snapshot is older than RECALC_MAX_SNAPSHOT_AGE gets refreshed.

Example:
  go run ./cmd/launchfast recalc --market m_123 --user u_456
  go run ./cmd/launchfast recalc --stale`,
	RunE: runRecalc,
}

var (
	recalcMarket string
	recalcUser   string
	recalcStale  bool
	recalcReason string
)

func init() {
	rootCmd.AddCommand(recalcCmd)

	recalcCmd.Flags().StringVar(&recalcMarket, "market", "", "market id to recompute")
	recalcCmd.Flags().StringVar(&recalcUser, "user", "", "user whose overrides apply")
	recalcCmd.Flags().BoolVar(&recalcStale, "stale", false, "refresh all stale markets")
	recalcCmd.Flags().StringVar(&recalcReason, "reason", "manual", "reason recorded on the snapshot")
}

func runRecalc(cmd *cobra.Command, args []string) error {
	if !recalcStale && recalcMarket == "" {
		return fmt.Errorf("either --market or --stale is required")
	}
	if recalcMarket != "" && recalcUser == "" {
		return fmt.Errorf("--user is required with --market")
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx := context.Background()

	if recalcMarket != "" {
		snapshot, err := d.orchestrator.RecalculateMarket(ctx, recalcUser, recalcMarket, recalcReason)
		if err != nil {
			return fmt.Errorf("recalculate market %s: %w", recalcMarket, err)
		}

		fmt.Printf("Market %s recalculated\n", snapshot.MarketID)
		fmt.Printf("  grade:       %s\n", snapshot.Grade)
		fmt.Printf("  opportunity: %d\n", snapshot.OpportunityScore)
		fmt.Printf("  consistency: %s\n", snapshot.Consistency)
		fmt.Printf("  members:     %d/%d valid\n", snapshot.Stats.ValidMembers, snapshot.Stats.TotalMembers)
		return nil
	}

	cutoff := time.Now().Add(-d.cfg.Recalc.MaxSnapshotAge)
	stale, err := d.markets.StaleMarkets(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale markets: %w", err)
	}

	fmt.Printf("Refreshing %d stale markets\n", len(stale))

	var failed int
	for _, marketID := range stale {
		m, err := d.markets.Get(ctx, marketID)
		if err != nil {
			d.logger.WithError(err).WithField("market_id", marketID).Error("Market lookup failed")
			failed++
			continue
		}
		if _, err := d.orchestrator.RecalculateMarket(ctx, m.UserID, m.ID, "stale_refresh"); err != nil {
			d.logger.WithError(err).WithField("market_id", marketID).Error("Refresh failed")
			failed++
		}
	}

	fmt.Printf("Done: %d refreshed, %d failed\n", len(stale)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d markets failed to refresh", failed)
	}
	return nil
}
