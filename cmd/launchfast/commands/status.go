package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show research data status",
	Long: `Prints counts of products, overrides and markets, and how many
market snapshots are stale.

Example:
  go run ./cmd/launchfast status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	counts := []struct {
		label string
		query string
	}{
		{"products", "SELECT count(*) FROM research.products"},
		{"verified products", "SELECT count(*) FROM research.products WHERE verified"},
		{"overrides", "SELECT count(*) FROM research.product_overrides"},
		{"markets", "SELECT count(*) FROM research.markets"},
		{"snapshots", "SELECT count(*) FROM research.market_snapshots"},
	}

	fmt.Println("Research data status")
	for _, c := range counts {
		var n int64
		if err := d.db.Pool.QueryRow(ctx, c.query).Scan(&n); err != nil {
			return fmt.Errorf("count %s: %w", c.label, err)
		}
		fmt.Printf("  %-18s %8d\n", c.label+":", n)
	}

	cutoff := time.Now().Add(-d.cfg.Recalc.MaxSnapshotAge)
	stale, err := d.markets.StaleMarkets(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale markets: %w", err)
	}
	fmt.Printf("  %-18s %8d (older than %s)\n", "stale snapshots:", len(stale), d.cfg.Recalc.MaxSnapshotAge)

	if d.redis.Enabled() {
		if err := d.redis.Ping(ctx); err != nil {
			fmt.Println("  redis:             unreachable")
		} else {
			fmt.Println("  redis:             ok")
		}
	} else {
		fmt.Println("  redis:             disabled")
	}

	return nil
}
