package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BlockchainHB/launchfast-sub005/internal/external/amazon"
	"github.com/BlockchainHB/launchfast-sub005/internal/external/sellersprite"
	"github.com/BlockchainHB/launchfast-sub005/internal/ingest"
	"github.com/BlockchainHB/launchfast-sub005/pkg/httputil"
	"github.com/BlockchainHB/launchfast-sub005/pkg/redis"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify products against live provider data",
	Long: `Cross-checks stored product records against the Amazon catalog
page and the SellerSprite sales estimate, then updates the verified flag.
Unverified products are excluded from market aggregation.

Example:
  go run ./cmd/launchfast verify --products p_1,p_2
  go run ./cmd/launchfast verify --market m_123`,
	RunE: runVerify,
}

var (
	verifyProducts string
	verifyMarket   string
	verifyWorkers  int
)

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyProducts, "products", "", "comma-separated product ids")
	verifyCmd.Flags().StringVar(&verifyMarket, "market", "", "verify all members of a market")
	verifyCmd.Flags().IntVar(&verifyWorkers, "workers", 4, "concurrent verifications")
}

func runVerify(cmd *cobra.Command, args []string) error {
	if verifyProducts == "" && verifyMarket == "" {
		return fmt.Errorf("either --products or --market is required")
	}

	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	ctx := context.Background()

	var productIDs []string
	if verifyProducts != "" {
		for _, id := range strings.Split(verifyProducts, ",") {
			if id = strings.TrimSpace(id); id != "" {
				productIDs = append(productIDs, id)
			}
		}
	} else {
		members, err := d.products.ListByMarket(ctx, verifyMarket)
		if err != nil {
			return fmt.Errorf("load market members: %w", err)
		}
		for _, m := range members {
			productIDs = append(productIDs, m.ID)
		}
	}

	if len(productIDs) == 0 {
		fmt.Println("Nothing to verify")
		return nil
	}

	limiter := redis.NewRateLimiter(d.redis, "launchfast")

	catalogClient := amazon.NewClient(d.cfg.Amazon,
		httputil.New(d.logger).
			WithUserAgent(d.cfg.Amazon.UserAgent).
			WithRateLimiter(limiter, redis.AmazonRateLimit),
		d.logger)
	estimateClient := sellersprite.NewClient(d.cfg.SellerSprite,
		httputil.New(d.logger).
			WithRateLimiter(limiter, redis.SellerSpriteRateLimit),
		d.logger)

	verifier := ingest.NewVerifier(catalogClient, estimateClient, d.products, d.products, d.logger)

	fmt.Printf("Verifying %d products\n", len(productIDs))
	reports := verifier.VerifyProducts(ctx, productIDs, verifyWorkers)

	var verified int
	for _, r := range reports {
		if r.Verified {
			verified++
			continue
		}
		fmt.Printf("  %s failed: %s\n", r.ProductID, strings.Join(r.Mismatches, "; "))
	}

	fmt.Printf("Done: %d verified, %d failed\n", verified, len(reports)-verified)
	return nil
}
