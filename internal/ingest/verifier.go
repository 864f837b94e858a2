// Package ingest verifies researched products against external providers.
// A product counts as a market member only after verification.
package ingest

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
	"github.com/BlockchainHB/launchfast-sub005/internal/external/amazon"
	"github.com/BlockchainHB/launchfast-sub005/internal/external/sellersprite"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
)

// Stored values further than this from the live listing fail verification
const priceTolerance = 0.25

// ProductMarker persists the verification outcome
type ProductMarker interface {
	MarkVerified(ctx context.Context, id string, verified bool) error
}

// Verifier cross-checks stored product records against the catalog page
// and the sales estimate provider
type Verifier struct {
	catalog   *amazon.Client
	estimates *sellersprite.Client
	products  contracts.ProductStore
	marker    ProductMarker
	logger    *logger.Logger
}

// NewVerifier creates a new verifier
func NewVerifier(
	catalog *amazon.Client,
	estimates *sellersprite.Client,
	products contracts.ProductStore,
	marker ProductMarker,
	log *logger.Logger,
) *Verifier {
	return &Verifier{
		catalog:   catalog,
		estimates: estimates,
		products:  products,
		marker:    marker,
		logger:    log,
	}
}

// Report is the outcome of verifying one product
type Report struct {
	ProductID  string   `json:"product_id"`
	ASIN       string   `json:"asin"`
	Verified   bool     `json:"verified"`
	Mismatches []string `json:"mismatches,omitempty"`
}

// VerifyProduct checks one product and persists the outcome
func (v *Verifier) VerifyProduct(ctx context.Context, productID string) (*Report, error) {
	p, err := v.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	report := &Report{ProductID: p.ID, ASIN: p.ASIN}

	listing, err := v.catalog.FetchListing(ctx, p.ASIN)
	if err != nil {
		return nil, fmt.Errorf("fetch listing for %s: %w", p.ASIN, err)
	}

	estimates, err := v.estimates.FetchSalesEstimates(ctx, []string{p.ASIN})
	if err != nil {
		return nil, fmt.Errorf("fetch estimates for %s: %w", p.ASIN, err)
	}

	report.Mismatches = compare(p, listing, estimates)
	report.Verified = len(report.Mismatches) == 0

	if err := v.marker.MarkVerified(ctx, p.ID, report.Verified); err != nil {
		return nil, err
	}

	v.logger.WithFields(map[string]interface{}{
		"product_id": p.ID,
		"asin":       p.ASIN,
		"verified":   report.Verified,
		"mismatches": len(report.Mismatches),
	}).Info("Product verification completed")

	return report, nil
}

// VerifyProducts verifies a batch concurrently, collecting per-product
// outcomes. A failed provider call marks the report, not the run.
func (v *Verifier) VerifyProducts(ctx context.Context, productIDs []string, workers int) []Report {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	reports := make([]Report, 0, len(productIDs))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				report, err := v.VerifyProduct(ctx, id)
				if err != nil {
					v.logger.WithError(err).WithField("product_id", id).Error("Verification failed")
					report = &Report{ProductID: id, Mismatches: []string{err.Error()}}
				}
				mu.Lock()
				reports = append(reports, *report)
				mu.Unlock()
			}
		}()
	}

	for _, id := range productIDs {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	return reports
}

// compare lists the fields where the stored record disagrees with the
// live data
func compare(p *contracts.ProductRecord, listing *amazon.Listing, estimates []sellersprite.SalesEstimate) []string {
	var mismatches []string

	if listing.Title == "" {
		mismatches = append(mismatches, "listing has no title")
	}
	if listing.Price > 0 && p.Price > 0 && relativeDiff(p.Price, listing.Price) > priceTolerance {
		mismatches = append(mismatches, fmt.Sprintf("price %.2f vs listing %.2f", p.Price, listing.Price))
	}
	if len(estimates) == 0 {
		mismatches = append(mismatches, "no sales estimate for asin")
	} else {
		est := estimates[0]
		if est.MonthlySales > 0 && p.MonthlySales > 0 &&
			relativeDiff(float64(p.MonthlySales), float64(est.MonthlySales)) > priceTolerance {
			mismatches = append(mismatches, fmt.Sprintf("monthly sales %d vs estimate %d", p.MonthlySales, est.MonthlySales))
		}
	}

	return mismatches
}

func relativeDiff(a, b float64) float64 {
	return math.Abs(a-b) / math.Max(math.Abs(b), 1)
}
