package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
	"github.com/BlockchainHB/launchfast-sub005/internal/external/amazon"
	"github.com/BlockchainHB/launchfast-sub005/internal/external/sellersprite"
	"github.com/BlockchainHB/launchfast-sub005/pkg/config"
	"github.com/BlockchainHB/launchfast-sub005/pkg/httputil"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
)

type fakeProducts struct {
	records map[string]*contracts.ProductRecord
}

func (f *fakeProducts) Get(_ context.Context, id string) (*contracts.ProductRecord, error) {
	p, ok := f.records[id]
	if !ok {
		return nil, contracts.NewNotFoundError("product", id)
	}
	return p, nil
}

func (f *fakeProducts) GetByIDs(_ context.Context, _ []string) ([]contracts.ProductRecord, error) {
	return nil, nil
}

func (f *fakeProducts) ListByMarket(_ context.Context, _ string) ([]contracts.ProductRecord, error) {
	return nil, nil
}

type fakeMarker struct {
	marked map[string]bool
}

func (f *fakeMarker) MarkVerified(_ context.Context, id string, verified bool) error {
	if f.marked == nil {
		f.marked = make(map[string]bool)
	}
	f.marked[id] = verified
	return nil
}

func listingPage(price string) string {
	return `<html><body>
<span id="productTitle">Garlic Press</span>
<span class="a-price"><span class="a-price-whole">` + price + `.</span><span class="a-price-fraction">99</span></span>
</body></html>`
}

func newVerifier(t *testing.T, listingPrice string, monthlySales int, products *fakeProducts, marker *fakeMarker) *Verifier {
	t.Helper()
	log := logger.NewNop()

	catalogSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/dp/") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(listingPage(listingPrice)))
	}))
	t.Cleanup(catalogSrv.Close)

	estimateSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"data": []map[string]interface{}{
				{"asin": "B0TEST1", "monthly_sales": monthlySales, "monthly_revenue": 29750.0},
			},
		})
	}))
	t.Cleanup(estimateSrv.Close)

	catalog := amazon.NewClient(config.AmazonConfig{BaseURL: catalogSrv.URL},
		httputil.New(log).DisableRetry(), log)
	estimates := sellersprite.NewClient(config.SellerSpriteConfig{
		BaseURL: estimateSrv.URL, Marketplace: "US", RateLimit: 100,
	}, httputil.New(log).DisableRetry(), log)

	return NewVerifier(catalog, estimates, products, marker, log)
}

func storedProduct() *contracts.ProductRecord {
	return &contracts.ProductRecord{
		ID:           "p1",
		ASIN:         "B0TEST1",
		Price:        34.99,
		MonthlySales: 850,
	}
}

func TestVerifyProductMatches(t *testing.T) {
	products := &fakeProducts{records: map[string]*contracts.ProductRecord{"p1": storedProduct()}}
	marker := &fakeMarker{}
	v := newVerifier(t, "34", 850, products, marker)

	report, err := v.VerifyProduct(context.Background(), "p1")
	require.NoError(t, err)

	assert.True(t, report.Verified)
	assert.Empty(t, report.Mismatches)
	assert.True(t, marker.marked["p1"])
}

func TestVerifyProductPriceDrift(t *testing.T) {
	products := &fakeProducts{records: map[string]*contracts.ProductRecord{"p1": storedProduct()}}
	marker := &fakeMarker{}
	// Listing price 59.99 is far beyond the tolerance against stored 34.99
	v := newVerifier(t, "59", 850, products, marker)

	report, err := v.VerifyProduct(context.Background(), "p1")
	require.NoError(t, err)

	assert.False(t, report.Verified)
	require.Len(t, report.Mismatches, 1)
	assert.Contains(t, report.Mismatches[0], "price")
	assert.False(t, marker.marked["p1"])
}

func TestVerifyProductSalesDrift(t *testing.T) {
	products := &fakeProducts{records: map[string]*contracts.ProductRecord{"p1": storedProduct()}}
	marker := &fakeMarker{}
	v := newVerifier(t, "34", 200, products, marker)

	report, err := v.VerifyProduct(context.Background(), "p1")
	require.NoError(t, err)

	assert.False(t, report.Verified)
	require.Len(t, report.Mismatches, 1)
	assert.Contains(t, report.Mismatches[0], "monthly sales")
}

func TestVerifyProductsCollectsFailures(t *testing.T) {
	products := &fakeProducts{records: map[string]*contracts.ProductRecord{"p1": storedProduct()}}
	marker := &fakeMarker{}
	v := newVerifier(t, "34", 850, products, marker)

	reports := v.VerifyProducts(context.Background(), []string{"p1", "missing"}, 2)
	require.Len(t, reports, 2)

	byID := make(map[string]Report)
	for _, r := range reports {
		byID[r.ProductID] = r
	}
	assert.True(t, byID["p1"].Verified)
	assert.False(t, byID["missing"].Verified)
	assert.NotEmpty(t, byID["missing"].Mismatches)
}
