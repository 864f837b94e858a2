package sellersprite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlockchainHB/launchfast-sub005/pkg/config"
	"github.com/BlockchainHB/launchfast-sub005/pkg/httputil"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
)

func newTestClient(baseURL string) *Client {
	log := logger.NewNop()
	return NewClient(config.SellerSpriteConfig{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Marketplace: "US",
	}, httputil.New(log).DisableRetry(), log)
}

func TestFetchSalesEstimates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sales/batch", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("secret-key"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "US", req["marketplace"])

		json.NewEncoder(w).Encode(salesResponse{
			Code: 0,
			Data: []SalesEstimate{
				{ASIN: "B0TEST1", MonthlySales: 850, MonthlyRevenue: 29750, BSR: 4200, Price: 34.99},
			},
		})
	}))
	defer srv.Close()

	estimates, err := newTestClient(srv.URL).FetchSalesEstimates(context.Background(), []string{"B0TEST1"})
	require.NoError(t, err)
	require.Len(t, estimates, 1)
	assert.Equal(t, "B0TEST1", estimates[0].ASIN)
	assert.Equal(t, 850, estimates[0].MonthlySales)
}

func TestFetchSalesEstimatesEmptyBatch(t *testing.T) {
	estimates, err := newTestClient("http://unused").FetchSalesEstimates(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, estimates)
}

func TestFetchSalesEstimatesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(salesResponse{Code: 4003, Message: "quota exceeded"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchSalesEstimates(context.Background(), []string{"B0TEST1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestFetchKeywordVolumes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/keywords/reverse", r.URL.Path)
		assert.Equal(t, "B0TEST1", r.URL.Query().Get("asin"))

		json.NewEncoder(w).Encode(keywordResponse{
			Code: 0,
			Data: []KeywordVolume{
				{Keyword: "garlic press", SearchVolume: 9100, CPC: 0.45},
				{Keyword: "garlic crusher", SearchVolume: 3300, CPC: 0.38},
			},
		})
	}))
	defer srv.Close()

	signals, err := newTestClient(srv.URL).FetchKeywordVolumes(context.Background(), "B0TEST1")
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.Equal(t, "garlic press", signals[0].Keyword)
	assert.InDelta(t, 0.45, signals[0].CPC, 1e-9)
}

func TestFetchKeywordVolumesBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchKeywordVolumes(context.Background(), "B0TEST1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
