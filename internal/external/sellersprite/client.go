// Package sellersprite wraps the sales estimate and keyword volume
// provider used to verify product records.
package sellersprite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
	"github.com/BlockchainHB/launchfast-sub005/pkg/config"
	"github.com/BlockchainHB/launchfast-sub005/pkg/httputil"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
)

// Client handles communication with the SellerSprite API
// SSOT: SellerSprite calls happen only through this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.SellerSpriteConfig

	// In-process limiter on top of the shared redis one, so a single
	// worker cannot burst the provider even when redis is disabled
	limiter *rate.Limiter
}

// NewClient creates a new SellerSprite API client
func NewClient(cfg config.SellerSpriteConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// SalesEstimate is the provider's monthly sales view of one ASIN
type SalesEstimate struct {
	ASIN           string  `json:"asin"`
	MonthlySales   int     `json:"monthly_sales"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	BSR            int     `json:"bsr"`
	Price          float64 `json:"price"`
}

// KeywordVolume is one keyword's demand and advertising cost
type KeywordVolume struct {
	Keyword      string  `json:"keyword"`
	SearchVolume int     `json:"search_volume"`
	CPC          float64 `json:"cpc"`
}

type salesResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    []SalesEstimate `json:"data"`
}

type keywordResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    []KeywordVolume `json:"data"`
}

// request makes an authenticated request to the provider. The secret key
// rides on a header, so the request is built here rather than through the
// shared POST helpers.
func (c *Client) request(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("secret-key", c.cfg.APIKey)

	return c.httpClient.Do(req)
}

// FetchSalesEstimates fetches sales estimates for a batch of ASINs
func (c *Client) FetchSalesEstimates(ctx context.Context, asins []string) ([]SalesEstimate, error) {
	if len(asins) == 0 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/sales/batch", c.cfg.BaseURL)
	payload, err := json.Marshal(map[string]interface{}{
		"marketplace": c.cfg.Marketplace,
		"asins":       asins,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal sales request: %w", err)
	}

	resp, err := c.request(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("fetch sales estimates: %w", err)
	}
	defer resp.Body.Close()

	var out salesResponse
	if err := c.decode(resp, &out); err != nil {
		return nil, fmt.Errorf("fetch sales estimates: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"requested": len(asins),
		"returned":  len(out.Data),
	}).Debug("Fetched sales estimates")

	return out.Data, nil
}

// FetchKeywordVolumes fetches search volume and CPC for an ASIN's reverse
// keyword lookup
func (c *Client) FetchKeywordVolumes(ctx context.Context, asin string) ([]contracts.KeywordSignal, error) {
	endpoint := fmt.Sprintf("%s/keywords/reverse?%s", c.cfg.BaseURL, url.Values{
		"marketplace": {c.cfg.Marketplace},
		"asin":        {asin},
	}.Encode())

	resp, err := c.request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("keyword lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	var out keywordResponse
	if err := c.decode(resp, &out); err != nil {
		return nil, fmt.Errorf("keyword lookup: %w", err)
	}

	signals := make([]contracts.KeywordSignal, len(out.Data))
	for i, kw := range out.Data {
		signals[i] = contracts.KeywordSignal{
			Keyword:      kw.Keyword,
			SearchVolume: kw.SearchVolume,
			CPC:          kw.CPC,
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"asin":     asin,
		"keywords": len(signals),
	}).Debug("Fetched keyword volumes")

	return signals, nil
}

// decode reads a provider response, checking both the HTTP status and the
// envelope code
func (c *Client) decode(resp *http.Response, dest interface{}) error {
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	switch env := dest.(type) {
	case *salesResponse:
		if env.Code != 0 {
			return fmt.Errorf("provider error %d: %s", env.Code, env.Message)
		}
	case *keywordResponse:
		if env.Code != 0 {
			return fmt.Errorf("provider error %d: %s", env.Code, env.Message)
		}
	}

	return nil
}
