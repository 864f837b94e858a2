// Package amazon scrapes public catalog pages to verify product records
// against live listing data.
package amazon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/BlockchainHB/launchfast-sub005/pkg/config"
	"github.com/BlockchainHB/launchfast-sub005/pkg/httputil"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
)

// Client scrapes Amazon catalog pages
// SSOT: catalog page fetches happen only through this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.AmazonConfig
}

// NewClient creates a new catalog client
func NewClient(cfg config.AmazonConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
	}
}

// Listing is the subset of a catalog page used for verification
type Listing struct {
	ASIN    string
	Title   string
	Brand   string
	Price   float64
	Rating  float64
	Reviews int
	BSR     int
}

// FetchListing fetches and parses one product's catalog page
func (c *Client) FetchListing(ctx context.Context, asin string) (*Listing, error) {
	url := fmt.Sprintf("%s/dp/%s", c.cfg.BaseURL, asin)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("listing %s not found", asin)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	listing, err := c.parseListing(string(body), asin)
	if err != nil {
		return nil, fmt.Errorf("parse listing failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"asin":    asin,
		"price":   listing.Price,
		"reviews": listing.Reviews,
	}).Debug("Fetched catalog listing")

	return listing, nil
}

var (
	ratingRe  = regexp.MustCompile(`([\d.]+) out of 5`)
	reviewsRe = regexp.MustCompile(`([\d,]+) ratings?`)
	bsrRe     = regexp.MustCompile(`#([\d,]+) in`)
)

// parseListing extracts the verification fields from a catalog page
func (c *Client) parseListing(html, asin string) (*Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	listing := &Listing{ASIN: asin}

	listing.Title = strings.TrimSpace(doc.Find("#productTitle").First().Text())
	if listing.Title == "" {
		return nil, fmt.Errorf("no product title, page likely blocked")
	}

	brand := strings.TrimSpace(doc.Find("#bylineInfo").First().Text())
	brand = strings.TrimPrefix(brand, "Visit the ")
	brand = strings.TrimPrefix(brand, "Brand: ")
	listing.Brand = strings.TrimSuffix(brand, " Store")

	// Price is split into whole and fraction spans
	whole := strings.TrimSpace(doc.Find("span.a-price-whole").First().Text())
	fraction := strings.TrimSpace(doc.Find("span.a-price-fraction").First().Text())
	if whole != "" {
		whole = strings.TrimSuffix(strings.ReplaceAll(whole, ",", ""), ".")
		if fraction == "" {
			fraction = "00"
		}
		listing.Price, _ = strconv.ParseFloat(whole+"."+fraction, 64)
	}

	if m := ratingRe.FindStringSubmatch(doc.Find("#acrPopover").AttrOr("title", "")); m != nil {
		listing.Rating, _ = strconv.ParseFloat(m[1], 64)
	} else if m := ratingRe.FindStringSubmatch(doc.Find("span.a-icon-alt").First().Text()); m != nil {
		listing.Rating, _ = strconv.ParseFloat(m[1], 64)
	}

	if m := reviewsRe.FindStringSubmatch(doc.Find("#acrCustomerReviewText").First().Text()); m != nil {
		listing.Reviews = parseCount(m[1])
	}

	// Best seller rank lives in the product details table or bullets
	doc.Find("#productDetails_detailBullets_sections1 td, #detailBulletsWrapper_feature_div li").
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := s.Text()
			if !strings.Contains(text, "Best Sellers Rank") && !strings.Contains(text, "#") {
				return true
			}
			if m := bsrRe.FindStringSubmatch(text); m != nil {
				listing.BSR = parseCount(m[1])
				return false
			}
			return true
		})

	return listing, nil
}

func parseCount(s string) int {
	n, _ := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	return n
}
