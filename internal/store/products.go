// Package store holds the pgx repositories backing the research core.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
)

// ProductRepository reads product records written by the ingestion pipeline
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new product repository
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `
	id, asin, user_id, market_id, title, brand, price, bsr, reviews, rating,
	monthly_sales, monthly_revenue, monthly_profit, margin, profit_per_unit,
	daily_revenue, launch_budget, risk, consistency, opportunity_score,
	keywords, grade, verified, created_at, updated_at`

// Get fetches one product by id
func (r *ProductRepository) Get(ctx context.Context, id string) (*contracts.ProductRecord, error) {
	query := `SELECT ` + productColumns + `
		FROM research.products
		WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.NewNotFoundError("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return p, nil
}

// GetByIDs fetches products by id, skipping ids that do not exist
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]contracts.ProductRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + productColumns + `
		FROM research.products
		WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ListByMarket fetches all member products of a market
func (r *ProductRepository) ListByMarket(ctx context.Context, marketID string) ([]contracts.ProductRecord, error) {
	query := `SELECT ` + productColumns + `
		FROM research.products
		WHERE market_id = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, marketID)
	if err != nil {
		return nil, fmt.Errorf("list products by market: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// MarkVerified flips a product's verification flag after the provider
// checks complete
func (r *ProductRepository) MarkVerified(ctx context.Context, id string, verified bool) error {
	query := `UPDATE research.products SET verified = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, verified)
	if err != nil {
		return fmt.Errorf("mark product verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contracts.NewNotFoundError("product", id)
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]contracts.ProductRecord, error) {
	var out []contracts.ProductRecord
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (*contracts.ProductRecord, error) {
	var p contracts.ProductRecord
	var keywords []byte

	err := row.Scan(
		&p.ID, &p.ASIN, &p.UserID, &p.MarketID, &p.Title, &p.Brand, &p.Price,
		&p.BSR, &p.Reviews, &p.Rating,
		&p.MonthlySales, &p.MonthlyRevenue, &p.MonthlyProfit, &p.Margin, &p.ProfitPerUnit,
		&p.DailyRevenue, &p.LaunchBudget, &p.Risk, &p.Consistency, &p.OpportunityScore,
		&keywords, &p.Grade, &p.Verified, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &p.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords: %w", err)
		}
	}

	return &p, nil
}
