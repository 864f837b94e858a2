package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
)

// MarketRepository persists markets and their recalculation snapshots
type MarketRepository struct {
	pool *pgxpool.Pool
}

// NewMarketRepository creates a new market repository
func NewMarketRepository(pool *pgxpool.Pool) *MarketRepository {
	return &MarketRepository{pool: pool}
}

// Get fetches one market by id
func (r *MarketRepository) Get(ctx context.Context, id string) (*contracts.MarketRecord, error) {
	query := `SELECT id, user_id, keyword, created_at FROM research.markets WHERE id = $1`

	var m contracts.MarketRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.UserID, &m.Keyword, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.NewNotFoundError("market", id)
		}
		return nil, fmt.Errorf("get market: %w", err)
	}

	return &m, nil
}

// MarketsContaining returns the distinct markets holding any of the given
// products. Legacy products (null market_id) contribute nothing.
func (r *MarketRepository) MarketsContaining(ctx context.Context, productIDs []string) ([]string, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT market_id
		FROM research.products
		WHERE id = ANY($1) AND market_id IS NOT NULL
		ORDER BY market_id`

	rows, err := r.pool.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("markets containing products: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan market id: %w", err)
		}
		out = append(out, id)
	}

	return out, rows.Err()
}

// UpsertSnapshot replaces the one live snapshot of a market
func (r *MarketRepository) UpsertSnapshot(ctx context.Context, s *contracts.MarketSnapshot) (*contracts.MarketSnapshot, error) {
	query := `
		INSERT INTO research.market_snapshots
			(market_id, avg_price, avg_monthly_sales, avg_monthly_revenue, avg_reviews,
			 avg_rating, avg_bsr, avg_margin, avg_cpc, avg_daily_revenue,
			 avg_launch_budget, avg_profit_per_unit, valid_members, total_members,
			 grade, consistency, risk, opportunity_score, reason, recalculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (market_id) DO UPDATE SET
			avg_price = EXCLUDED.avg_price,
			avg_monthly_sales = EXCLUDED.avg_monthly_sales,
			avg_monthly_revenue = EXCLUDED.avg_monthly_revenue,
			avg_reviews = EXCLUDED.avg_reviews,
			avg_rating = EXCLUDED.avg_rating,
			avg_bsr = EXCLUDED.avg_bsr,
			avg_margin = EXCLUDED.avg_margin,
			avg_cpc = EXCLUDED.avg_cpc,
			avg_daily_revenue = EXCLUDED.avg_daily_revenue,
			avg_launch_budget = EXCLUDED.avg_launch_budget,
			avg_profit_per_unit = EXCLUDED.avg_profit_per_unit,
			valid_members = EXCLUDED.valid_members,
			total_members = EXCLUDED.total_members,
			grade = EXCLUDED.grade,
			consistency = EXCLUDED.consistency,
			risk = EXCLUDED.risk,
			opportunity_score = EXCLUDED.opportunity_score,
			reason = EXCLUDED.reason,
			recalculated_at = EXCLUDED.recalculated_at
		RETURNING market_id`

	var id string
	err := r.pool.QueryRow(ctx, query,
		s.MarketID,
		s.Stats.AvgPrice, s.Stats.AvgMonthlySales, s.Stats.AvgMonthlyRevenue, s.Stats.AvgReviews,
		s.Stats.AvgRating, s.Stats.AvgBSR, s.Stats.AvgMargin, s.Stats.AvgCPC, s.Stats.AvgDailyRevenue,
		s.Stats.AvgLaunchBudget, s.Stats.AvgProfitPerUnit, s.Stats.ValidMembers, s.Stats.TotalMembers,
		s.Grade, s.Consistency, s.Risk, s.OpportunityScore, s.Reason, s.RecalculatedAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("upsert market snapshot: %w", err)
	}

	return s, nil
}

// GetSnapshot fetches a market's live snapshot
func (r *MarketRepository) GetSnapshot(ctx context.Context, marketID string) (*contracts.MarketSnapshot, error) {
	query := `
		SELECT market_id, avg_price, avg_monthly_sales, avg_monthly_revenue, avg_reviews,
			avg_rating, avg_bsr, avg_margin, avg_cpc, avg_daily_revenue,
			avg_launch_budget, avg_profit_per_unit, valid_members, total_members,
			grade, consistency, risk, opportunity_score, reason, recalculated_at
		FROM research.market_snapshots
		WHERE market_id = $1`

	var s contracts.MarketSnapshot
	err := r.pool.QueryRow(ctx, query, marketID).Scan(
		&s.MarketID,
		&s.Stats.AvgPrice, &s.Stats.AvgMonthlySales, &s.Stats.AvgMonthlyRevenue, &s.Stats.AvgReviews,
		&s.Stats.AvgRating, &s.Stats.AvgBSR, &s.Stats.AvgMargin, &s.Stats.AvgCPC, &s.Stats.AvgDailyRevenue,
		&s.Stats.AvgLaunchBudget, &s.Stats.AvgProfitPerUnit, &s.Stats.ValidMembers, &s.Stats.TotalMembers,
		&s.Grade, &s.Consistency, &s.Risk, &s.OpportunityScore, &s.Reason, &s.RecalculatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contracts.NewNotFoundError("market snapshot", marketID)
		}
		return nil, fmt.Errorf("get market snapshot: %w", err)
	}

	return &s, nil
}

// StaleMarkets lists markets whose snapshot is older than the cutoff or
// missing entirely
func (r *MarketRepository) StaleMarkets(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `
		SELECT m.id
		FROM research.markets m
		LEFT JOIN research.market_snapshots s ON s.market_id = m.id
		WHERE s.market_id IS NULL OR s.recalculated_at < $1
		ORDER BY m.id`

	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("stale markets: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan market id: %w", err)
		}
		out = append(out, id)
	}

	return out, rows.Err()
}
