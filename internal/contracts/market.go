package contracts

import "time"

// ConsistencyLevel grades how uniformly a market's members perform,
// derived from grade variance among valid members
type ConsistencyLevel string

const (
	ConsistencyHigh     ConsistencyLevel = "high"
	ConsistencyMedium   ConsistencyLevel = "medium"
	ConsistencyLow      ConsistencyLevel = "low"
	ConsistencyVariable ConsistencyLevel = "variable"
)

// MarketRecord is a named grouping of products sharing a research keyword
type MarketRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Keyword   string    `json:"keyword"`
	CreatedAt time.Time `json:"created_at"`
}

// MarketStats holds the averaged signals over a market's valid members
type MarketStats struct {
	AvgPrice          float64 `json:"avg_price"`
	AvgMonthlySales   float64 `json:"avg_monthly_sales"`
	AvgMonthlyRevenue float64 `json:"avg_monthly_revenue"`
	AvgReviews        float64 `json:"avg_reviews"`
	AvgRating         float64 `json:"avg_rating"`
	AvgBSR            float64 `json:"avg_bsr"`
	AvgMargin         float64 `json:"avg_margin"`
	AvgCPC            float64 `json:"avg_cpc"`
	AvgDailyRevenue   float64 `json:"avg_daily_revenue"`
	AvgLaunchBudget   float64 `json:"avg_launch_budget"`
	AvgProfitPerUnit  float64 `json:"avg_profit_per_unit"`

	ValidMembers int `json:"valid_members"`
	TotalMembers int `json:"total_members"`
}

// MarketSnapshot is the one live recalculation result per market.
// A new recalculation replaces it; history is never kept.
type MarketSnapshot struct {
	MarketID string      `json:"market_id"`
	Stats    MarketStats `json:"stats"`

	Grade            Grade              `json:"grade"`
	Consistency      ConsistencyLevel   `json:"consistency"`
	Risk             RiskClassification `json:"risk"`
	OpportunityScore int                `json:"opportunity_score"` // 1..100

	Reason         string    `json:"reason"`
	RecalculatedAt time.Time `json:"recalculated_at"`
}
