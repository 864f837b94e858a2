package contracts

import "time"

// RiskClassification is the qualitative risk bucket assigned during analysis
type RiskClassification string

const (
	RiskNone       RiskClassification = "none"
	RiskFragile    RiskClassification = "fragile"
	RiskElectrical RiskClassification = "electrical"
	RiskBanned     RiskClassification = "banned"
	RiskUnknown    RiskClassification = "unknown"
)

// ConsistencyClassification describes demand stability for one product
type ConsistencyClassification string

const (
	ConsistencyStable    ConsistencyClassification = "stable"
	ConsistencySeasonal  ConsistencyClassification = "seasonal"
	ConsistencyTrendOnly ConsistencyClassification = "trend-only"
	ConsistencyUnknown   ConsistencyClassification = "unknown"
)

// Grade is a rung on the opportunity ladder, "A10" (best) down to "D1",
// with "F" as the zero-profit / disqualified rung
type Grade string

// GradeDisqualified is the distinguished worst outcome
const GradeDisqualified Grade = "F"

// KeywordSignal carries search demand and advertising cost for one keyword
type KeywordSignal struct {
	Keyword      string  `json:"keyword"`
	SearchVolume int     `json:"search_volume"`
	CPC          float64 `json:"cpc"` // cost per click, USD
}

// ProductRecord is a researched product as written by the ingestion
// pipeline. Mutated only by re-ingestion or through an override.
type ProductRecord struct {
	ID       string  `json:"id"`
	ASIN     string  `json:"asin"`
	UserID   string  `json:"user_id"`
	MarketID *string `json:"market_id,omitempty"` // nil for legacy products

	Title string  `json:"title"`
	Brand string  `json:"brand"`
	Price float64 `json:"price"`

	BSR     *int     `json:"bsr,omitempty"`
	Reviews int      `json:"reviews"`
	Rating  *float64 `json:"rating,omitempty"`

	MonthlySales   int     `json:"monthly_sales"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	MonthlyProfit  float64 `json:"monthly_profit"`
	Margin         float64 `json:"margin"` // 0..1
	ProfitPerUnit  float64 `json:"profit_per_unit"`
	DailyRevenue   float64 `json:"daily_revenue"`
	LaunchBudget   float64 `json:"launch_budget"`

	Risk             RiskClassification        `json:"risk"`
	Consistency      ConsistencyClassification `json:"consistency"`
	OpportunityScore *float64                  `json:"opportunity_score,omitempty"` // 0..10

	Keywords []KeywordSignal `json:"keywords,omitempty"`
	Grade    Grade           `json:"grade"`

	// Verified is set by the ingestion collaborator once external data
	// providers confirmed the record. Unverified products never count as
	// market members.
	Verified bool `json:"verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AvgCPC is the mean advertising cost over the product's keyword signals
func (p *ProductRecord) AvgCPC() float64 {
	sum := 0.0
	n := 0
	for _, k := range p.Keywords {
		if k.CPC > 0 {
			sum += k.CPC
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// SignalBundle is the fixed grading input shape
type SignalBundle struct {
	MonthlyProfit    float64
	Price            float64
	Margin           float64
	Reviews          int
	AvgCPC           float64
	Risk             RiskClassification
	Consistency      ConsistencyClassification
	ProfitPerUnit    float64
	BSR              *int
	Rating           *float64
	OpportunityScore *float64
}

// Signals assembles the grading bundle from the record's current values
func (p *ProductRecord) Signals() SignalBundle {
	return SignalBundle{
		MonthlyProfit:    p.MonthlyProfit,
		Price:            p.Price,
		Margin:           p.Margin,
		Reviews:          p.Reviews,
		AvgCPC:           p.AvgCPC(),
		Risk:             p.Risk,
		Consistency:      p.Consistency,
		ProfitPerUnit:    p.ProfitPerUnit,
		BSR:              p.BSR,
		Rating:           p.Rating,
		OpportunityScore: p.OpportunityScore,
	}
}
