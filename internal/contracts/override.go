package contracts

import (
	"encoding/json"
	"time"
)

// ProductOverride is a sparse user edit of a product record, keyed by
// (user, product). At most one row exists per pair; the store enforces it
// with a uniqueness constraint.
type ProductOverride struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	ASIN      string `json:"asin"`
	Reason    string `json:"reason"`

	Title Field[string] `json:"title,omitempty"`
	Brand Field[string] `json:"brand,omitempty"`

	Price  Field[float64] `json:"price,omitempty"`
	Margin Field[float64] `json:"margin,omitempty"`

	BSR     Field[int]     `json:"bsr,omitempty"`
	Reviews Field[int]     `json:"reviews,omitempty"`
	Rating  Field[float64] `json:"rating,omitempty"`

	MonthlySales   Field[int]     `json:"monthly_sales,omitempty"`
	MonthlyRevenue Field[float64] `json:"monthly_revenue,omitempty"`
	MonthlyProfit  Field[float64] `json:"monthly_profit,omitempty"`
	ProfitPerUnit  Field[float64] `json:"profit_per_unit,omitempty"`
	DailyRevenue   Field[float64] `json:"daily_revenue,omitempty"`
	LaunchBudget   Field[float64] `json:"launch_budget,omitempty"`

	Risk             Field[RiskClassification]        `json:"risk,omitempty"`
	Consistency      Field[ConsistencyClassification] `json:"consistency,omitempty"`
	OpportunityScore Field[float64]                   `json:"opportunity_score,omitempty"`

	// Grade set here wins over the recomputed grade
	Grade Field[Grade] `json:"grade,omitempty"`

	// Keywords replaces the whole keyword list when set
	Keywords Field[[]KeywordSignal] `json:"keywords,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty reports whether the override changes nothing
func (o *ProductOverride) IsEmpty() bool {
	return o.Title.IsUnset() && o.Brand.IsUnset() &&
		o.Price.IsUnset() && o.Margin.IsUnset() &&
		o.BSR.IsUnset() && o.Reviews.IsUnset() && o.Rating.IsUnset() &&
		o.MonthlySales.IsUnset() && o.MonthlyRevenue.IsUnset() &&
		o.MonthlyProfit.IsUnset() && o.ProfitPerUnit.IsUnset() &&
		o.DailyRevenue.IsUnset() && o.LaunchBudget.IsUnset() &&
		o.Risk.IsUnset() && o.Consistency.IsUnset() &&
		o.OpportunityScore.IsUnset() && o.Grade.IsUnset() &&
		o.Keywords.IsUnset()
}

// MarshalJSON emits only fields that are Set (value) or Clear (null);
// Unset fields are omitted entirely so a round trip preserves all three
// states. The default decoder restores them through Field.UnmarshalJSON.
func (o ProductOverride) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"user_id":    o.UserID,
		"product_id": o.ProductID,
		"asin":       o.ASIN,
		"reason":     o.Reason,
		"created_at": o.CreatedAt,
		"updated_at": o.UpdatedAt,
	}

	put := func(key string, set bool, clear bool, value interface{}) {
		if set {
			out[key] = value
		} else if clear {
			out[key] = nil
		}
	}

	v, ok := o.Title.Value()
	put("title", ok, o.Title.IsClear(), v)
	bv, ok := o.Brand.Value()
	put("brand", ok, o.Brand.IsClear(), bv)
	fv, ok := o.Price.Value()
	put("price", ok, o.Price.IsClear(), fv)
	fv, ok = o.Margin.Value()
	put("margin", ok, o.Margin.IsClear(), fv)
	iv, ok := o.BSR.Value()
	put("bsr", ok, o.BSR.IsClear(), iv)
	iv, ok = o.Reviews.Value()
	put("reviews", ok, o.Reviews.IsClear(), iv)
	fv, ok = o.Rating.Value()
	put("rating", ok, o.Rating.IsClear(), fv)
	iv, ok = o.MonthlySales.Value()
	put("monthly_sales", ok, o.MonthlySales.IsClear(), iv)
	fv, ok = o.MonthlyRevenue.Value()
	put("monthly_revenue", ok, o.MonthlyRevenue.IsClear(), fv)
	fv, ok = o.MonthlyProfit.Value()
	put("monthly_profit", ok, o.MonthlyProfit.IsClear(), fv)
	fv, ok = o.ProfitPerUnit.Value()
	put("profit_per_unit", ok, o.ProfitPerUnit.IsClear(), fv)
	fv, ok = o.DailyRevenue.Value()
	put("daily_revenue", ok, o.DailyRevenue.IsClear(), fv)
	fv, ok = o.LaunchBudget.Value()
	put("launch_budget", ok, o.LaunchBudget.IsClear(), fv)
	rv, ok := o.Risk.Value()
	put("risk", ok, o.Risk.IsClear(), rv)
	cv, ok := o.Consistency.Value()
	put("consistency", ok, o.Consistency.IsClear(), cv)
	fv, ok = o.OpportunityScore.Value()
	put("opportunity_score", ok, o.OpportunityScore.IsClear(), fv)
	gv, ok := o.Grade.Value()
	put("grade", ok, o.Grade.IsClear(), gv)
	kv, ok := o.Keywords.Value()
	put("keywords", ok, o.Keywords.IsClear(), kv)

	return json.Marshal(out)
}

// EffectiveProduct is a product record after applying any override. Never
// persisted; profit and grade are always re-derived.
type EffectiveProduct struct {
	ProductRecord

	OverrideApplied bool             `json:"override_applied"`
	Override        *ProductOverride `json:"override,omitempty"`
}
