// Package override combines base product records with sparse user
// overrides into effective records, re-deriving profit and grade.
package override

import (
	"math"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
	"github.com/BlockchainHB/launchfast-sub005/internal/grading"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
)

// Merger computes effective product records
type Merger struct {
	logger *logger.Logger
}

// NewMerger creates a new merger
func NewMerger(log *logger.Logger) *Merger {
	return &Merger{logger: log}
}

// Merge applies an override to a base record. A nil or empty override
// returns the base unchanged. Profit and grade on the result are always
// re-derived from the merged values; the stored ones are never trusted.
func (m *Merger) Merge(base *contracts.ProductRecord, ov *contracts.ProductOverride) *contracts.EffectiveProduct {
	eff := &contracts.EffectiveProduct{ProductRecord: *base}

	if ov == nil || ov.IsEmpty() {
		eff.Override = ov
		return eff
	}

	eff.OverrideApplied = true
	eff.Override = ov

	eff.Title = ov.Title.Resolve(base.Title)
	eff.Brand = ov.Brand.Resolve(base.Brand)
	eff.Price = ov.Price.Resolve(base.Price)
	eff.Margin = ov.Margin.Resolve(base.Margin)
	eff.Reviews = ov.Reviews.Resolve(base.Reviews)
	eff.MonthlySales = ov.MonthlySales.Resolve(base.MonthlySales)
	eff.MonthlyRevenue = ov.MonthlyRevenue.Resolve(base.MonthlyRevenue)
	eff.ProfitPerUnit = ov.ProfitPerUnit.Resolve(base.ProfitPerUnit)
	eff.DailyRevenue = ov.DailyRevenue.Resolve(base.DailyRevenue)
	eff.LaunchBudget = ov.LaunchBudget.Resolve(base.LaunchBudget)

	eff.BSR = resolvePtr(ov.BSR, base.BSR)
	eff.Rating = resolvePtr(ov.Rating, base.Rating)
	eff.OpportunityScore = resolvePtr(ov.OpportunityScore, base.OpportunityScore)

	eff.Risk = resolveEnum(ov.Risk, base.Risk, contracts.RiskUnknown)
	eff.Consistency = resolveEnum(ov.Consistency, base.Consistency, contracts.ConsistencyUnknown)

	// Keyword signals stay untouched unless explicitly replaced
	if kws, ok := ov.Keywords.Value(); ok {
		eff.Keywords = kws
	} else if ov.Keywords.IsClear() {
		eff.Keywords = nil
	}

	// Profit comes from the merged revenue and margin, never from either
	// profit field directly. The stored profit is only a fallback when
	// revenue or margin is unavailable.
	storedProfit := ov.MonthlyProfit.Resolve(base.MonthlyProfit)
	if eff.MonthlyRevenue > 0 && eff.Margin != 0 {
		eff.MonthlyProfit = eff.MonthlyRevenue * math.Max(eff.Margin, 0)
	} else {
		eff.MonthlyProfit = storedProfit
	}

	// Grade depends on everything above, so it is derived last
	if manual, ok := ov.Grade.Value(); ok {
		eff.Grade = manual
	} else {
		result := grading.Evaluate(eff.Signals())
		eff.Grade = result.Grade

		m.logger.WithFields(map[string]interface{}{
			"product_id": base.ID,
			"user_id":    ov.UserID,
			"grade":      string(result.Grade),
			"net":        result.Net,
		}).Debug("Effective grade recomputed")
	}

	return eff
}

// resolvePtr applies a value field to an optional base field
func resolvePtr[T any](f contracts.Field[T], base *T) *T {
	if v, ok := f.Value(); ok {
		return &v
	}
	if f.IsClear() {
		return nil
	}
	return base
}

// resolveEnum treats Clear on a classification as "unknown", not empty
func resolveEnum[T ~string](f contracts.Field[T], base, unknown T) T {
	if v, ok := f.Value(); ok {
		return v
	}
	if f.IsClear() {
		return unknown
	}
	return base
}
