// Package market reduces a market's member products into averaged signals
// and a market grade.
package market

import (
	"math"
	"time"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
	"github.com/BlockchainHB/launchfast-sub005/internal/grading"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
)

// Opportunity score weights (the score is 1..100)
const (
	marginWeight      = 40.0
	revenueWeight     = 30.0
	competitionWeight = 20.0

	marginScale  = 0.50    // margin at or above this earns full margin points
	revenueScale = 50000.0 // monthly revenue earning full revenue points
	reviewScale  = 1000.0  // review count at which competition points hit zero
)

var consistencyBonus = map[contracts.ConsistencyLevel]float64{
	contracts.ConsistencyHigh:     10,
	contracts.ConsistencyMedium:   7,
	contracts.ConsistencyLow:      4,
	contracts.ConsistencyVariable: 2,
}

// Aggregator computes market snapshots from merged member records
type Aggregator struct {
	logger *logger.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{logger: log}
}

// Aggregate reduces a market's members (already merged with any active
// overrides) into a snapshot. Members failing the validity filter
// (unverified, or price <= 0) are excluded from every average; a market
// with no valid members is an AggregationError.
func (a *Aggregator) Aggregate(marketID string, members []contracts.EffectiveProduct, reason string) (*contracts.MarketSnapshot, error) {
	valid := make([]contracts.EffectiveProduct, 0, len(members))
	for _, m := range members {
		if m.Verified && m.Price > 0 {
			valid = append(valid, m)
		}
	}

	if len(valid) == 0 {
		return nil, contracts.NewAggregationError(marketID, "no valid members")
	}

	stats := averageStats(valid)
	stats.TotalMembers = len(members)

	consistency := consistencyFromGrades(valid)
	risk := modalRisk(valid)
	opportunity := opportunityScore(stats, consistency)

	bundle := contracts.SignalBundle{
		MonthlyProfit: stats.AvgMonthlyRevenue * stats.AvgMargin,
		Price:         stats.AvgPrice,
		Margin:        stats.AvgMargin,
		Reviews:       int(math.Round(stats.AvgReviews)),
		AvgCPC:        stats.AvgCPC,
		Risk:          risk,
		Consistency:   modalConsistency(valid),
		ProfitPerUnit: stats.AvgProfitPerUnit,
	}
	if stats.AvgBSR > 0 {
		bsr := int(math.Round(stats.AvgBSR))
		bundle.BSR = &bsr
	}
	if stats.AvgRating > 0 {
		rating := stats.AvgRating
		bundle.Rating = &rating
	}

	result := grading.Evaluate(bundle)

	snapshot := &contracts.MarketSnapshot{
		MarketID:         marketID,
		Stats:            stats,
		Grade:            result.Grade,
		Consistency:      consistency,
		Risk:             risk,
		OpportunityScore: opportunity,
		Reason:           reason,
		RecalculatedAt:   time.Now().UTC(),
	}

	a.logger.WithFields(map[string]interface{}{
		"market_id":     marketID,
		"valid_members": stats.ValidMembers,
		"total_members": stats.TotalMembers,
		"grade":         string(result.Grade),
		"opportunity":   opportunity,
	}).Info("Market aggregated")

	return snapshot, nil
}

// averageStats computes arithmetic means over the valid members. Optional
// signals (rank, rating) average over the members carrying them.
func averageStats(valid []contracts.EffectiveProduct) contracts.MarketStats {
	var stats contracts.MarketStats
	n := float64(len(valid))

	var bsrSum, ratingSum float64
	var bsrN, ratingN int

	for _, m := range valid {
		stats.AvgPrice += m.Price
		stats.AvgMonthlySales += float64(m.MonthlySales)
		stats.AvgMonthlyRevenue += m.MonthlyRevenue
		stats.AvgReviews += float64(m.Reviews)
		stats.AvgMargin += m.Margin
		stats.AvgCPC += m.AvgCPC()
		stats.AvgDailyRevenue += m.DailyRevenue
		stats.AvgLaunchBudget += m.LaunchBudget
		stats.AvgProfitPerUnit += m.ProfitPerUnit

		if m.BSR != nil && *m.BSR > 0 {
			bsrSum += float64(*m.BSR)
			bsrN++
		}
		if m.Rating != nil && *m.Rating > 0 {
			ratingSum += *m.Rating
			ratingN++
		}
	}

	stats.AvgPrice /= n
	stats.AvgMonthlySales /= n
	stats.AvgMonthlyRevenue /= n
	stats.AvgReviews /= n
	stats.AvgMargin /= n
	stats.AvgCPC /= n
	stats.AvgDailyRevenue /= n
	stats.AvgLaunchBudget /= n
	stats.AvgProfitPerUnit /= n

	if bsrN > 0 {
		stats.AvgBSR = bsrSum / float64(bsrN)
	}
	if ratingN > 0 {
		stats.AvgRating = ratingSum / float64(ratingN)
	}

	stats.ValidMembers = len(valid)
	return stats
}

// consistencyFromGrades maps grade variance among valid members to a level
func consistencyFromGrades(valid []contracts.EffectiveProduct) contracts.ConsistencyLevel {
	distinct := make(map[contracts.Grade]struct{})
	for _, m := range valid {
		distinct[m.Grade] = struct{}{}
	}

	switch len(distinct) {
	case 1:
		return contracts.ConsistencyHigh
	case 2:
		return contracts.ConsistencyMedium
	case 3:
		return contracts.ConsistencyLow
	default:
		return contracts.ConsistencyVariable
	}
}

// modalRisk picks the most frequent risk classification, first-seen on ties
func modalRisk(valid []contracts.EffectiveProduct) contracts.RiskClassification {
	counts := make(map[contracts.RiskClassification]int)
	order := make([]contracts.RiskClassification, 0, len(valid))

	for _, m := range valid {
		if _, seen := counts[m.Risk]; !seen {
			order = append(order, m.Risk)
		}
		counts[m.Risk]++
	}

	best := order[0]
	for _, r := range order {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best
}

// modalConsistency picks the most frequent member consistency class,
// first-seen on ties; it feeds the market grading bundle
func modalConsistency(valid []contracts.EffectiveProduct) contracts.ConsistencyClassification {
	counts := make(map[contracts.ConsistencyClassification]int)
	order := make([]contracts.ConsistencyClassification, 0, len(valid))

	for _, m := range valid {
		if _, seen := counts[m.Consistency]; !seen {
			order = append(order, m.Consistency)
		}
		counts[m.Consistency]++
	}

	best := order[0]
	for _, c := range order {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

// opportunityScore is the weighted 1..100 market attractiveness score
func opportunityScore(stats contracts.MarketStats, consistency contracts.ConsistencyLevel) int {
	marginPts := clamp01(stats.AvgMargin/marginScale) * marginWeight
	revenuePts := clamp01(stats.AvgMonthlyRevenue/revenueScale) * revenueWeight
	competitionPts := clamp01(1-stats.AvgReviews/reviewScale) * competitionWeight

	total := marginPts + revenuePts + competitionPts + consistencyBonus[consistency]

	score := int(math.Round(total))
	if score < 1 {
		score = 1
	}
	if score > 100 {
		score = 100
	}
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
