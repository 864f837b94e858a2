package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
)

func member(id string, price float64, verified bool) contracts.EffectiveProduct {
	return contracts.EffectiveProduct{
		ProductRecord: contracts.ProductRecord{
			ID:             id,
			Price:          price,
			Reviews:        100,
			MonthlySales:   500,
			MonthlyRevenue: 15000,
			Margin:         0.35,
			ProfitPerUnit:  10,
			DailyRevenue:   500,
			LaunchBudget:   3000,
			Risk:           contracts.RiskNone,
			Consistency:    contracts.ConsistencyStable,
			Keywords:       []contracts.KeywordSignal{{Keyword: "k", SearchVolume: 1000, CPC: 0.60}},
			Grade:          "B5",
			Verified:       verified,
		},
	}
}

func TestAggregateFiltersInvalidMembers(t *testing.T) {
	a := NewAggregator(logger.NewNop())

	// Three valid members at different prices plus two invalid ones
	m1 := member("p1", 10, true)
	m2 := member("p2", 20, true)
	m3 := member("p3", 30, true)
	unverified := member("p4", 999, false)
	freePrice := member("p5", 0, true)

	snap, err := a.Aggregate("mkt-1", []contracts.EffectiveProduct{m1, m2, m3, unverified, freePrice}, "test")
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Stats.ValidMembers)
	assert.Equal(t, 5, snap.Stats.TotalMembers)
	// Averages cover exactly the three valid members
	assert.InDelta(t, 20.0, snap.Stats.AvgPrice, 0.001)
	assert.InDelta(t, 15000.0, snap.Stats.AvgMonthlyRevenue, 0.001)
}

func TestAggregateEmptyValidSetIsError(t *testing.T) {
	a := NewAggregator(logger.NewNop())

	_, err := a.Aggregate("mkt-1", []contracts.EffectiveProduct{member("p1", 0, true)}, "test")
	require.Error(t, err)
	assert.True(t, contracts.IsAggregation(err))
}

func TestConsistencyFromGradeVariance(t *testing.T) {
	a := NewAggregator(logger.NewNop())

	build := func(grades ...contracts.Grade) []contracts.EffectiveProduct {
		out := make([]contracts.EffectiveProduct, len(grades))
		for i, g := range grades {
			out[i] = member("p", 25, true)
			out[i].Grade = g
		}
		return out
	}

	tests := []struct {
		grades []contracts.Grade
		want   contracts.ConsistencyLevel
	}{
		{[]contracts.Grade{"B5", "B5", "B5"}, contracts.ConsistencyHigh},
		{[]contracts.Grade{"B5", "A1", "B5"}, contracts.ConsistencyMedium},
		{[]contracts.Grade{"B5", "A1", "C2"}, contracts.ConsistencyLow},
		{[]contracts.Grade{"B5", "A1", "C2", "D4"}, contracts.ConsistencyVariable},
	}

	for _, tt := range tests {
		snap, err := a.Aggregate("mkt-1", build(tt.grades...), "test")
		require.NoError(t, err)
		assert.Equal(t, tt.want, snap.Consistency)
	}
}

func TestModalRiskFirstSeenTieBreak(t *testing.T) {
	a := NewAggregator(logger.NewNop())

	m1 := member("p1", 25, true)
	m1.Risk = contracts.RiskFragile
	m2 := member("p2", 25, true)
	m2.Risk = contracts.RiskElectrical
	m3 := member("p3", 25, true)
	m3.Risk = contracts.RiskFragile
	m4 := member("p4", 25, true)
	m4.Risk = contracts.RiskElectrical

	// 2-2 tie: fragile was seen first
	snap, err := a.Aggregate("mkt-1", []contracts.EffectiveProduct{m1, m2, m3, m4}, "test")
	require.NoError(t, err)
	assert.Equal(t, contracts.RiskFragile, snap.Risk)
}

func TestOpportunityScoreBounds(t *testing.T) {
	strong := contracts.MarketStats{
		AvgMargin:         0.60,
		AvgMonthlyRevenue: 90000,
		AvgReviews:        50,
	}
	score := opportunityScore(strong, contracts.ConsistencyHigh)
	assert.Equal(t, 99, score)

	weak := contracts.MarketStats{
		AvgMargin:         0.0,
		AvgMonthlyRevenue: 0,
		AvgReviews:        5000,
	}
	score = opportunityScore(weak, contracts.ConsistencyVariable)
	assert.Equal(t, 2, score)
}

func TestAggregateGradesFromAverages(t *testing.T) {
	a := NewAggregator(logger.NewNop())

	// Averages: revenue 60000, margin 0.5 -> treated profit 30000
	m1 := member("p1", 40, true)
	m1.MonthlyRevenue = 80000
	m1.Margin = 0.6
	m2 := member("p2", 40, true)
	m2.MonthlyRevenue = 40000
	m2.Margin = 0.4

	snap, err := a.Aggregate("mkt-1", []contracts.EffectiveProduct{m1, m2}, "test")
	require.NoError(t, err)

	assert.NotEmpty(t, snap.Grade)
	assert.NotEqual(t, contracts.GradeDisqualified, snap.Grade)
	assert.Equal(t, "test", snap.Reason)
	assert.False(t, snap.RecalculatedAt.IsZero())
}
