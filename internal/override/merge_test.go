package override

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
)

func baseProduct() *contracts.ProductRecord {
	rating := 4.5
	bsr := 3500
	return &contracts.ProductRecord{
		ID:             "prod-1",
		ASIN:           "B08TESTASIN",
		UserID:         "user-1",
		Title:          "Bamboo Cutting Board",
		Brand:          "KitchenCo",
		Price:          32.99,
		BSR:            &bsr,
		Reviews:        140,
		Rating:         &rating,
		MonthlySales:   900,
		MonthlyRevenue: 29691,
		MonthlyProfit:  10391,
		Margin:         0.35,
		ProfitPerUnit:  11.55,
		DailyRevenue:   989.7,
		LaunchBudget:   4500,
		Risk:           contracts.RiskNone,
		Consistency:    contracts.ConsistencyStable,
		Keywords: []contracts.KeywordSignal{
			{Keyword: "cutting board", SearchVolume: 41000, CPC: 0.85},
			{Keyword: "bamboo board", SearchVolume: 8000, CPC: 0.55},
		},
		Grade:    "B6",
		Verified: true,
	}
}

func TestMergeNilOverrideReturnsBase(t *testing.T) {
	m := NewMerger(logger.NewNop())
	base := baseProduct()

	eff := m.Merge(base, nil)

	assert.False(t, eff.OverrideApplied)
	assert.Equal(t, *base, eff.ProductRecord)
}

func TestMergeEmptyOverrideCoalescesToBase(t *testing.T) {
	m := NewMerger(logger.NewNop())
	base := baseProduct()
	ov := &contracts.ProductOverride{UserID: "user-1", ProductID: "prod-1", Reason: "noop"}

	eff := m.Merge(base, ov)

	assert.False(t, eff.OverrideApplied)
	assert.Equal(t, *base, eff.ProductRecord)
}

func TestMergeSingleFieldLeavesOthersAlone(t *testing.T) {
	m := NewMerger(logger.NewNop())
	base := baseProduct()
	ov := &contracts.ProductOverride{
		UserID:    "user-1",
		ProductID: "prod-1",
		Reason:    "corrected price",
		Price:     contracts.Set(39.99),
	}

	eff := m.Merge(base, ov)

	assert.True(t, eff.OverrideApplied)
	assert.Equal(t, 39.99, eff.Price)

	// Everything else coalesces to the base
	assert.Equal(t, base.Title, eff.Title)
	assert.Equal(t, base.Brand, eff.Brand)
	assert.Equal(t, base.Reviews, eff.Reviews)
	assert.Equal(t, base.Margin, eff.Margin)
	assert.Equal(t, base.MonthlyRevenue, eff.MonthlyRevenue)
	assert.Equal(t, base.Keywords, eff.Keywords)
	require.NotNil(t, eff.Rating)
	assert.Equal(t, *base.Rating, *eff.Rating)
}

func TestMergeDerivedProfitRecompute(t *testing.T) {
	m := NewMerger(logger.NewNop())
	base := baseProduct()

	// Only margin is overridden; profit must still change
	ov := &contracts.ProductOverride{
		UserID:    "user-1",
		ProductID: "prod-1",
		Reason:    "true landed cost",
		Margin:    contracts.Set(0.20),
	}

	eff := m.Merge(base, ov)

	assert.InDelta(t, base.MonthlyRevenue*0.20, eff.MonthlyProfit, 0.001)
	assert.NotEqual(t, base.MonthlyProfit, eff.MonthlyProfit)
}

func TestMergeNegativeMarginFloorsProfitAtZero(t *testing.T) {
	m := NewMerger(logger.NewNop())
	base := baseProduct()
	ov := &contracts.ProductOverride{
		UserID:    "user-1",
		ProductID: "prod-1",
		Reason:    "loss maker",
		Margin:    contracts.Set(-0.10),
	}

	eff := m.Merge(base, ov)

	assert.Equal(t, 0.0, eff.MonthlyProfit)
}

func TestMergeProfitFallsBackWhenRevenueUnavailable(t *testing.T) {
	m := NewMerger(logger.NewNop())
	base := baseProduct()
	base.MonthlyRevenue = 0
	base.MonthlyProfit = 1234

	ov := &contracts.ProductOverride{
		UserID:    "user-1",
		ProductID: "prod-1",
		Reason:    "margin fix",
		Margin:    contracts.Set(0.40),
	}

	eff := m.Merge(base, ov)

	assert.Equal(t, 1234.0, eff.MonthlyProfit)
}

func TestMergeGradeRecomputedAfterFieldMerge(t *testing.T) {
	m := NewMerger(logger.NewNop())
	base := baseProduct()

	// Push the merged bundle into disqualification via price
	ov := &contracts.ProductOverride{
		UserID:    "user-1",
		ProductID: "prod-1",
		Reason:    "repriced",
		Price:     contracts.Set(12.50),
	}

	eff := m.Merge(base, ov)

	assert.Equal(t, contracts.GradeDisqualified, eff.Grade)
}

func TestMergeManualGradeWinsVerbatim(t *testing.T) {
	m := NewMerger(logger.NewNop())
	base := baseProduct()
	ov := &contracts.ProductOverride{
		UserID:    "user-1",
		ProductID: "prod-1",
		Reason:    "analyst call",
		Price:     contracts.Set(12.50), // would disqualify
		Grade:     contracts.Set(contracts.Grade("A5")),
	}

	eff := m.Merge(base, ov)

	assert.Equal(t, contracts.Grade("A5"), eff.Grade)
}

func TestMergeClearDropsOptionalValue(t *testing.T) {
	m := NewMerger(logger.NewNop())
	base := baseProduct()
	ov := &contracts.ProductOverride{
		UserID:    "user-1",
		ProductID: "prod-1",
		Reason:    "rating disputed",
		Rating:    contracts.Clear[float64](),
	}

	eff := m.Merge(base, ov)

	assert.Nil(t, eff.Rating)
	require.NotNil(t, eff.BSR)
	assert.Equal(t, *base.BSR, *eff.BSR)
}

func TestMergeKeywordsReplacedOnlyWhenSet(t *testing.T) {
	m := NewMerger(logger.NewNop())
	base := baseProduct()
	replacement := []contracts.KeywordSignal{{Keyword: "chopping board", SearchVolume: 5000, CPC: 0.30}}
	ov := &contracts.ProductOverride{
		UserID:    "user-1",
		ProductID: "prod-1",
		Reason:    "keyword cleanup",
		Keywords:  contracts.Set(replacement),
	}

	eff := m.Merge(base, ov)
	assert.Equal(t, replacement, eff.Keywords)
}
