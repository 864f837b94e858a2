package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// strongBundle clears the top rung gate on every condition
func strongBundle() contracts.SignalBundle {
	return contracts.SignalBundle{
		MonthlyProfit: 120000,
		Price:         40,
		Margin:        0.55,
		Reviews:       10,
		AvgCPC:        0.40,
		Risk:          contracts.RiskNone,
		Consistency:   contracts.ConsistencyStable,
		ProfitPerUnit: 0.25,
	}
}

func TestEvaluateTopRung(t *testing.T) {
	result := Evaluate(strongBundle())

	assert.Equal(t, contracts.Grade("A10"), result.Grade)
	assert.False(t, result.Disqualified)
	assert.False(t, result.GateDemoted)
	assert.Positive(t, result.Score)
}

func TestGateDemotesExactlyOneRung(t *testing.T) {
	// All gate conditions hold except margin (0.48 <= 0.50)
	b := strongBundle()
	b.Margin = 0.48

	result := Evaluate(b)

	assert.Equal(t, contracts.Grade("A9"), result.Grade)
	assert.True(t, result.GateDemoted)
	assert.False(t, result.Disqualified)
}

func TestEvaluateDeterminism(t *testing.T) {
	b := strongBundle()
	b.BSR = intPtr(500)
	b.Rating = floatPtr(4.6)
	b.OpportunityScore = floatPtr(8)

	first := Evaluate(b)
	second := Evaluate(b)

	assert.Equal(t, first.Grade, second.Grade)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.Adjustments, second.Adjustments)
}

func TestDisqualifierPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*contracts.SignalBundle)
		rule   string
	}{
		{"price below floor", func(b *contracts.SignalBundle) { b.Price = 12 }, "price-floor"},
		{"margin below floor", func(b *contracts.SignalBundle) { b.Margin = 0.10 }, "margin-floor"},
		{"banned risk", func(b *contracts.SignalBundle) { b.Risk = contracts.RiskBanned }, "risk-banned"},
		{"trend-only demand", func(b *contracts.SignalBundle) { b.Consistency = contracts.ConsistencyTrendOnly }, "trend-only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Every other signal is as favorable as possible
			b := strongBundle()
			tt.mutate(&b)

			result := Evaluate(b)

			assert.Equal(t, contracts.GradeDisqualified, result.Grade)
			assert.Equal(t, 0, result.Score)
			assert.True(t, result.Disqualified)
			assert.Equal(t, tt.rule, result.Disqualifier)
		})
	}
}

func TestMarginMonotonicity(t *testing.T) {
	// Decreasing margin must never improve the grade
	b := strongBundle()
	b.MonthlyProfit = 30000

	prevScore := Evaluate(b).Score
	for _, margin := range []float64{0.50, 0.45, 0.35, 0.29, 0.24, 0.21} {
		b.Margin = margin
		score := Evaluate(b).Score
		assert.LessOrEqual(t, score, prevScore, "margin %.2f improved the score", margin)
		prevScore = score
	}
}

func TestReviewMonotonicity(t *testing.T) {
	// Crossing a review band threshold must never improve the grade
	b := strongBundle()
	b.MonthlyProfit = 30000

	prevScore := Evaluate(b).Score
	for _, reviews := range []int{19, 20, 50, 199, 200, 499, 500, 5000} {
		b.Reviews = reviews
		score := Evaluate(b).Score
		assert.LessOrEqual(t, score, prevScore, "reviews %d improved the score", reviews)
		prevScore = score
	}
}

func TestPenaltiesAccumulate(t *testing.T) {
	b := contracts.SignalBundle{
		MonthlyProfit: 30000,
		Price:         30,
		Margin:        0.26, // thin-margin -1
		Reviews:       600,  // review-competition -3
		AvgCPC:        3.0,  // high-cpc -1
		Risk:          contracts.RiskFragile,
		Consistency:   contracts.ConsistencyStable,
		ProfitPerUnit: 0.10,
		BSR:           intPtr(150000),     // weak-rank -1
		Rating:        floatPtr(3.4),      // low-rating -1
	}

	result := Evaluate(b)

	require.False(t, result.Disqualified)
	assert.Equal(t, -8, result.Net)

	// Base rung for 30000 is B8; eight rungs down lands on C10
	assert.Equal(t, contracts.Grade("C10"), result.Grade)
}

func TestBoostsAccumulate(t *testing.T) {
	b := contracts.SignalBundle{
		MonthlyProfit:    21000, // B5
		Price:            35,
		Margin:           0.55,
		Reviews:          5,
		AvgCPC:           0.15,
		Risk:             contracts.RiskNone,
		Consistency:      contracts.ConsistencyStable,
		ProfitPerUnit:    0.30,
		BSR:              intPtr(400),
		OpportunityScore: floatPtr(8.5),
	}

	result := Evaluate(b)

	require.False(t, result.Disqualified)
	// low-cpc +2, margin-ppu +1, fresh-niche +1, opportunity +1, strong-rank +1
	assert.Equal(t, 6, result.Net)

	// Climbing six rungs from B5 lands on A1
	assert.Equal(t, contracts.Grade("A1"), result.Grade)
}

func TestNetShiftClampsAtLadderBounds(t *testing.T) {
	// Worst bundle that is not disqualified cannot fall below the bottom rung
	b := contracts.SignalBundle{
		MonthlyProfit: 0,
		Price:         30,
		Margin:        0.21,
		Reviews:       10000,
		AvgCPC:        5.0,
		Risk:          contracts.RiskFragile,
		Consistency:   contracts.ConsistencyStable,
		ProfitPerUnit: 0.01,
	}

	result := Evaluate(b)

	require.False(t, result.Disqualified)
	assert.Equal(t, contracts.GradeDisqualified, result.Grade)
	assert.Negative(t, result.Net)
}

func TestExplanationListsFiredRules(t *testing.T) {
	b := strongBundle()

	result := Evaluate(b)

	rules := make(map[string]bool)
	for _, a := range result.Adjustments {
		rules[a.Rule] = true
	}

	assert.True(t, rules["low-cpc"])
	assert.True(t, rules["margin-ppu"])
	assert.True(t, rules["fresh-niche"])
}

func TestScoreOrdersAcrossGrades(t *testing.T) {
	strong := Evaluate(strongBundle())

	weak := strongBundle()
	weak.MonthlyProfit = 5000
	weakResult := Evaluate(weak)

	assert.Greater(t, strong.Score, weakResult.Score)
}
