package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
)

func TestLadderThresholdsStrictlyDescending(t *testing.T) {
	for i := 1; i < len(ladder); i++ {
		assert.Less(t, ladder[i].minProfit, ladder[i-1].minProfit,
			"rung %s must require less than %s", ladder[i].grade, ladder[i-1].grade)
	}
}

func TestLadderBottomRequiresNothing(t *testing.T) {
	assert.Equal(t, 0.0, ladder[len(ladder)-1].minProfit)
	assert.Equal(t, contracts.GradeDisqualified, ladder[len(ladder)-1].grade)
}

func TestBaseRungIndex(t *testing.T) {
	tests := []struct {
		profit float64
		grade  contracts.Grade
	}{
		{250000, "A10"},
		{100000, "A10"},
		{99999, "A9"},
		{40000, "A1"},
		{36000, "B10"},
		{30000, "B8"},
		{2600, "C1"},
		{80, "D1"},
		{79, "F"},
		{0, "F"},
		{-500, "F"},
	}

	for _, tt := range tests {
		got := ladder[baseRungIndex(tt.profit)].grade
		assert.Equal(t, tt.grade, got, "profit %.0f", tt.profit)
	}
}

func TestBaseScoreOrdering(t *testing.T) {
	for i := 1; i < len(ladder); i++ {
		assert.Greater(t, baseScore(i-1), baseScore(i))
	}

	// Tie-break shifts can never cross rung boundaries
	assert.Greater(t, scoreStep, 9*1000)
}

func TestGradeAtClamps(t *testing.T) {
	assert.Equal(t, contracts.Grade("A10"), GradeAt(-5))
	assert.Equal(t, contracts.GradeDisqualified, GradeAt(LadderSize()+3))
}
