package grading

import "github.com/BlockchainHB/launchfast-sub005/internal/contracts"

// rung is one position on the grade ladder with the monthly profit
// required to reach it
type rung struct {
	grade     contracts.Grade
	minProfit float64
}

// ladder is the fixed grade ladder, best to worst. Thresholds are strictly
// descending; the bottom rung requires nothing.
var ladder = []rung{
	{"A10", 100000}, {"A9", 90000}, {"A8", 82000}, {"A7", 75000}, {"A6", 68000},
	{"A5", 62000}, {"A4", 56000}, {"A3", 50000}, {"A2", 45000}, {"A1", 40000},
	{"B10", 36000}, {"B9", 32000}, {"B8", 29000}, {"B7", 26000}, {"B6", 23500},
	{"B5", 21000}, {"B4", 19000}, {"B3", 17000}, {"B2", 15000}, {"B1", 13500},
	{"C10", 12000}, {"C9", 10500}, {"C8", 9000}, {"C7", 7800}, {"C6", 6600},
	{"C5", 5600}, {"C4", 4700}, {"C3", 3900}, {"C2", 3200}, {"C1", 2600},
	{"D10", 2100}, {"D9", 1700}, {"D8", 1350}, {"D7", 1050}, {"D6", 800},
	{"D5", 600}, {"D4", 420}, {"D3", 280}, {"D2", 160}, {"D1", 80},
	{contracts.GradeDisqualified, 0},
}

// scoreStep spaces rung base values far enough apart that the net
// adjustment tie-breaker can never reorder distinct rungs
const scoreStep = 10000

// baseRungIndex maps monthly profit to the highest rung it clears
func baseRungIndex(monthlyProfit float64) int {
	for i, r := range ladder {
		if monthlyProfit >= r.minProfit {
			return i
		}
	}
	return len(ladder) - 1
}

// baseScore is the sortable value of a rung before tie-breaking
func baseScore(index int) int {
	return (len(ladder) - index) * scoreStep
}

// LadderSize returns the number of rungs including the bottom one
func LadderSize() int {
	return len(ladder)
}

// GradeAt returns the grade at a ladder position, clamping out-of-range
// positions to the nearest rung
func GradeAt(index int) contracts.Grade {
	if index < 0 {
		index = 0
	}
	if index >= len(ladder) {
		index = len(ladder) - 1
	}
	return ladder[index].grade
}
