// Package grading maps a product's signal bundle onto the opportunity
// grade ladder. Evaluation is a pure function: no I/O, no state, identical
// input always yields the identical grade and score.
package grading

import (
	"fmt"

	"github.com/BlockchainHB/launchfast-sub005/internal/contracts"
)

// Disqualifier floors: any of these short-circuits to the worst rung
const (
	PriceFloor  = 25.0
	MarginFloor = 0.20
)

// Top-rung gate: A10 is only kept when every one of these holds
const (
	gateMinProfit  = 100000.0
	gateMaxReviews = 50
	gateMaxCPC     = 0.50
	gateMinMargin  = 0.50
	gateMinPPU     = 0.20
)

// Penalty and boost thresholds
const (
	reviewBandLow  = 50
	reviewBandMid  = 200
	reviewBandHigh = 500

	highCPC    = 2.50
	lowCPC     = 0.50
	veryLowCPC = 0.20

	marginBandLow = 0.25
	marginBandMid = 0.30

	weakBSR   = 80000
	strongBSR = 1000

	lowRating       = 4.0
	freshNiche      = 20
	highOpportunity = 7.0
)

// Adjustment records one scoring rule that fired. Points are positive for
// boosts and negative for penalties.
type Adjustment struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
	Detail string `json:"detail"`
}

// Result is the grading outcome for one signal bundle
type Result struct {
	Grade contracts.Grade `json:"grade"`
	// Score sorts results across grades: rung base value plus net*1000
	Score int `json:"score"`
	// Net is boosts minus penalties, the applied ladder shift
	Net          int          `json:"net"`
	Disqualified bool         `json:"disqualified"`
	Disqualifier string       `json:"disqualifier,omitempty"`
	GateDemoted  bool         `json:"gate_demoted"`
	Adjustments  []Adjustment `json:"adjustments,omitempty"`
}

// Evaluate grades a signal bundle
func Evaluate(b contracts.SignalBundle) Result {
	if rule, detail, bad := disqualify(b); bad {
		return Result{
			Grade:        contracts.GradeDisqualified,
			Score:        0,
			Disqualified: true,
			Disqualifier: rule,
			Adjustments:  []Adjustment{{Rule: rule, Points: 0, Detail: detail}},
		}
	}

	base := baseRungIndex(b.MonthlyProfit)
	adjustments := append(penalties(b), boosts(b)...)

	net := 0
	for _, a := range adjustments {
		net += a.Points
	}

	// Positive net climbs toward better rungs
	index := base - net
	if index < 0 {
		index = 0
	}
	if index > len(ladder)-1 {
		index = len(ladder) - 1
	}

	demoted := false
	if index == 0 && !passesGate(b) {
		index = 1
		demoted = true
	}

	return Result{
		Grade:       ladder[index].grade,
		Score:       baseScore(index) + net*1000,
		Net:         net,
		GateDemoted: demoted,
		Adjustments: adjustments,
	}
}

// disqualify checks the instant disqualifiers, in fixed order
func disqualify(b contracts.SignalBundle) (rule, detail string, bad bool) {
	switch {
	case b.Price < PriceFloor:
		return "price-floor", fmt.Sprintf("price %.2f below %.2f", b.Price, PriceFloor), true
	case b.Margin < MarginFloor:
		return "margin-floor", fmt.Sprintf("margin %.2f below %.2f", b.Margin, MarginFloor), true
	case b.Risk == contracts.RiskBanned:
		return "risk-banned", "banned product category", true
	case b.Consistency == contracts.ConsistencyTrendOnly:
		return "trend-only", "demand exists only as a trend spike", true
	}
	return "", "", false
}

// penalties accumulates every applicable penalty; rules are independent
func penalties(b contracts.SignalBundle) []Adjustment {
	var out []Adjustment

	switch {
	case b.Reviews >= reviewBandHigh:
		out = append(out, Adjustment{"review-competition", -3, fmt.Sprintf("%d reviews", b.Reviews)})
	case b.Reviews >= reviewBandMid:
		out = append(out, Adjustment{"review-competition", -2, fmt.Sprintf("%d reviews", b.Reviews)})
	case b.Reviews >= reviewBandLow:
		out = append(out, Adjustment{"review-competition", -1, fmt.Sprintf("%d reviews", b.Reviews)})
	}

	if b.AvgCPC >= highCPC {
		out = append(out, Adjustment{"high-cpc", -1, fmt.Sprintf("avg cpc %.2f", b.AvgCPC)})
	}

	if b.Risk == contracts.RiskFragile {
		out = append(out, Adjustment{"risk-fragile", -1, "fragile product"})
	}
	if b.Risk == contracts.RiskElectrical {
		out = append(out, Adjustment{"risk-electrical", -1, "electrical product"})
	}

	switch {
	case b.Margin < marginBandLow:
		out = append(out, Adjustment{"thin-margin", -2, fmt.Sprintf("margin %.2f", b.Margin)})
	case b.Margin < marginBandMid:
		out = append(out, Adjustment{"thin-margin", -1, fmt.Sprintf("margin %.2f", b.Margin)})
	}

	if b.BSR != nil && *b.BSR > weakBSR {
		out = append(out, Adjustment{"weak-rank", -1, fmt.Sprintf("bsr %d", *b.BSR)})
	}

	if b.Rating != nil && *b.Rating > 0 && *b.Rating < lowRating {
		out = append(out, Adjustment{"low-rating", -1, fmt.Sprintf("rating %.1f", *b.Rating)})
	}

	return out
}

// boosts accumulates every applicable boost; rules are independent
func boosts(b contracts.SignalBundle) []Adjustment {
	var out []Adjustment

	if b.AvgCPC > 0 {
		switch {
		case b.AvgCPC <= veryLowCPC:
			out = append(out, Adjustment{"low-cpc", 2, fmt.Sprintf("avg cpc %.2f", b.AvgCPC)})
		case b.AvgCPC <= lowCPC:
			out = append(out, Adjustment{"low-cpc", 1, fmt.Sprintf("avg cpc %.2f", b.AvgCPC)})
		}
	}

	if b.Margin >= gateMinMargin && b.ProfitPerUnit >= gateMinPPU {
		out = append(out, Adjustment{"margin-ppu", 1, fmt.Sprintf("margin %.2f, ppu %.2f", b.Margin, b.ProfitPerUnit)})
	}

	if b.Reviews < freshNiche {
		out = append(out, Adjustment{"fresh-niche", 1, fmt.Sprintf("%d reviews", b.Reviews)})
	}

	if b.OpportunityScore != nil && *b.OpportunityScore >= highOpportunity {
		out = append(out, Adjustment{"opportunity", 1, fmt.Sprintf("opportunity %.1f", *b.OpportunityScore)})
	}

	if b.BSR != nil && *b.BSR > 0 && *b.BSR <= strongBSR {
		out = append(out, Adjustment{"strong-rank", 1, fmt.Sprintf("bsr %d", *b.BSR)})
	}

	return out
}

// passesGate checks the all-or-nothing requirements for the single best rung
func passesGate(b contracts.SignalBundle) bool {
	return b.MonthlyProfit >= gateMinProfit &&
		b.Reviews < gateMaxReviews &&
		b.AvgCPC < gateMaxCPC &&
		b.Margin > gateMinMargin &&
		b.ProfitPerUnit > gateMinPPU
}
