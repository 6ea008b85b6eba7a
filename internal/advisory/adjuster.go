package advisory

import (
	"github.com/shopspring/decimal"
)

// Direction reports which branch of the adjuster ran
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionNone Direction = "none"
)

var (
	riskStep    = decimal.RequireFromString("0.05")
	riskCeiling = decimal.RequireFromString("5.0")
	riskFloor   = decimal.RequireFromString("1.5")
	two         = decimal.NewFromInt(2)
)

// Adjustment is the adjuster's verdict for one investment event
type Adjustment struct {
	Previous      decimal.Decimal `json:"previous"`
	MaxRisk       decimal.Decimal `json:"max_risk"`
	Direction     Direction       `json:"direction"`
	InvestedRatio decimal.Decimal `json:"invested_ratio"`
	MovementRatio decimal.Decimal `json:"movement_ratio"`
}

// Changed reports whether the ceiling moved
func (a Adjustment) Changed() bool {
	return !a.MaxRisk.Equal(a.Previous)
}

// Adjust returns the new risk ceiling for a client about to invest in a
// product of the given risk. See Evaluate.
func Adjust(currentMax, productRisk decimal.Decimal, totals TierTotals) decimal.Decimal {
	return Evaluate(currentMax, productRisk, totals).MaxRisk
}

// Evaluate nudges the ceiling by at most two 0.05 steps.
//
// A conservative client (ceiling <= 1.5) reaching above the ceiling moves up
// once for each of these ratios above 1, capped at 5.0:
//
//	invested = (medium + 2*high) / low       (amounts)
//	movement = (medium + 2*high) / low       (counts)
//
// An aggressive client (ceiling > 3.0) reaching below the ceiling moves down
// the same way with low and high swapped, floored at 1.5. Every other
// case leaves the ceiling alone. Empty tiers divide by 1.
func Evaluate(currentMax, productRisk decimal.Decimal, totals TierTotals) Adjustment {
	adj := Adjustment{
		Previous:      currentMax,
		MaxRisk:       currentMax,
		Direction:     DirectionNone,
		InvestedRatio: decimal.Zero,
		MovementRatio: decimal.Zero,
	}

	switch {
	case productRisk.GreaterThan(currentMax) && currentMax.LessThanOrEqual(lowCeiling):
		adj.Direction = DirectionUp
		adj.InvestedRatio = totals.Medium.Amount.Add(two.Mul(totals.High.Amount)).Div(totals.Low.amountDivisor())
		adj.MovementRatio = decimal.NewFromInt(totals.Medium.Count + 2*totals.High.Count).Div(totals.Low.countDivisor())
		adj.MaxRisk = decimal.Min(currentMax.Add(steps(adj)), riskCeiling)

	case productRisk.LessThan(currentMax) && currentMax.GreaterThan(mediumCeiling):
		adj.Direction = DirectionDown
		adj.InvestedRatio = totals.Medium.Amount.Add(two.Mul(totals.Low.Amount)).Div(totals.High.amountDivisor())
		adj.MovementRatio = decimal.NewFromInt(totals.Medium.Count + 2*totals.Low.Count).Div(totals.High.countDivisor())
		adj.MaxRisk = decimal.Max(currentMax.Sub(steps(adj)), riskFloor)
	}

	return adj
}

// steps counts one 0.05 step per ratio above 1. Both ratios are always
// evaluated.
func steps(adj Adjustment) decimal.Decimal {
	delta := decimal.Zero
	if adj.InvestedRatio.GreaterThan(one) {
		delta = delta.Add(riskStep)
	}
	if adj.MovementRatio.GreaterThan(one) {
		delta = delta.Add(riskStep)
	}
	return delta
}
