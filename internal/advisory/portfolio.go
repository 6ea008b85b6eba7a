package advisory

import (
	"github.com/shopspring/decimal"
)

// Holding is one past investment with its product's risk resolved
type Holding struct {
	Amount decimal.Decimal
	Risk   decimal.Decimal
}

// TierTotal is the invested sum and number of investments in one tier
type TierTotal struct {
	Amount decimal.Decimal `json:"amount"`
	Count  int64           `json:"count"`
}

// TierTotals summarizes a client's history per risk tier
type TierTotals struct {
	Low    TierTotal `json:"low"`
	Medium TierTotal `json:"medium"`
	High   TierTotal `json:"high"`
}

// Aggregate sums amount and count per tier. Tiers with no history report
// a zero total and count.
func Aggregate(holdings []Holding) TierTotals {
	totals := TierTotals{
		Low:    TierTotal{Amount: decimal.Zero},
		Medium: TierTotal{Amount: decimal.Zero},
		High:   TierTotal{Amount: decimal.Zero},
	}
	for _, h := range holdings {
		t := totals.tier(Tier(h.Risk))
		t.Amount = t.Amount.Add(h.Amount)
		t.Count++
	}
	return totals
}

func (t *TierTotals) tier(rt RiskTier) *TierTotal {
	switch rt {
	case TierLow:
		return &t.Low
	case TierMedium:
		return &t.Medium
	default:
		return &t.High
	}
}

// Add returns the totals with one more holding counted
func (t TierTotals) Add(h Holding) TierTotals {
	tt := t.tier(Tier(h.Risk))
	tt.Amount = tt.Amount.Add(h.Amount)
	tt.Count++
	return t
}

// amountDivisor is the tier total used as a denominator, never below 1.
// An empty tier or one holding less than a unit divides by 1.
func (t TierTotal) amountDivisor() decimal.Decimal {
	return decimal.Max(t.Amount, one)
}

// countDivisor is the tier count used as a denominator, never below 1
func (t TierTotal) countDivisor() decimal.Decimal {
	return decimal.Max(decimal.NewFromInt(t.Count), one)
}
