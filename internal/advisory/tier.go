// Package advisory holds the risk and growth engine: tier classification,
// yield band lookup, compound growth projection, portfolio aggregation and
// the adaptive risk ceiling adjuster. Everything here is pure and works on
// snapshots handed in by the services.
package advisory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RiskTier is one of the three discrete tiers a risk score falls into
type RiskTier int

const (
	TierLow RiskTier = iota
	TierMedium
	TierHigh
)

var (
	lowCeiling    = decimal.RequireFromString("1.5")
	mediumCeiling = decimal.RequireFromString("3.0")
)

// Tier classifies a risk score. Boundaries are closed on the lower tier:
// 1.5 is low and 3.0 is medium.
func Tier(risk decimal.Decimal) RiskTier {
	switch {
	case risk.LessThanOrEqual(lowCeiling):
		return TierLow
	case risk.LessThanOrEqual(mediumCeiling):
		return TierMedium
	default:
		return TierHigh
	}
}

// String returns the machine label used in JSON and metrics
func (t RiskTier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	}
	return "unknown"
}

// Label returns the display label shown to advisors
func (t RiskTier) Label() string {
	switch t {
	case TierLow:
		return "Low risk"
	case TierMedium:
		return "Medium risk"
	case TierHigh:
		return "High risk"
	}
	return "Unknown"
}

// MarshalText renders the tier as its machine label
func (t RiskTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a machine label produced by MarshalText
func (t *RiskTier) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "low":
		*t = TierLow
	case "medium":
		*t = TierMedium
	case "high":
		*t = TierHigh
	default:
		return fmt.Errorf("unknown risk tier %q", text)
	}
	return nil
}
