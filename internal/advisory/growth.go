package advisory

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Aidin1998/investboard/pkg/errors"
)

// RoundingMode selects how 2-decimal rounding resolves ties
type RoundingMode int

const (
	// RoundHalfAwayFromZero sends 0.125 to 0.13
	RoundHalfAwayFromZero RoundingMode = iota
	// RoundHalfEven sends 0.125 to 0.12
	RoundHalfEven
)

// ParseRoundingMode maps a config value onto a mode. Empty means half away
// from zero.
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "half_away_from_zero", "half-away-from-zero", "away":
		return RoundHalfAwayFromZero, nil
	case "half_even", "half-even", "bankers", "even":
		return RoundHalfEven, nil
	}
	return RoundHalfAwayFromZero, fmt.Errorf("unknown rounding mode %q", s)
}

func (m RoundingMode) String() string {
	if m == RoundHalfEven {
		return "half_even"
	}
	return "half_away_from_zero"
}

// Round rounds d to the given number of places
func (m RoundingMode) Round(d decimal.Decimal, places int32) decimal.Decimal {
	if m == RoundHalfEven {
		return d.RoundBank(places)
	}
	return d.Round(places)
}

// Growth preconditions
var (
	ErrInvalidAmount  = errors.Invalid.Reason("invalid_amount")
	ErrInvalidTerm    = errors.Invalid.Reason("invalid_term")
	ErrRateOutOfRange = errors.Unprocessable.Reason("rate_out_of_range")
)

// Projection is the outcome of a compound growth simulation
type Projection struct {
	AnnualRate     decimal.Decimal `json:"annual_rate"`
	MonthlyRate    decimal.Decimal `json:"monthly_rate"`
	FinalValue     decimal.Decimal `json:"final_value"`
	EffectiveYield decimal.Decimal `json:"effective_yield"`
	TermMonths     int             `json:"term_months"`
}

// Simulator projects compound growth with a fixed rounding rule
type Simulator struct {
	Rounding RoundingMode
}

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Project runs the three rounded steps in order:
//
//	monthly   = round2(((1 + annual/100)^(1/12) - 1) * 100)
//	final     = round2(amount * (1 + monthly/100)^term)
//	effective = round2((final - amount) / amount * 100)
//
// Each step consumes the rounded output of the previous one. Powers are
// taken in float64 and brought back with 15 significant digits.
func (s Simulator) Project(amount, annualRate decimal.Decimal, termMonths int) (Projection, error) {
	if !amount.IsPositive() {
		return Projection{}, ErrInvalidAmount.Explain("amount must be greater than zero")
	}
	if termMonths <= 0 {
		return Projection{}, ErrInvalidTerm.Explain("term must be at least one month")
	}
	if annualRate.LessThanOrEqual(minusTotal) {
		return Projection{}, ErrRateOutOfRange.Explain("annual rate %s%% cannot be compounded", annualRate)
	}

	monthly := s.Rounding.Round(MonthlyRate(annualRate), 2)

	growth := fromFloat(math.Pow(one.Add(monthly.Div(hundred)).InexactFloat64(), float64(termMonths)))
	final := s.Rounding.Round(amount.Mul(growth), 2)

	effective := s.Rounding.Round(final.Sub(amount).Div(amount).Mul(hundred), 2)

	return Projection{
		AnnualRate:     annualRate,
		MonthlyRate:    monthly,
		FinalValue:     final,
		EffectiveYield: effective,
		TermMonths:     termMonths,
	}, nil
}

// Simulate is Project for callers that already validated their inputs. It
// panics when a precondition is violated.
func (s Simulator) Simulate(amount, annualRate decimal.Decimal, termMonths int) Projection {
	p, err := s.Project(amount, annualRate, termMonths)
	if err != nil {
		panic(err)
	}
	return p
}

// Simulate projects growth with half away from zero rounding
func Simulate(amount, annualRate decimal.Decimal, termMonths int) Projection {
	return Simulator{}.Simulate(amount, annualRate, termMonths)
}

// MonthlyRate converts an annual percentage into the equivalent monthly
// percentage, unrounded.
func MonthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	base := one.Add(annualRate.Div(hundred)).InexactFloat64()
	return fromFloat((math.Pow(base, 1.0/12.0) - 1) * 100)
}

// fromFloat keeps 15 significant digits, the precision a float64 reliably
// carries into a decimal.
func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic(fmt.Sprintf("advisory: non-finite value %v", f))
	}
	d, err := decimal.NewFromString(strconv.FormatFloat(f, 'g', 15, 64))
	if err != nil {
		panic(fmt.Sprintf("advisory: %v", err))
	}
	return d
}
