package advisory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aidin1998/investboard/pkg/errors"
)

func TestSimulateReferenceCase(t *testing.T) {
	p := Simulate(d("1000"), d("12.37445"), 12)

	assert.Equal(t, "0.98", p.MonthlyRate.StringFixed(2))
	assert.Equal(t, "1124.15", p.FinalValue.StringFixed(2))
	assert.Equal(t, "12.42", p.EffectiveYield.StringFixed(2))
	assert.Equal(t, 12, p.TermMonths)
}

func TestSimulateIntermediateRoundingMatters(t *testing.T) {
	amount := d("1000")
	monthly := MonthlyRate(d("12.37445"))

	// same pipeline with the monthly rate left unrounded
	growth := fromFloat(math.Pow(one.Add(monthly.Div(hundred)).InexactFloat64(), 12))
	unrounded := amount.Mul(growth).Round(2)

	assert.Equal(t, "1123.74", unrounded.StringFixed(2))
	assert.False(t, unrounded.Equal(Simulate(amount, d("12.37445"), 12).FinalValue))
}

func TestSimulateTable(t *testing.T) {
	tests := []struct {
		amount, rate          string
		term                  int
		monthly, final, yield string
	}{
		{"1000", "14.155", 24, "1.11", "1303.34", "30.33"},
		{"5000", "-8.15", 12, "-0.71", "4590.25", "-8.20"},
		{"1000", "9.52", 6, "0.76", "1046.48", "4.65"},
		{"200", "14.155", 1, "1.11", "202.22", "1.11"},
		{"250000", "14.26675", 36, "1.12", "373313.94", "49.33"},
	}

	for _, tt := range tests {
		t.Run(tt.amount+"@"+tt.rate, func(t *testing.T) {
			p := Simulate(d(tt.amount), d(tt.rate), tt.term)
			assert.Equal(t, tt.monthly, p.MonthlyRate.StringFixed(2))
			assert.Equal(t, tt.final, p.FinalValue.StringFixed(2))
			assert.Equal(t, tt.yield, p.EffectiveYield.StringFixed(2))
		})
	}
}

func TestRoundingModes(t *testing.T) {
	assert.Equal(t, "0.13", RoundHalfAwayFromZero.Round(d("0.125"), 2).String())
	assert.Equal(t, "0.12", RoundHalfEven.Round(d("0.125"), 2).String())
	assert.Equal(t, "-0.13", RoundHalfAwayFromZero.Round(d("-0.125"), 2).String())
	assert.Equal(t, "0.14", RoundHalfEven.Round(d("0.135"), 2).String())
}

func TestParseRoundingMode(t *testing.T) {
	m, err := ParseRoundingMode("")
	require.NoError(t, err)
	assert.Equal(t, RoundHalfAwayFromZero, m)

	m, err = ParseRoundingMode("half_even")
	require.NoError(t, err)
	assert.Equal(t, RoundHalfEven, m)
	assert.Equal(t, "half_even", m.String())

	_, err = ParseRoundingMode("up")
	assert.Error(t, err)
}

func TestProjectPreconditions(t *testing.T) {
	s := Simulator{}

	_, err := s.Project(d("0"), d("10"), 12)
	assert.True(t, errors.Is(err, ErrInvalidAmount))

	_, err = s.Project(d("-5"), d("10"), 12)
	assert.True(t, errors.Is(err, ErrInvalidAmount))

	_, err = s.Project(d("100"), d("10"), 0)
	assert.True(t, errors.Is(err, ErrInvalidTerm))

	_, err = s.Project(d("100"), d("-100"), 12)
	assert.True(t, errors.Is(err, ErrRateOutOfRange))

	assert.Panics(t, func() { s.Simulate(d("100"), d("10"), -1) })
}

func TestSimulatorIsDeterministic(t *testing.T) {
	s := Simulator{Rounding: RoundHalfEven}
	a := s.Simulate(d("1000"), d("12.37445"), 12)
	b := s.Simulate(d("1000"), d("12.37445"), 12)
	assert.Equal(t, a, b)
}

func TestFromFloatSignificantDigits(t *testing.T) {
	assert.Equal(t, "0.1", fromFloat(0.1).String())
	assert.Equal(t, "1.00001", fromFloat(1.00001).String())
	assert.Panics(t, func() { fromFloat(math.NaN()) })
}
