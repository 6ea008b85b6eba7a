package advisory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Aidin1998/investboard/pkg/errors"
	"github.com/Aidin1998/investboard/pkg/models"
)

// ErrNoApplicableRate is returned when no yield band covers an amount
var ErrNoApplicableRate = errors.Unprocessable.Reason("no_applicable_rate")

// SelectBand returns the first band, in slice order, whose inclusive range
// contains amount. Overlapping bands are not reconciled: the first wins.
func SelectBand(bands []models.YieldBand, amount decimal.Decimal) (models.YieldBand, error) {
	for _, b := range bands {
		if amount.GreaterThanOrEqual(b.RangeMin) && amount.LessThanOrEqual(b.RangeMax) {
			return b, nil
		}
	}
	return models.YieldBand{}, ErrNoApplicableRate.Explain("no yield band covers amount %s", amount.StringFixed(2))
}

// BandIssue is a data-quality finding about a product's band table
type BandIssue struct {
	BandID uint   `json:"band_id"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Band issue kinds
const (
	IssueInverted = "inverted_range"
	IssueOverlap  = "overlap"
	IssueGap      = "gap"
	IssueRate     = "rate_out_of_range"
)

var (
	cent       = decimal.RequireFromString("0.01")
	minusTotal = decimal.NewFromInt(-100)
)

// CheckBands reports inverted ranges, overlaps and gaps between consecutive
// bands (in slice order) and rates that would wipe out the principal. It never
// changes how SelectBand resolves an amount.
func CheckBands(bands []models.YieldBand) []BandIssue {
	var issues []BandIssue
	for i, b := range bands {
		if b.RangeMin.GreaterThan(b.RangeMax) {
			issues = append(issues, BandIssue{b.ID, IssueInverted,
				fmt.Sprintf("range_min %s is above range_max %s", b.RangeMin, b.RangeMax)})
		}
		if b.AnnualRate.LessThanOrEqual(minusTotal) {
			issues = append(issues, BandIssue{b.ID, IssueRate,
				fmt.Sprintf("annual rate %s%% is not above -100%%", b.AnnualRate)})
		}
		if i == 0 {
			continue
		}
		prev := bands[i-1]
		switch {
		case b.RangeMin.LessThanOrEqual(prev.RangeMax):
			issues = append(issues, BandIssue{b.ID, IssueOverlap,
				fmt.Sprintf("starts at %s inside band %d ending at %s", b.RangeMin, prev.ID, prev.RangeMax)})
		case b.RangeMin.Sub(prev.RangeMax).GreaterThan(cent):
			issues = append(issues, BandIssue{b.ID, IssueGap,
				fmt.Sprintf("amounts between %s and %s are not covered", prev.RangeMax, b.RangeMin)})
		}
	}
	return issues
}
