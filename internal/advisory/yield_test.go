package advisory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aidin1998/investboard/pkg/errors"
	"github.com/Aidin1998/investboard/pkg/models"
)

func band(id uint, rate, lo, hi string) models.YieldBand {
	return models.YieldBand{ID: id, AnnualRate: d(rate), RangeMin: d(lo), RangeMax: d(hi)}
}

func TestSelectBand(t *testing.T) {
	bands := []models.YieldBand{
		band(1, "12.37445", "1000", "99999.99"),
		band(2, "12.52345", "100000", "249999.99"),
	}

	b, err := SelectBand(bands, d("1000"))
	require.NoError(t, err)
	assert.Equal(t, uint(1), b.ID)

	b, err = SelectBand(bands, d("99999.99"))
	require.NoError(t, err)
	assert.Equal(t, uint(1), b.ID)

	b, err = SelectBand(bands, d("100000"))
	require.NoError(t, err)
	assert.Equal(t, uint(2), b.ID)
}

func TestSelectBandNotApplicable(t *testing.T) {
	bands := []models.YieldBand{band(1, "10", "1000", "5000")}

	_, err := SelectBand(bands, d("999.99"))
	assert.True(t, errors.Is(err, ErrNoApplicableRate))

	_, err = SelectBand(bands, d("5000.01"))
	assert.True(t, errors.Is(err, ErrNoApplicableRate))

	_, err = SelectBand(nil, d("1000"))
	assert.True(t, errors.Is(err, ErrNoApplicableRate))
}

func TestSelectBandFirstMatchWins(t *testing.T) {
	bands := []models.YieldBand{
		band(7, "9.1", "0", "2000"),
		band(3, "9.9", "1000", "5000"),
	}

	b, err := SelectBand(bands, d("1500"))
	require.NoError(t, err)
	assert.Equal(t, uint(7), b.ID)
}

func TestCheckBands(t *testing.T) {
	bands := []models.YieldBand{
		band(1, "10", "1000", "4999.99"),
		band(2, "11", "4000", "9999.99"),
		band(3, "12", "20000", "30000"),
		band(4, "-100", "40000", "30001"),
	}

	kinds := map[uint][]string{}
	for _, issue := range CheckBands(bands) {
		kinds[issue.BandID] = append(kinds[issue.BandID], issue.Kind)
	}

	assert.Empty(t, kinds[1])
	assert.Equal(t, []string{IssueOverlap}, kinds[2])
	assert.Equal(t, []string{IssueGap}, kinds[3])
	assert.ElementsMatch(t, []string{IssueInverted, IssueRate, IssueGap}, kinds[4])
}

func TestCheckBandsContiguous(t *testing.T) {
	bands := []models.YieldBand{
		band(1, "10", "1000", "99999.99"),
		band(2, "11", "100000", "249999.99"),
	}
	assert.Empty(t, CheckBands(bands))
}
