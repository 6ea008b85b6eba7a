package advisory

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTierBoundaries(t *testing.T) {
	tests := []struct {
		risk string
		want RiskTier
	}{
		{"0", TierLow},
		{"0.5", TierLow},
		{"1.5", TierLow},
		{"1.51", TierMedium},
		{"3.0", TierMedium},
		{"3.01", TierHigh},
		{"5", TierHigh},
	}

	for _, tt := range tests {
		t.Run(tt.risk, func(t *testing.T) {
			assert.Equal(t, tt.want, Tier(d(tt.risk)))
		})
	}
}

func TestTierLabels(t *testing.T) {
	assert.Equal(t, "low", TierLow.String())
	assert.Equal(t, "High risk", TierHigh.Label())

	text, err := TierMedium.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "medium", string(text))
}

func TestTierJSONRoundTrip(t *testing.T) {
	type row struct {
		Tier RiskTier `json:"tier"`
	}

	for _, tier := range []RiskTier{TierLow, TierMedium, TierHigh} {
		raw, err := json.Marshal(row{Tier: tier})
		require.NoError(t, err)

		var got row
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, tier, got.Tier)
	}

	var tier RiskTier
	assert.NoError(t, tier.UnmarshalText([]byte("High")))
	assert.Equal(t, TierHigh, tier)
	assert.Error(t, tier.UnmarshalText([]byte("extreme")))
	assert.Error(t, tier.UnmarshalText([]byte("")))
}
