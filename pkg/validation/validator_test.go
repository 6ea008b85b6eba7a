package validation

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/pkg/errors"
)

type amountRequest struct {
	Amount decimal.Decimal `validate:"decimal_gt0"`
	Risk   decimal.Decimal `validate:"decimal_between=0.5 5"`
	Term   int             `validate:"gt=0"`
}

func TestValidateStructDecimals(t *testing.T) {
	v := NewValidator(zap.NewNop())

	ok := amountRequest{Amount: decimal.RequireFromString("10.5"), Risk: decimal.RequireFromString("0.5"), Term: 1}
	assert.NoError(t, v.ValidateStruct(ok))

	bad := amountRequest{Amount: decimal.Zero, Risk: decimal.RequireFromString("5.01"), Term: 0}
	err := v.ValidateStruct(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus())
	assert.Len(t, e.Fields, 3)

	fields := map[string]string{}
	for _, f := range e.Fields {
		fields[f.Field] = f.Kind
	}
	assert.Equal(t, "decimal_gt0", fields["Amount"])
	assert.Equal(t, "decimal_between", fields["Risk"])
	assert.Equal(t, "gt", fields["Term"])
}

func TestNegativeAmountRejected(t *testing.T) {
	v := NewValidator(zap.NewNop())
	err := v.ValidateStruct(amountRequest{Amount: decimal.NewFromInt(-1), Risk: decimal.NewFromInt(1), Term: 1})
	assert.Error(t, err)
}

func TestSanitizeText(t *testing.T) {
	v := NewValidator(zap.NewNop())
	assert.Equal(t, "Balanced", v.SanitizeText("<b>Balanced</b>"))
	assert.Equal(t, "", v.SanitizeText("<script>alert(1)</script>"))
	assert.Equal(t, "plain text", v.SanitizeText("  plain text "))
}
