package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errClientNotFound = NotFound.Reason("client_not_found")

func TestErrorIsComparesKind(t *testing.T) {
	err := fmt.Errorf("failed to load client: %w", errClientNotFound.Explain("client %d not found", 7))

	assert.True(t, Is(err, errClientNotFound))
	assert.False(t, Is(err, NotFound.Reason("product_not_found")))
	assert.Contains(t, err.Error(), "client 7 not found")
}

func TestReasonKeepsStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, errClientNotFound.HTTPStatus())
	assert.Equal(t, http.StatusConflict, Conflict.Reason("stale").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, New("boom").HTTPStatus())
}

func TestWrapDoesNotMutateSentinel(t *testing.T) {
	cause := fmt.Errorf("disk full")
	wrapped := errClientNotFound.Wrap(cause)

	assert.Nil(t, errClientNotFound.Unwrap())
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"not found", errClientNotFound.Explain("client 1 not found"), http.StatusNotFound, TypeNotFound},
		{"unprocessable", Unprocessable.Reason("no_applicable_rate"), http.StatusUnprocessableEntity, TypeNoApplicableRate},
		{"conflict", fmt.Errorf("wrap: %w", Conflict.Reason("stale")), http.StatusConflict, TypeConflict},
		{"invalid", Invalid.Reason("invalid_amount"), http.StatusBadRequest, TypeValidationError},
		{"plain", fmt.Errorf("sql: connection refused"), http.StatusInternalServerError, TypeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromError(tt.err, "/api/v1/x")
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, "/api/v1/x", p.Instance)
		})
	}
}

func TestFromErrorHidesInternalDetail(t *testing.T) {
	p := FromError(fmt.Errorf("password=secret"), "/")
	assert.NotContains(t, p.Detail, "secret")
}

func TestProblemDetailsMarshalExtra(t *testing.T) {
	p := FromError(Invalid.Reason("invalid_amount").WithField("gt", "amount", "must be positive"), "/i").
		WithTraceID("abc")

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "invalid_amount", body["kind"])
	assert.Equal(t, "abc", body["trace_id"])
	assert.Len(t, body["errors"], 1)
}
