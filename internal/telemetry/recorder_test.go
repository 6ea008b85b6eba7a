package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/internal/database/dbtest"
	"github.com/Aidin1998/investboard/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddlewareRecordsRoutes(t *testing.T) {
	db := dbtest.Empty(t)
	rec := NewRecorder(zap.NewNop(), db, true)

	router := gin.New()
	router.Use(rec.Middleware())
	router.GET("/api/v1/investments/:clientId", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/api/v1/investments", func(c *gin.Context) { c.Status(http.StatusCreated) })

	for _, path := range []string{"/api/v1/investments/1", "/api/v1/investments/2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/investments", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	// unmatched routes are not stored
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	var events []models.TelemetryEvent
	require.NoError(t, db.Order("id").Find(&events).Error)
	require.Len(t, events, 3)
	assert.Equal(t, "/api/v1/investments/:clientId", events[0].Endpoint)
	assert.Equal(t, http.StatusCreated, events[2].Status)

	report, err := rec.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Endpoints, 2)
	assert.Equal(t, "/api/v1/investments", report.Endpoints[0].Endpoint)
	assert.Equal(t, int64(1), report.Endpoints[0].Calls)
	assert.Equal(t, "/api/v1/investments/:clientId", report.Endpoints[1].Endpoint)
	assert.Equal(t, int64(2), report.Endpoints[1].Calls)
	require.NotNil(t, report.Period)
	assert.False(t, report.Period.To.Before(report.Period.From))
}

func TestDisabledRecorderStoresNothing(t *testing.T) {
	db := dbtest.Empty(t)
	rec := NewRecorder(zap.NewNop(), db, false)

	router := gin.New()
	router.Use(rec.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	report, err := rec.Summary(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Endpoints)
	assert.Nil(t, report.Period)
}

func TestSummaryAverages(t *testing.T) {
	db := dbtest.Empty(t)
	rec := NewRecorder(zap.NewNop(), db, true)
	ctx := context.Background()

	base := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	for i, ms := range []int64{10, 20, 60} {
		require.NoError(t, rec.Record(ctx, models.TelemetryEvent{
			Endpoint: "/api/v1/simulate-investment", Method: http.MethodPost, Status: 200,
			DurationMs: ms, RecordedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	report, err := rec.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, report.Endpoints, 1)
	assert.Equal(t, int64(3), report.Endpoints[0].Calls)
	assert.InDelta(t, 30.0, report.Endpoints[0].AverageMs, 0.001)
	assert.True(t, report.Period.From.Equal(base))
	assert.True(t, report.Period.To.Equal(base.Add(2*time.Hour)))
}

func TestPurge(t *testing.T) {
	db := dbtest.Empty(t)
	rec := NewRecorder(zap.NewNop(), db, true)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return now }

	for _, age := range []time.Duration{time.Hour, 29 * 24 * time.Hour, 31 * 24 * time.Hour, 90 * 24 * time.Hour} {
		require.NoError(t, rec.Record(ctx, models.TelemetryEvent{
			Endpoint: "/api/v1/products", Method: http.MethodGet, Status: 200, RecordedAt: now.Add(-age),
		}))
	}

	deleted, err := rec.Purge(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var remaining int64
	db.Model(&models.TelemetryEvent{}).Count(&remaining)
	assert.Equal(t, int64(2), remaining)
}
