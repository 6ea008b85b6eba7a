// Package telemetry records per-request timings and reports call volume
// and latency per endpoint.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aidin1998/investboard/pkg/metrics"
	"github.com/Aidin1998/investboard/pkg/models"
)

// EndpointStats summarizes the calls served by one route and method
type EndpointStats struct {
	Endpoint  string  `json:"endpoint"`
	Method    string  `json:"method"`
	Calls     int64   `json:"calls"`
	AverageMs float64 `json:"average_ms"`
}

// Period is the time span covered by a report
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Report is the telemetry aggregate served by the API
type Report struct {
	Endpoints []EndpointStats `json:"endpoints"`
	Period    *Period         `json:"period,omitempty"`
}

// Recorder stores one TelemetryEvent per served request
type Recorder struct {
	logger  *zap.Logger
	db      *gorm.DB
	enabled bool
	now     func() time.Time
}

// NewRecorder creates a recorder. A disabled recorder still feeds the
// prometheus HTTP metrics but stores nothing.
func NewRecorder(logger *zap.Logger, db *gorm.DB, enabled bool) *Recorder {
	return &Recorder{
		logger:  logger,
		db:      db,
		enabled: enabled,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Middleware records HTTP request counts and durations
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
		metrics.HTTPLatency.WithLabelValues(path, method).Observe(elapsed.Seconds())

		if !r.enabled || c.FullPath() == "" {
			return
		}
		ev := models.TelemetryEvent{
			Endpoint:   path,
			Method:     method,
			Status:     status,
			DurationMs: elapsed.Milliseconds(),
			RecordedAt: r.now(),
		}
		if err := r.Record(c.Request.Context(), ev); err != nil {
			r.logger.Warn("Telemetry event not recorded", zap.String("endpoint", path), zap.Error(err))
		}
	}
}

// Record stores a single event
func (r *Recorder) Record(ctx context.Context, ev models.TelemetryEvent) error {
	if err := r.db.WithContext(ctx).Create(&ev).Error; err != nil {
		return fmt.Errorf("failed to store telemetry event: %w", err)
	}
	return nil
}

// Summary aggregates every stored event per endpoint and method
func (r *Recorder) Summary(ctx context.Context) (*Report, error) {
	db := r.db.WithContext(ctx)

	var stats []EndpointStats
	err := db.Model(&models.TelemetryEvent{}).
		Select("endpoint, method, COUNT(*) AS calls, AVG(duration_ms) AS average_ms").
		Group("endpoint, method").
		Order("endpoint, method").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate telemetry: %w", err)
	}

	report := &Report{Endpoints: stats}
	if len(stats) == 0 {
		report.Endpoints = []EndpointStats{}
		return report, nil
	}

	var first, last models.TelemetryEvent
	if err := db.Order("recorded_at ASC, id ASC").First(&first).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load first telemetry event: %w", err)
	}
	if err := db.Order("recorded_at DESC, id DESC").First(&last).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load last telemetry event: %w", err)
	}
	report.Period = &Period{From: first.RecordedAt, To: last.RecordedAt}
	return report, nil
}

// Purge deletes events recorded before now minus retention
func (r *Recorder) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := r.now().Add(-retention)
	res := r.db.WithContext(ctx).Where("recorded_at < ?", cutoff).Delete(&models.TelemetryEvent{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge telemetry: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		r.logger.Info("Telemetry purged",
			zap.Int64("deleted", res.RowsAffected),
			zap.Time("cutoff", cutoff))
	}
	return res.RowsAffected, nil
}
