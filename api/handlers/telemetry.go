package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/api/responses"
	"github.com/Aidin1998/investboard/internal/telemetry"
)

// TelemetryHandler serves the per-endpoint call report
type TelemetryHandler struct {
	recorder *telemetry.Recorder
	logger   *zap.Logger
}

// NewTelemetryHandler creates a telemetry handler
func NewTelemetryHandler(recorder *telemetry.Recorder, logger *zap.Logger) *TelemetryHandler {
	return &TelemetryHandler{recorder: recorder, logger: logger}
}

// Summary handles GET /telemetry
func (h *TelemetryHandler) Summary(c *gin.Context) {
	report, err := h.recorder.Summary(c.Request.Context())
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, report)
}
