package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/api/responses"
	"github.com/Aidin1998/investboard/internal/simulations"
)

// maxListLimit bounds the limit query parameter of GET /simulations
const maxListLimit = 500

// SimulationHandler serves growth projections and their history
type SimulationHandler struct {
	service simulations.SimulationService
	logger  *zap.Logger
}

// NewSimulationHandler creates a simulation handler
func NewSimulationHandler(service simulations.SimulationService, logger *zap.Logger) *SimulationHandler {
	return &SimulationHandler{service: service, logger: logger}
}

// ByCategory handles POST /simulate-investment
func (h *SimulationHandler) ByCategory(c *gin.Context) {
	var req simulations.SimulateRequest
	if err := bindJSON(c, &req); err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	res, err := h.service.SimulateByCategory(c.Request.Context(), req)
	h.respond(c, res, err)
}

// ByProduct handles POST /simulate-investment/product
func (h *SimulationHandler) ByProduct(c *gin.Context) {
	var req simulations.SimulateRequest
	if err := bindJSON(c, &req); err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	res, err := h.service.SimulateByProduct(c.Request.Context(), req)
	h.respond(c, res, err)
}

// respond serves a computed result even when only its audit row is missing
func (h *SimulationHandler) respond(c *gin.Context, res *simulations.Result, err error) {
	if err != nil && !(simulations.IsAuditFailure(err) && res != nil) {
		responses.FromError(c, h.logger, err)
		return
	}
	if err != nil {
		h.logger.Warn("Serving simulation without audit record",
			zap.String("trace_id", responses.TraceID(c)),
			zap.Uint("client_id", res.ClientID),
			zap.Error(err))
	}
	responses.Success(c, res)
}

// List handles GET /simulations
func (h *SimulationHandler) List(c *gin.Context) {
	clientID, err := uintQuery(c, "client_id")
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	limit, err := uintQuery(c, "limit")
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	if limit > maxListLimit {
		responses.FromError(c, h.logger, ErrMalformedRequest.Explain("limit must be at most %d, got %d", maxListLimit, limit))
		return
	}
	list, err := h.service.List(c.Request.Context(), simulations.ListFilter{ClientID: clientID, Limit: int(limit)})
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, list)
}

// ByProductDay handles GET /simulations/by-product-day
func (h *SimulationHandler) ByProductDay(c *gin.Context) {
	days, err := h.service.ByProductDay(c.Request.Context())
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, days)
}
