package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/api/responses"
	"github.com/Aidin1998/investboard/internal/investments"
)

// InvestmentHandler serves client investments
type InvestmentHandler struct {
	service investments.InvestmentService
	logger  *zap.Logger
}

// NewInvestmentHandler creates an investment handler
func NewInvestmentHandler(service investments.InvestmentService, logger *zap.Logger) *InvestmentHandler {
	return &InvestmentHandler{service: service, logger: logger}
}

// ListByClient handles GET /investments/:clientId
func (h *InvestmentHandler) ListByClient(c *gin.Context) {
	clientID, err := uintParam(c, "clientId")
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	list, err := h.service.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, list)
}

// Get handles GET /investments/:clientId/:investmentId
func (h *InvestmentHandler) Get(c *gin.Context) {
	clientID, err := uintParam(c, "clientId")
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	investmentID, err := uintParam(c, "investmentId")
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	inv, err := h.service.Get(c.Request.Context(), clientID, investmentID)
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, inv)
}

// Record handles POST /investments
func (h *InvestmentHandler) Record(c *gin.Context) {
	var req investments.RecordRequest
	if err := bindJSON(c, &req); err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	receipt, err := h.service.RecordInvestment(c.Request.Context(), req)
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Created(c, receipt, "Investment recorded")
}
