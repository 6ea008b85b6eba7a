package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/api/responses"
	"github.com/Aidin1998/investboard/internal/profiles"
)

// ProfileHandler serves client risk profiles
type ProfileHandler struct {
	service profiles.ProfileService
	logger  *zap.Logger
}

// NewProfileHandler creates a profile handler
func NewProfileHandler(service profiles.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{service: service, logger: logger}
}

// ListProfileTypes handles GET /profile-types
func (h *ProfileHandler) ListProfileTypes(c *gin.Context) {
	list, err := h.service.ListProfiles(c.Request.Context())
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, list)
}

// ListClients handles GET /profiles
func (h *ProfileHandler) ListClients(c *gin.Context) {
	list, err := h.service.ListClients(c.Request.Context())
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, list)
}

// GetClient handles GET /profiles/:clientId
func (h *ProfileHandler) GetClient(c *gin.Context) {
	clientID, err := uintParam(c, "clientId")
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	cp, err := h.service.GetClient(c.Request.Context(), clientID)
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, cp)
}

// CreateClient handles POST /profiles
func (h *ProfileHandler) CreateClient(c *gin.Context) {
	var req profiles.AssignRequest
	if err := bindJSON(c, &req); err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	cp, err := h.service.CreateClient(c.Request.Context(), req)
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Created(c, cp, "Client profile created")
}

// ChangeProfile handles PUT /profiles
func (h *ProfileHandler) ChangeProfile(c *gin.Context) {
	var req profiles.AssignRequest
	if err := bindJSON(c, &req); err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	cp, err := h.service.ChangeProfile(c.Request.Context(), req)
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, cp, "Client profile updated")
}
