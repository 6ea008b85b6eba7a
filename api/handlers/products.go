package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aidin1998/investboard/api/responses"
	"github.com/Aidin1998/investboard/internal/catalog"
)

// ProductHandler serves the product catalog and recommendations
type ProductHandler struct {
	service catalog.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a product handler
func NewProductHandler(service catalog.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{service: service, logger: logger}
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, products)
}

// GetProduct handles GET /products/:productId
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uintParam(c, "productId")
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, product)
}

// RecommendedForProfile handles GET /recommended-products/:profileId
func (h *ProductHandler) RecommendedForProfile(c *gin.Context) {
	profileID, err := uintParam(c, "profileId")
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	recs, err := h.service.RecommendedForProfile(c.Request.Context(), profileID)
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, recs)
}

// RecommendedForClient handles GET /clients/:clientId/recommended-products
func (h *ProductHandler) RecommendedForClient(c *gin.Context) {
	clientID, err := uintParam(c, "clientId")
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	recs, err := h.service.RecommendedForClient(c.Request.Context(), clientID)
	if err != nil {
		responses.FromError(c, h.logger, err)
		return
	}
	responses.Success(c, recs)
}
