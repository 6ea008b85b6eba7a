// Package catalog serves the product catalog and product recommendations.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aidin1998/investboard/internal/advisory"
	"github.com/Aidin1998/investboard/pkg/models"
)

const productsKey = "catalog:products"

// CatalogService defines catalog operations.
type CatalogService interface {
	Start() error
	Stop() error
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	FirstInCategory(ctx context.Context, category models.ProductCategory) (*models.Product, error)
	RecommendedForProfile(ctx context.Context, profileID uint) ([]Recommendation, error)
	RecommendedForClient(ctx context.Context, clientID uint) ([]Recommendation, error)
	Invalidate(ctx context.Context) error
}

// Recommendation is a product a client or profile may be steered toward
type Recommendation struct {
	ProductID  uint                   `json:"product_id"`
	Name       string                 `json:"name"`
	Category   models.ProductCategory `json:"category"`
	Risk       decimal.Decimal        `json:"risk"`
	Tier       advisory.RiskTier      `json:"tier"`
	TierLabel  string                 `json:"tier_label"`
	AnnualRate decimal.Decimal        `json:"annual_rate"`
}

// Service implements CatalogService
type Service struct {
	logger *zap.Logger
	db     *gorm.DB
	cache  Cache
	ttl    time.Duration
}

// NewService creates a catalog service. A nil cache disables caching.
func NewService(logger *zap.Logger, db *gorm.DB, cache Cache, ttl time.Duration) (CatalogService, error) {
	if cache == nil {
		cache = noopCache{}
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{logger: logger, db: db, cache: cache, ttl: ttl}, nil
}

// Start starts the catalog service
func (s *Service) Start() error {
	s.logger.Info("Catalog service started")
	return nil
}

// Stop stops the catalog service
func (s *Service) Stop() error {
	s.logger.Info("Catalog service stopped")
	return nil
}

// ListProducts returns every product with its yield bands in id order.
// Cache failures are logged and fall through to the database.
func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	if raw, ok, err := s.cache.Get(ctx, productsKey); err != nil {
		s.logger.Warn("Catalog cache read failed", zap.Error(err))
	} else if ok {
		var products []models.Product
		if err := json.Unmarshal(raw, &products); err == nil {
			return products, nil
		}
		s.logger.Warn("Discarding undecodable catalog cache entry")
	}

	var products []models.Product
	err := s.db.WithContext(ctx).
		Preload("YieldBands", func(db *gorm.DB) *gorm.DB { return db.Order("yield_bands.id") }).
		Order("products.id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if raw, err := json.Marshal(products); err == nil {
		if err := s.cache.Set(ctx, productsKey, raw, s.ttl); err != nil {
			s.logger.Warn("Catalog cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

// GetProduct returns one product with its bands
func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, models.ErrProductNotFound.Explain("product %d not found", id)
}

// FirstInCategory returns the lowest-id product of a category
func (s *Service) FirstInCategory(ctx context.Context, category models.ProductCategory) (*models.Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].Category == category {
			return &products[i], nil
		}
	}
	return nil, models.ErrProductNotFound.Explain("no product in category %s", category)
}

// RecommendedForProfile lists products whose risk is within the profile ceiling
func (s *Service) RecommendedForProfile(ctx context.Context, profileID uint) ([]Recommendation, error) {
	var profile models.RiskProfile
	if err := s.db.WithContext(ctx).First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrProfileNotFound.Explain("risk profile %d not found", profileID)
		}
		return nil, fmt.Errorf("failed to load risk profile: %w", err)
	}
	return s.recommend(ctx, profile.MaxRisk)
}

// RecommendedForClient lists products within the client's effective ceiling,
// which may have drifted from the profile's.
func (s *Service) RecommendedForClient(ctx context.Context, clientID uint) ([]Recommendation, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrClientNotFound.Explain("client %d not found", clientID)
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	return s.recommend(ctx, client.MaxRisk)
}

func (s *Service) recommend(ctx context.Context, ceiling decimal.Decimal) ([]Recommendation, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Recommendation, 0, len(products))
	for _, p := range products {
		if p.Risk.GreaterThan(ceiling) {
			continue
		}
		tier := advisory.Tier(p.Risk)
		rec := Recommendation{
			ProductID:  p.ID,
			Name:       p.Name,
			Category:   p.Category,
			Risk:       p.Risk,
			Tier:       tier,
			TierLabel:  tier.Label(),
			AnnualRate: decimal.Zero,
		}
		if len(p.YieldBands) > 0 {
			rec.AnnualRate = p.YieldBands[0].AnnualRate
		}
		out = append(out, rec)
	}
	return out, nil
}

// Invalidate drops the cached product list
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, productsKey)
}
