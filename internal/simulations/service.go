// Package simulations projects investment growth for a client and keeps the
// audit trail of every projection served.
package simulations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aidin1998/investboard/internal/advisory"
	"github.com/Aidin1998/investboard/internal/catalog"
	"github.com/Aidin1998/investboard/internal/events"
	ierrors "github.com/Aidin1998/investboard/pkg/errors"
	"github.com/Aidin1998/investboard/pkg/metrics"
	"github.com/Aidin1998/investboard/pkg/models"
	"github.com/Aidin1998/investboard/pkg/validation"
)

var (
	// ErrAuditNotRecorded accompanies a valid result whose audit row could
	// not be stored.
	ErrAuditNotRecorded = ierrors.Internal.Reason("audit_not_recorded")
	// ErrUnknownCategory is returned for category names outside the catalog
	ErrUnknownCategory = ierrors.Invalid.Reason("unknown_category")
)

// Simulation outcomes reported to metrics
const (
	outcomeOK          = "ok"
	outcomeNoRate      = "no_rate"
	outcomeInvalid     = "invalid"
	outcomeAuditFailed = "audit_failed"
)

// SimulationService defines simulation operations.
type SimulationService interface {
	Start() error
	Stop() error
	SimulateByProduct(ctx context.Context, req SimulateRequest) (*Result, error)
	SimulateByCategory(ctx context.Context, req SimulateRequest) (*Result, error)
	List(ctx context.Context, filter ListFilter) ([]models.Simulation, error)
	ByProductDay(ctx context.Context) ([]ProductDay, error)
}

// SimulateRequest asks for a projection. ProductID is used by
// SimulateByProduct and Category by SimulateByCategory.
type SimulateRequest struct {
	ClientID   uint            `json:"client_id" validate:"gt=0"`
	ProductID  uint            `json:"product_id,omitempty"`
	Category   string          `json:"category,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	TermMonths int             `json:"term_months"`
}

// ValidatedProduct is the product the projection was computed for
type ValidatedProduct struct {
	ID         uint                   `json:"id"`
	Name       string                 `json:"name"`
	Category   models.ProductCategory `json:"category"`
	AnnualRate decimal.Decimal        `json:"annual_rate"`
	Risk       decimal.Decimal        `json:"risk"`
	Tier       advisory.RiskTier      `json:"tier"`
	TierLabel  string                 `json:"tier_label"`
}

// Result is a served projection
type Result struct {
	SimulationID  uint                `json:"simulation_id,omitempty"`
	ClientID      uint                `json:"client_id"`
	Product       ValidatedProduct    `json:"product"`
	Amount        decimal.Decimal     `json:"amount"`
	Projection    advisory.Projection `json:"projection"`
	SimulatedAt   time.Time           `json:"simulated_at"`
	AuditRecorded bool                `json:"audit_recorded"`
}

// ListFilter narrows the simulation history. Zero values mean no filter.
type ListFilter struct {
	ClientID uint
	Limit    int
}

// ProductDay aggregates the simulations of one product on one UTC day
type ProductDay struct {
	ProductID         uint            `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Day               string          `json:"day"`
	Count             int64           `json:"count"`
	AverageFinalValue decimal.Decimal `json:"average_final_value"`
}

// Service implements SimulationService
type Service struct {
	logger    *zap.Logger
	db        *gorm.DB
	catalog   catalog.CatalogService
	validator *validation.Validator
	publisher events.Publisher
	simulator advisory.Simulator
	now       func() time.Time
}

// NewService creates a new simulation service
func NewService(
	logger *zap.Logger,
	db *gorm.DB,
	catalogService catalog.CatalogService,
	validator *validation.Validator,
	publisher events.Publisher,
	simulator advisory.Simulator,
) (SimulationService, error) {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		logger:    logger,
		db:        db,
		catalog:   catalogService,
		validator: validator,
		publisher: publisher,
		simulator: simulator,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Start starts the simulation service
func (s *Service) Start() error {
	s.logger.Info("Simulation service started", zap.String("rounding", s.simulator.Rounding.String()))
	return nil
}

// Stop stops the simulation service
func (s *Service) Stop() error {
	s.logger.Info("Simulation service stopped")
	return nil
}

// SimulateByProduct projects the request against one product
func (s *Service) SimulateByProduct(ctx context.Context, req SimulateRequest) (*Result, error) {
	if err := s.precheck(ctx, req); err != nil {
		return nil, err
	}
	product, err := s.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	return s.simulate(ctx, req, product)
}

// SimulateByCategory projects the request against the lowest-id product of
// the requested category.
func (s *Service) SimulateByCategory(ctx context.Context, req SimulateRequest) (*Result, error) {
	category, ok := models.ParseCategory(req.Category)
	if !ok {
		metrics.SimulationsTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, ErrUnknownCategory.Explain("unknown product category %q", req.Category)
	}
	if err := s.precheck(ctx, req); err != nil {
		return nil, err
	}
	product, err := s.catalog.FirstInCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return s.simulate(ctx, req, product)
}

// precheck rejects bad input before any product lookup
func (s *Service) precheck(ctx context.Context, req SimulateRequest) error {
	if err := s.validator.ValidateStruct(req); err != nil {
		metrics.SimulationsTotal.WithLabelValues(outcomeInvalid).Inc()
		return err
	}
	if !req.Amount.IsPositive() {
		metrics.SimulationsTotal.WithLabelValues(outcomeInvalid).Inc()
		return advisory.ErrInvalidAmount.Explain("amount must be greater than zero")
	}
	if req.TermMonths <= 0 {
		metrics.SimulationsTotal.WithLabelValues(outcomeInvalid).Inc()
		return advisory.ErrInvalidTerm.Explain("term must be at least one month")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Client{}).Where("id = ?", req.ClientID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check client: %w", err)
	}
	if count == 0 {
		return models.ErrClientNotFound.Explain("client %d not found", req.ClientID)
	}
	return nil
}

func (s *Service) simulate(ctx context.Context, req SimulateRequest, product *models.Product) (*Result, error) {
	band, err := advisory.SelectBand(product.YieldBands, req.Amount)
	if err != nil {
		metrics.SimulationsTotal.WithLabelValues(outcomeNoRate).Inc()
		return nil, err
	}

	projection, err := s.simulator.Project(req.Amount, band.AnnualRate, req.TermMonths)
	if err != nil {
		metrics.SimulationsTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, err
	}

	tier := advisory.Tier(product.Risk)
	result := &Result{
		ClientID: req.ClientID,
		Product: ValidatedProduct{
			ID:         product.ID,
			Name:       product.Name,
			Category:   product.Category,
			AnnualRate: band.AnnualRate,
			Risk:       product.Risk,
			Tier:       tier,
			TierLabel:  tier.Label(),
		},
		Amount:      req.Amount,
		Projection:  projection,
		SimulatedAt: s.now(),
	}

	audit := models.Simulation{
		ClientID:       req.ClientID,
		ProductID:      product.ID,
		Amount:         req.Amount,
		FinalValue:     projection.FinalValue,
		EffectiveYield: projection.EffectiveYield,
		TermMonths:     req.TermMonths,
		SimulatedAt:    result.SimulatedAt,
	}
	var auditErr error
	if err := s.db.WithContext(ctx).Omit("Product").Create(&audit).Error; err != nil {
		metrics.AuditFailures.Inc()
		metrics.SimulationsTotal.WithLabelValues(outcomeAuditFailed).Inc()
		s.logger.Warn("Simulation audit not recorded",
			zap.Uint("client_id", req.ClientID),
			zap.Uint("product_id", product.ID),
			zap.Error(err))
		auditErr = ErrAuditNotRecorded.Wrap(err).Explain("simulation computed but not recorded")
	} else {
		result.SimulationID = audit.ID
		result.AuditRecorded = true
		metrics.SimulationsTotal.WithLabelValues(outcomeOK).Inc()
	}

	s.logger.Debug("Simulation served",
		zap.Uint("client_id", req.ClientID),
		zap.Uint("product_id", product.ID),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.Int("term_months", req.TermMonths),
		zap.String("final_value", projection.FinalValue.StringFixed(2)))

	if err := s.publisher.Publish(ctx, events.New(events.TypeSimulationCompleted, req.ClientID, result)); err != nil {
		s.logger.Warn("Event publish failed", zap.Uint("client_id", req.ClientID), zap.Error(err))
	}

	return result, auditErr
}

// List returns the simulation history, newest first
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Simulation, error) {
	q := s.db.WithContext(ctx).Preload("Product").Order("simulated_at DESC, id DESC")
	if filter.ClientID > 0 {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var sims []models.Simulation
	if err := q.Find(&sims).Error; err != nil {
		return nil, fmt.Errorf("failed to list simulations: %w", err)
	}
	return sims, nil
}

type dayKey struct {
	productID uint
	day       string
}

// ByProductDay groups the history by product and UTC day, newest day first
// and products in id order within a day.
func (s *Service) ByProductDay(ctx context.Context) ([]ProductDay, error) {
	sims, err := s.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	sums := make(map[dayKey]decimal.Decimal)
	groups := make(map[dayKey]*ProductDay)
	for _, sim := range sims {
		key := dayKey{productID: sim.ProductID, day: sim.SimulatedAt.UTC().Format(time.DateOnly)}
		g, ok := groups[key]
		if !ok {
			g = &ProductDay{ProductID: sim.ProductID, Day: key.day}
			if sim.Product != nil {
				g.ProductName = sim.Product.Name
			}
			groups[key] = g
			sums[key] = decimal.Zero
		}
		g.Count++
		sums[key] = sums[key].Add(sim.FinalValue)
	}

	out := make([]ProductDay, 0, len(groups))
	for key, g := range groups {
		g.AverageFinalValue = s.simulator.Rounding.Round(sums[key].Div(decimal.NewFromInt(g.Count)), 2)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day > out[j].Day
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

// IsAuditFailure reports whether err only signals a missing audit row
func IsAuditFailure(err error) bool {
	return errors.Is(err, ErrAuditNotRecorded)
}
