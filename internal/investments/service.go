// Package investments records client investments and moves the client's
// risk ceiling in the same transaction.
package investments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aidin1998/investboard/internal/advisory"
	"github.com/Aidin1998/investboard/internal/events"
	ierrors "github.com/Aidin1998/investboard/pkg/errors"
	"github.com/Aidin1998/investboard/pkg/metrics"
	"github.com/Aidin1998/investboard/pkg/models"
	"github.com/Aidin1998/investboard/pkg/validation"
)

// ErrInvestmentNotFound is returned for unknown or foreign investment ids
var ErrInvestmentNotFound = ierrors.NotFound.Reason("investment_not_found")

// InvestmentService defines investment operations.
type InvestmentService interface {
	Start() error
	Stop() error
	RecordInvestment(ctx context.Context, req RecordRequest) (*Receipt, error)
	ListByClient(ctx context.Context, clientID uint) ([]models.Investment, error)
	Get(ctx context.Context, clientID, investmentID uint) (*models.Investment, error)
}

// RecordRequest is a new investment. Yield and Date are optional: a missing
// yield is taken from the product's matching band and a missing date is now.
type RecordRequest struct {
	ClientID  uint             `json:"client_id" binding:"required,gt=0" validate:"gt=0"`
	ProductID uint             `json:"product_id" binding:"required,gt=0" validate:"gt=0"`
	Amount    decimal.Decimal  `json:"amount" binding:"decimal_gt0" validate:"decimal_gt0"`
	Yield     *decimal.Decimal `json:"yield,omitempty"`
	Date      *time.Time       `json:"date,omitempty"`
}

// Receipt is the stored investment and the ceiling decision taken with it
type Receipt struct {
	models.Investment
	Adjustment advisory.Adjustment `json:"risk_adjustment"`
}

// Service implements InvestmentService
type Service struct {
	logger    *zap.Logger
	db        *gorm.DB
	validator *validation.Validator
	publisher events.Publisher
	locks     *keyedMutex
	now       func() time.Time

	// runs inside the transaction right before the ceiling write
	beforeCeilingWrite func(tx *gorm.DB, client *models.Client) error
}

// NewService creates a new investment service
func NewService(logger *zap.Logger, db *gorm.DB, validator *validation.Validator, publisher events.Publisher) (InvestmentService, error) {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		logger:    logger,
		db:        db,
		validator: validator,
		publisher: publisher,
		locks:     newKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Start starts the investment service
func (s *Service) Start() error {
	s.logger.Info("Investment service started")
	return nil
}

// Stop stops the investment service
func (s *Service) Stop() error {
	s.logger.Info("Investment service stopped")
	return nil
}

type holdingRow struct {
	Amount decimal.Decimal
	Risk   decimal.Decimal
}

// RecordInvestment aggregates the client's history, evaluates the new
// ceiling and stores both the ceiling and the investment atomically. Only one
// recording per client runs at a time; the client's version column also
// rejects writes based on a stale read with ErrConflict.
func (s *Service) RecordInvestment(ctx context.Context, req RecordRequest) (*Receipt, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(req.ClientID)
	defer unlock()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	receipt, err := s.record(tx, req)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, models.ErrConflict) {
			metrics.PersistenceConflicts.Inc()
			s.logger.Warn("Client ceiling update conflicted", zap.Uint("client_id", req.ClientID))
		}
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit investment: %w", err)
	}

	adj := receipt.Adjustment
	metrics.InvestmentsRecorded.WithLabelValues(advisory.Tier(receipt.Product.Risk).String()).Inc()
	direction := advisory.DirectionNone
	if adj.Changed() {
		direction = adj.Direction
	}
	metrics.RiskAdjustments.WithLabelValues(string(direction)).Inc()

	s.logger.Info("Investment recorded",
		zap.Uint("investment_id", receipt.ID),
		zap.Uint("client_id", receipt.ClientID),
		zap.Uint("product_id", receipt.ProductID),
		zap.String("amount", receipt.Amount.StringFixed(2)),
		zap.String("previous_max_risk", adj.Previous.String()),
		zap.String("max_risk", adj.MaxRisk.String()),
		zap.String("direction", string(adj.Direction)))

	evs := []events.Event{events.New(events.TypeInvestmentRecorded, receipt.ClientID, receipt.Investment)}
	if adj.Changed() {
		evs = append(evs, events.New(events.TypeRiskAdjusted, receipt.ClientID, adj))
	}
	if err := s.publisher.Publish(ctx, evs...); err != nil {
		s.logger.Warn("Event publish failed", zap.Uint("investment_id", receipt.ID), zap.Error(err))
	}

	return receipt, nil
}

func (s *Service) record(tx *gorm.DB, req RecordRequest) (*Receipt, error) {
	var client models.Client
	if err := tx.First(&client, req.ClientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrClientNotFound.Explain("client %d not found", req.ClientID)
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	var product models.Product
	err := tx.Preload("YieldBands", func(db *gorm.DB) *gorm.DB { return db.Order("yield_bands.id") }).
		First(&product, req.ProductID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrProductNotFound.Explain("product %d not found", req.ProductID)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	var rows []holdingRow
	err = tx.Table("investments").
		Select("investments.amount AS amount, products.risk AS risk").
		Joins("JOIN products ON products.id = investments.product_id").
		Where("investments.client_id = ?", client.ID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load client history: %w", err)
	}
	holdings := make([]advisory.Holding, 0, len(rows))
	for _, r := range rows {
		holdings = append(holdings, advisory.Holding{Amount: r.Amount, Risk: r.Risk})
	}

	adj := advisory.Evaluate(client.MaxRisk, product.Risk, advisory.Aggregate(holdings))

	if s.beforeCeilingWrite != nil {
		if err := s.beforeCeilingWrite(tx, &client); err != nil {
			return nil, err
		}
	}

	res := tx.Model(&models.Client{}).
		Where("id = ? AND version = ?", client.ID, client.Version).
		Updates(map[string]interface{}{
			"max_risk": adj.MaxRisk,
			"version":  gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update client ceiling: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.ErrConflict.Explain("client %d was modified concurrently", client.ID)
	}

	investment := models.Investment{
		ClientID:  client.ID,
		ProductID: product.ID,
		Amount:    req.Amount,
		Yield:     s.yieldFor(product, req),
		Date:      s.now(),
	}
	if req.Date != nil {
		investment.Date = req.Date.UTC()
	}
	if err := tx.Omit("Product").Create(&investment).Error; err != nil {
		return nil, fmt.Errorf("failed to create investment: %w", err)
	}
	investment.Product = &product

	return &Receipt{Investment: investment, Adjustment: adj}, nil
}

// yieldFor returns the requested yield, else the matching band's rate, else 0
func (s *Service) yieldFor(product models.Product, req RecordRequest) decimal.Decimal {
	if req.Yield != nil {
		return *req.Yield
	}
	band, err := advisory.SelectBand(product.YieldBands, req.Amount)
	if err != nil {
		s.logger.Debug("No yield band for investment amount",
			zap.Uint("product_id", product.ID),
			zap.String("amount", req.Amount.String()))
		return decimal.Zero
	}
	return band.AnnualRate
}

// ListByClient returns a client's investments, newest first
func (s *Service) ListByClient(ctx context.Context, clientID uint) ([]models.Investment, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Client{}).Where("id = ?", clientID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check client: %w", err)
	}
	if count == 0 {
		return nil, models.ErrClientNotFound.Explain("client %d not found", clientID)
	}

	var list []models.Investment
	if err := db.Preload("Product").Where("client_id = ?", clientID).Order("date DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return list, nil
}

// Get returns one investment owned by the client
func (s *Service) Get(ctx context.Context, clientID, investmentID uint) (*models.Investment, error) {
	var inv models.Investment
	err := s.db.WithContext(ctx).Preload("Product").
		Where("id = ? AND client_id = ?", investmentID, clientID).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvestmentNotFound.Explain("investment %d not found for client %d", investmentID, clientID)
		}
		return nil, fmt.Errorf("failed to load investment: %w", err)
	}
	return &inv, nil
}
