// Package profiles manages clients and the risk profile their ceiling is
// seeded from.
package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Aidin1998/investboard/internal/events"
	ierrors "github.com/Aidin1998/investboard/pkg/errors"
	"github.com/Aidin1998/investboard/pkg/models"
	"github.com/Aidin1998/investboard/pkg/validation"
)

// ErrClientExists is returned when creating a client id twice
var ErrClientExists = ierrors.Invalid.Reason("client_already_exists")

// ProfileService defines client profile operations.
type ProfileService interface {
	Start() error
	Stop() error
	ListProfiles(ctx context.Context) ([]models.RiskProfile, error)
	ListClients(ctx context.Context) ([]ClientProfile, error)
	GetClient(ctx context.Context, clientID uint) (*ClientProfile, error)
	CreateClient(ctx context.Context, req AssignRequest) (*ClientProfile, error)
	ChangeProfile(ctx context.Context, req AssignRequest) (*ClientProfile, error)
}

// AssignRequest links a client to a risk profile
type AssignRequest struct {
	ClientID  uint `json:"client_id" binding:"required,gt=0" validate:"gt=0"`
	ProfileID uint `json:"profile_id" binding:"required,gt=0" validate:"gt=0"`
}

// ClientProfile is a client with its profile and effective ceiling
type ClientProfile struct {
	ClientID       uint            `json:"client_id"`
	ProfileID      uint            `json:"profile_id"`
	ProfileName    string          `json:"profile_name"`
	Description    string          `json:"description"`
	ProfileMaxRisk decimal.Decimal `json:"profile_max_risk"`
	MaxRisk        decimal.Decimal `json:"max_risk"`
}

func newClientProfile(c models.Client) ClientProfile {
	cp := ClientProfile{
		ClientID:  c.ID,
		ProfileID: c.RiskProfileID,
		MaxRisk:   c.MaxRisk,
	}
	if c.RiskProfile != nil {
		cp.ProfileName = c.RiskProfile.Name
		cp.Description = c.RiskProfile.Description
		cp.ProfileMaxRisk = c.RiskProfile.MaxRisk
	}
	return cp
}

// Service implements ProfileService
type Service struct {
	logger    *zap.Logger
	db        *gorm.DB
	validator *validation.Validator
	publisher events.Publisher
}

// NewService creates a new profile service
func NewService(logger *zap.Logger, db *gorm.DB, validator *validation.Validator, publisher events.Publisher) (ProfileService, error) {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{logger: logger, db: db, validator: validator, publisher: publisher}, nil
}

// Start starts the profile service
func (s *Service) Start() error {
	s.logger.Info("Profile service started")
	return nil
}

// Stop stops the profile service
func (s *Service) Stop() error {
	s.logger.Info("Profile service stopped")
	return nil
}

// ListProfiles returns the available risk profiles
func (s *Service) ListProfiles(ctx context.Context) ([]models.RiskProfile, error) {
	var profiles []models.RiskProfile
	if err := s.db.WithContext(ctx).Order("id").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list risk profiles: %w", err)
	}
	return profiles, nil
}

// ListClients returns every client with its profile
func (s *Service) ListClients(ctx context.Context) ([]ClientProfile, error) {
	var clients []models.Client
	if err := s.db.WithContext(ctx).Preload("RiskProfile").Order("id").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	out := make([]ClientProfile, 0, len(clients))
	for _, c := range clients {
		out = append(out, newClientProfile(c))
	}
	return out, nil
}

// GetClient returns one client with its profile
func (s *Service) GetClient(ctx context.Context, clientID uint) (*ClientProfile, error) {
	client, err := s.loadClient(s.db.WithContext(ctx), clientID)
	if err != nil {
		return nil, err
	}
	cp := newClientProfile(*client)
	return &cp, nil
}

// CreateClient registers a client; its ceiling starts at the profile's
func (s *Service) CreateClient(ctx context.Context, req AssignRequest) (*ClientProfile, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	var client models.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := s.loadProfile(tx, req.ProfileID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Client{}).Where("id = ?", req.ClientID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check client: %w", err)
		}
		if count > 0 {
			return ErrClientExists.Explain("client %d already has a risk profile", req.ClientID)
		}

		client = models.Client{
			ID:            req.ClientID,
			RiskProfileID: profile.ID,
			MaxRisk:       profile.MaxRisk,
		}
		if err := tx.Create(&client).Error; err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		client.RiskProfile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Client created",
		zap.Uint("client_id", client.ID),
		zap.Uint("profile_id", client.RiskProfileID),
		zap.String("max_risk", client.MaxRisk.String()))
	s.publish(ctx, events.New(events.TypeClientCreated, client.ID, newClientProfile(client)))

	cp := newClientProfile(client)
	return &cp, nil
}

// ChangeProfile moves a client to another profile and resets the ceiling to
// the new profile's value. Choosing the current profile changes nothing.
func (s *Service) ChangeProfile(ctx context.Context, req AssignRequest) (*ClientProfile, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	var (
		client  *models.Client
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		client, err = s.loadClient(tx, req.ClientID)
		if err != nil {
			return err
		}
		if client.RiskProfileID == req.ProfileID {
			return nil
		}

		profile, err := s.loadProfile(tx, req.ProfileID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Client{}).
			Where("id = ? AND version = ?", client.ID, client.Version).
			Updates(map[string]interface{}{
				"risk_profile_id": profile.ID,
				"max_risk":        profile.MaxRisk,
				"version":         gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to change client profile: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.ErrConflict.Explain("client %d was modified concurrently", client.ID)
		}

		client.RiskProfileID = profile.ID
		client.RiskProfile = profile
		client.MaxRisk = profile.MaxRisk
		client.Version++
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	cp := newClientProfile(*client)
	if changed {
		s.logger.Info("Client profile changed",
			zap.Uint("client_id", client.ID),
			zap.Uint("profile_id", client.RiskProfileID),
			zap.String("max_risk", client.MaxRisk.String()))
		s.publish(ctx, events.New(events.TypeProfileChanged, client.ID, cp))
	}
	return &cp, nil
}

func (s *Service) loadClient(db *gorm.DB, clientID uint) (*models.Client, error) {
	var client models.Client
	if err := db.Preload("RiskProfile").First(&client, clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrClientNotFound.Explain("client %d not found", clientID)
		}
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	return &client, nil
}

func (s *Service) loadProfile(db *gorm.DB, profileID uint) (*models.RiskProfile, error) {
	var profile models.RiskProfile
	if err := db.First(&profile, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrProfileNotFound.Explain("risk profile %d not found", profileID)
		}
		return nil, fmt.Errorf("failed to load risk profile: %w", err)
	}
	return &profile, nil
}

func (s *Service) publish(ctx context.Context, evs ...events.Event) {
	if err := s.publisher.Publish(ctx, evs...); err != nil {
		s.logger.Warn("Event publish failed", zap.Error(err))
	}
}
