package settings

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmledger/internal/domain/models"
	"github.com/mamadbah2/farmledger/internal/validation"
)

// Store is the persistence surface needed by the settings service.
type Store interface {
	FindSettings(ctx context.Context, userID string) (*models.FarmSettings, error)
	CreateSettings(ctx context.Context, userID, farmName string, henCount int) (*models.FarmSettings, error)
	UpdateSettings(ctx context.Context, userID, farmName string, henCount int) (*models.FarmSettings, error)
}

// Input is the farm profile payload.
type Input struct {
	FarmName string `json:"farmName" validate:"required,min=3,max=120"`
	HenCount int    `json:"henCount" validate:"min=1"`
}

// Service manages the per-user farm profile.
type Service struct {
	store     Store
	validator *validation.Validator
	logger    *zap.Logger
}

// NewService constructs a settings service.
func NewService(store Store, validator *validation.Validator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = validation.New()
	}
	return &Service{store: store, validator: validator, logger: logger}
}

// Get returns the caller's settings, or nil when none exist yet.
func (s *Service) Get(ctx context.Context, principal models.Principal) (*models.FarmSettings, error) {
	settings, err := s.store.FindSettings(ctx, principal.UserID)
	if errors.Is(err, models.ErrSettingsNotFound) {
		return nil, nil
	}
	return settings, err
}

// Create stores the caller's first farm profile.
func (s *Service) Create(ctx context.Context, principal models.Principal, in Input) (*models.FarmSettings, error) {
	in.FarmName = strings.TrimSpace(in.FarmName)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	return s.store.CreateSettings(ctx, principal.UserID, in.FarmName, in.HenCount)
}

// Update overwrites the caller's farm profile.
func (s *Service) Update(ctx context.Context, principal models.Principal, in Input) (*models.FarmSettings, error) {
	in.FarmName = strings.TrimSpace(in.FarmName)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	return s.store.UpdateSettings(ctx, principal.UserID, in.FarmName, in.HenCount)
}
