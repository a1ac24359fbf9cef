package categories

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mamadbah2/farmledger/internal/domain/models"
	"github.com/mamadbah2/farmledger/internal/validation"
)

// Store is the persistence surface needed by the category service.
type Store interface {
	ListCategories(ctx context.Context, includeInactive bool) ([]models.ExpenseCategory, error)
	CreateCategory(ctx context.Context, name, description string) (*models.ExpenseCategory, error)
	UpdateCategory(ctx context.Context, id, name, description string) (*models.ExpenseCategory, error)
	SetCategoryActive(ctx context.Context, id string, active bool) (*models.ExpenseCategory, error)
}

// Input is the payload for creating or editing a category.
type Input struct {
	Name        string `json:"name" validate:"required,min=3,max=120"`
	Description string `json:"description" validate:"max=500"`
}

// Service manages expense categories. Writes are restricted to administrators.
type Service struct {
	store     Store
	validator *validation.Validator
	logger    *zap.Logger
}

// NewService constructs a category service.
func NewService(store Store, validator *validation.Validator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = validation.New()
	}
	return &Service{store: store, validator: validator, logger: logger}
}

// List returns categories ordered by name.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]models.ExpenseCategory, error) {
	categories, err := s.store.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.ExpenseCategory{}
	}
	return categories, nil
}

// Create adds a category.
func (s *Service) Create(ctx context.Context, principal models.Principal, in Input) (*models.ExpenseCategory, error) {
	if !principal.IsAdmin() {
		return nil, models.ErrAdminOnly
	}
	in = normalize(in)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	category, err := s.store.CreateCategory(ctx, in.Name, in.Description)
	if err != nil {
		return nil, err
	}
	s.logger.Info("category created", zap.String("category_id", category.ID), zap.String("name", category.Name))
	return category, nil
}

// Update renames a category.
func (s *Service) Update(ctx context.Context, principal models.Principal, id string, in Input) (*models.ExpenseCategory, error) {
	if !principal.IsAdmin() {
		return nil, models.ErrAdminOnly
	}
	in = normalize(in)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	return s.store.UpdateCategory(ctx, id, in.Name, in.Description)
}

// SetActive enables or disables a category.
func (s *Service) SetActive(ctx context.Context, principal models.Principal, id string, active bool) (*models.ExpenseCategory, error) {
	if !principal.IsAdmin() {
		return nil, models.ErrAdminOnly
	}
	category, err := s.store.SetCategoryActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	s.logger.Info("category state changed", zap.String("category_id", id), zap.Bool("active", active))
	return category, nil
}

// normalize trims input and title-cases the name so "feed" and "Feed" collide.
func normalize(in Input) Input {
	in.Name = cases.Title(language.English, cases.NoLower).String(strings.Join(strings.Fields(in.Name), " "))
	in.Description = strings.TrimSpace(in.Description)
	return in
}
