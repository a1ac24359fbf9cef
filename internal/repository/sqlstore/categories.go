package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mamadbah2/farmledger/internal/domain/models"
)

// DefaultCategories are created at startup when missing.
var DefaultCategories = []models.ExpenseCategory{
	{Name: "Feed", Description: "Layer feed concentrate"},
	{Name: "Medicine", Description: "Medication, vaccines and veterinary supplements"},
	{Name: "Labor", Description: "Wages and payments to workers"},
	{Name: "Utilities", Description: "Water, electricity, gas and other services"},
	{Name: "Maintenance", Description: "Repairs of buildings and equipment"},
	{Name: "Other", Description: "Miscellaneous expenses"},
}

// SeedCategories inserts every category whose name does not exist yet.
func (s *Store) SeedCategories(ctx context.Context, categories []models.ExpenseCategory) error {
	created := 0
	for _, c := range categories {
		var existing int64
		if err := s.db.WithContext(ctx).Model(&models.ExpenseCategory{}).
			Where("name = ?", c.Name).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check category %s: %w", c.Name, err)
		}
		if existing > 0 {
			continue
		}

		category := models.ExpenseCategory{Name: c.Name, Description: c.Description, Active: true}
		if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
		created++
	}
	s.logger.Info("expense categories seeded", zap.Int("created", created), zap.Int("total", len(categories)))
	return nil
}

// ListCategories returns categories sorted by name; inactive ones only when asked.
func (s *Store) ListCategories(ctx context.Context, includeInactive bool) ([]models.ExpenseCategory, error) {
	db := s.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		db = db.Where("active = ?", true)
	}

	var categories []models.ExpenseCategory
	if err := db.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// FindCategory returns a category by id, or ErrCategoryNotFound.
func (s *Store) FindCategory(ctx context.Context, id string) (*models.ExpenseCategory, error) {
	var category models.ExpenseCategory
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category %s: %w", id, err)
	}
	return &category, nil
}

// CreateCategory inserts a new active category. Names are unique.
func (s *Store) CreateCategory(ctx context.Context, name, description string) (*models.ExpenseCategory, error) {
	category := models.ExpenseCategory{Name: name, Description: description, Active: true}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.ExpenseCategory{}).Where("name = ?", name).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return models.ErrDuplicateCategory
		}
		return tx.Create(&category).Error
	})
	switch {
	case err == nil:
		return &category, nil
	case errors.Is(err, models.ErrDuplicateCategory), isUniqueViolation(err):
		return nil, models.ErrDuplicateCategory
	default:
		return nil, fmt.Errorf("create category %s: %w", name, err)
	}
}

// UpdateCategory renames a category and replaces its description.
func (s *Store) UpdateCategory(ctx context.Context, id, name, description string) (*models.ExpenseCategory, error) {
	category, err := s.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(category).Updates(map[string]interface{}{
		"name":        name,
		"description": description,
	}).Error
	if isUniqueViolation(err) {
		return nil, models.ErrDuplicateCategory
	}
	if err != nil {
		return nil, fmt.Errorf("update category %s: %w", id, err)
	}
	return s.FindCategory(ctx, id)
}

// SetCategoryActive toggles whether a category is offered for new expenses.
func (s *Store) SetCategoryActive(ctx context.Context, id string, active bool) (*models.ExpenseCategory, error) {
	category, err := s.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(category).Update("active", active).Error; err != nil {
		return nil, fmt.Errorf("set category %s active=%t: %w", id, active, err)
	}
	return s.FindCategory(ctx, id)
}
