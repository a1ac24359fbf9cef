package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mamadbah2/farmledger/internal/domain/models"
)

// FindSettings returns the user's farm settings, or ErrSettingsNotFound.
func (s *Store) FindSettings(ctx context.Context, userID string) (*models.FarmSettings, error) {
	var settings models.FarmSettings
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find settings for %s: %w", userID, err)
	}
	return &settings, nil
}

// CreateSettings stores the first farm profile of a user.
func (s *Store) CreateSettings(ctx context.Context, userID, farmName string, henCount int) (*models.FarmSettings, error) {
	settings := models.FarmSettings{UserID: userID, FarmName: farmName, HenCount: henCount}
	err := s.db.WithContext(ctx).Create(&settings).Error
	if isUniqueViolation(err) {
		return nil, models.ErrSettingsExist
	}
	if err != nil {
		return nil, fmt.Errorf("create settings for %s: %w", userID, err)
	}
	return &settings, nil
}

// UpdateSettings overwrites an existing farm profile.
func (s *Store) UpdateSettings(ctx context.Context, userID, farmName string, henCount int) (*models.FarmSettings, error) {
	res := s.db.WithContext(ctx).Model(&models.FarmSettings{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"farm_name": farmName, "hen_count": henCount})
	if res.Error != nil {
		return nil, fmt.Errorf("update settings for %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.ErrSettingsNotFound
	}
	return s.FindSettings(ctx, userID)
}
