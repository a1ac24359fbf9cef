package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/mamadbah2/farmledger/internal/domain/models"
)

// RecordFilter narrows a paginated record listing. From and To are inclusive day keys.
type RecordFilter struct {
	From  *time.Time
	To    *time.Time
	Page  int
	Limit int
}

func withExpenses(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Expenses", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC, id ASC") }).
		Preload("Expenses.Category")
}

// FindRecord returns the user's record for day, or ErrRecordNotFound.
func (s *Store) FindRecord(ctx context.Context, userID string, day time.Time) (*models.DailyRecord, error) {
	var record models.DailyRecord
	err := withExpenses(s.db.WithContext(ctx)).
		Where("user_id = ? AND date = ?", userID, day).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record for %s: %w", models.FormatDay(day), err)
	}
	return &record, nil
}

// FindRecordByID returns a record owned by userID.
func (s *Store) FindRecordByID(ctx context.Context, userID, id string) (*models.DailyRecord, error) {
	var record models.DailyRecord
	err := withExpenses(s.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, userID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record %s: %w", id, err)
	}
	return &record, nil
}

// FindRecordsInRange returns the user's records with from <= date <= to, oldest first.
func (s *Store) FindRecordsInRange(ctx context.Context, userID string, from, to time.Time) ([]models.DailyRecord, error) {
	var records []models.DailyRecord
	err := withExpenses(s.db.WithContext(ctx)).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("find records %s..%s: %w", models.FormatDay(from), models.FormatDay(to), err)
	}
	return records, nil
}

// ListRecords returns one page of the user's records, newest first, and the total match count.
func (s *Store) ListRecords(ctx context.Context, userID string, filter RecordFilter) ([]models.DailyRecord, int64, error) {
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if filter.From != nil {
			db = db.Where("date >= ?", *filter.From)
		}
		if filter.To != nil {
			db = db.Where("date <= ?", *filter.To)
		}
		return db
	}

	var (
		records []models.DailyRecord
		total   int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return withExpenses(s.db.WithContext(gctx)).
			Scopes(scope).
			Order("date DESC").
			Offset((filter.Page - 1) * filter.Limit).
			Limit(filter.Limit).
			Find(&records).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.DailyRecord{}).Scopes(scope).Count(&total).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}

	return records, total, nil
}

// CreateRecord inserts a new record with its expense lines. A second record for the
// same user and day fails with ErrDuplicateRecord.
func (s *Store) CreateRecord(ctx context.Context, userID string, draft models.RecordDraft) (*models.DailyRecord, error) {
	record := models.DailyRecord{
		UserID:        userID,
		Date:          draft.Date,
		EggsProduced:  draft.EggsProduced,
		EggsSold:      draft.EggsSold,
		UnitSalePrice: draft.UnitSalePrice,
		TotalRevenue:  draft.TotalRevenue,
		Notes:         draft.Notes,
		Expenses:      expenseLines("", draft.Expenses),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.DailyRecord{}).
			Where("user_id = ? AND date = ?", userID, draft.Date).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return models.ErrDuplicateRecord
		}
		return tx.Create(&record).Error
	})
	switch {
	case err == nil:
	case errors.Is(err, models.ErrDuplicateRecord), isUniqueViolation(err):
		return nil, models.ErrDuplicateRecord
	default:
		return nil, fmt.Errorf("create record: %w", err)
	}

	s.logger.Debug("record created", zap.String("record_id", record.ID), zap.String("date", models.FormatDay(record.Date)))
	return s.FindRecordByID(ctx, userID, record.ID)
}

// UpdateRecord overwrites a record and replaces its whole expense set in one transaction.
func (s *Store) UpdateRecord(ctx context.Context, userID, id string, draft models.RecordDraft) (*models.DailyRecord, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.DailyRecord
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return err
		}

		var clash int64
		if err := tx.Model(&models.DailyRecord{}).
			Where("user_id = ? AND date = ? AND id <> ?", userID, draft.Date, id).
			Count(&clash).Error; err != nil {
			return err
		}
		if clash > 0 {
			return models.ErrDuplicateRecord
		}

		if err := tx.Where("record_id = ?", id).Delete(&models.ExpenseLine{}).Error; err != nil {
			return fmt.Errorf("delete expense lines: %w", err)
		}

		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"date":            draft.Date,
			"eggs_produced":   draft.EggsProduced,
			"eggs_sold":       draft.EggsSold,
			"unit_sale_price": draft.UnitSalePrice,
			"total_revenue":   draft.TotalRevenue,
			"notes":           draft.Notes,
		}).Error; err != nil {
			return fmt.Errorf("update record row: %w", err)
		}

		lines := expenseLines(id, draft.Expenses)
		if len(lines) == 0 {
			return nil
		}
		if err := tx.Create(&lines).Error; err != nil {
			return fmt.Errorf("insert expense lines: %w", err)
		}
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrConflict):
		return nil, err
	case isUniqueViolation(err):
		return nil, models.ErrDuplicateRecord
	default:
		return nil, fmt.Errorf("update record %s: %w: %w", id, models.ErrTransactionFailed, err)
	}

	s.logger.Debug("record updated", zap.String("record_id", id), zap.Int("expenses", len(draft.Expenses)))
	return s.FindRecordByID(ctx, userID, id)
}

// DeleteRecord removes a record and its expense lines.
func (s *Store) DeleteRecord(ctx context.Context, userID, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Limit(1).Find(&models.DailyRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrRecordNotFound
		}
		if err := tx.Where("record_id = ?", id).Delete(&models.ExpenseLine{}).Error; err != nil {
			return fmt.Errorf("delete expense lines: %w", err)
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.DailyRecord{}).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrNotFound):
		return err
	default:
		return fmt.Errorf("delete record %s: %w: %w", id, models.ErrTransactionFailed, err)
	}
}

// ListExpenses returns the expense lines of a record owned by userID, newest first.
func (s *Store) ListExpenses(ctx context.Context, userID, recordID string) ([]models.ExpenseLine, error) {
	var owned int64
	if err := s.db.WithContext(ctx).Model(&models.DailyRecord{}).
		Where("id = ? AND user_id = ?", recordID, userID).
		Count(&owned).Error; err != nil {
		return nil, fmt.Errorf("check record %s: %w", recordID, err)
	}
	if owned == 0 {
		return nil, models.ErrRecordNotFound
	}

	var lines []models.ExpenseLine
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Where("record_id = ?", recordID).
		Order("created_at DESC, id ASC").
		Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("list expenses of %s: %w", recordID, err)
	}
	return lines, nil
}

// ActiveUsers returns the ids of users that have at least one record in [from, to].
func (s *Store) ActiveUsers(ctx context.Context, from, to time.Time) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.DailyRecord{}).
		Where("date >= ? AND date <= ?", from, to).
		Distinct().
		Order("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return ids, nil
}

func expenseLines(recordID string, drafts []models.ExpenseDraft) []models.ExpenseLine {
	lines := make([]models.ExpenseLine, 0, len(drafts))
	for _, d := range drafts {
		lines = append(lines, models.ExpenseLine{
			RecordID:    recordID,
			CategoryID:  d.CategoryID,
			Description: d.Description,
			Amount:      d.Amount,
		})
	}
	return lines
}
