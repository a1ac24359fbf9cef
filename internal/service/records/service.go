package records

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmledger/internal/domain/models"
	"github.com/mamadbah2/farmledger/internal/repository/sqlstore"
	"github.com/mamadbah2/farmledger/internal/validation"
)

// Store is the persistence surface needed by the record service.
type Store interface {
	FindRecordByID(ctx context.Context, userID, id string) (*models.DailyRecord, error)
	ListRecords(ctx context.Context, userID string, filter sqlstore.RecordFilter) ([]models.DailyRecord, int64, error)
	CreateRecord(ctx context.Context, userID string, draft models.RecordDraft) (*models.DailyRecord, error)
	UpdateRecord(ctx context.Context, userID, id string, draft models.RecordDraft) (*models.DailyRecord, error)
	DeleteRecord(ctx context.Context, userID, id string) error
	ListExpenses(ctx context.Context, userID, recordID string) ([]models.ExpenseLine, error)
	FindCategory(ctx context.Context, id string) (*models.ExpenseCategory, error)
}

// EventPublisher announces committed record changes.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, event models.RecordEvent) error
}

// Pagination describes the page returned by List.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// Page is one page of records.
type Page struct {
	Records    []models.DailyRecord
	Pagination Pagination
}

// Service validates submissions and drives the record store.
type Service struct {
	store     Store
	validator *validation.RecordValidator
	events    EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a record service. events may be nil.
func NewService(store Store, validator *validation.RecordValidator, events EventPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, validator: validator, events: events, logger: logger, now: time.Now}
}

// Create validates sub and stores it as the caller's record for its day.
func (s *Service) Create(ctx context.Context, principal models.Principal, sub validation.RecordSubmission) (*models.DailyRecord, error) {
	draft, err := s.validator.Validate(sub)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCategories(ctx, draft); err != nil {
		return nil, err
	}

	record, err := s.store.CreateRecord(ctx, principal.UserID, draft)
	if err != nil {
		return nil, err
	}

	s.logger.Info("daily record created",
		zap.String("user_id", principal.UserID),
		zap.String("record_id", record.ID),
		zap.String("date", models.FormatDay(record.Date)),
		zap.Int("expenses", len(record.Expenses)))
	s.publish(ctx, models.RecordCreated, principal.UserID, record.ID, record.Date)
	return record, nil
}

// Update replaces the caller's record id with sub, including its whole expense set.
func (s *Service) Update(ctx context.Context, principal models.Principal, id string, sub validation.RecordSubmission) (*models.DailyRecord, error) {
	if _, err := s.store.FindRecordByID(ctx, principal.UserID, id); err != nil {
		return nil, err
	}

	draft, err := s.validator.Validate(sub)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCategories(ctx, draft); err != nil {
		return nil, err
	}

	record, err := s.store.UpdateRecord(ctx, principal.UserID, id, draft)
	if err != nil {
		return nil, err
	}

	s.logger.Info("daily record updated",
		zap.String("user_id", principal.UserID),
		zap.String("record_id", id),
		zap.Int("expenses", len(record.Expenses)))
	s.publish(ctx, models.RecordUpdated, principal.UserID, id, record.Date)
	return record, nil
}

// Delete removes the caller's record and its expense lines.
func (s *Service) Delete(ctx context.Context, principal models.Principal, id string) error {
	if err := s.store.DeleteRecord(ctx, principal.UserID, id); err != nil {
		return err
	}
	s.logger.Info("daily record deleted", zap.String("user_id", principal.UserID), zap.String("record_id", id))
	s.publish(ctx, models.RecordDeleted, principal.UserID, id, time.Time{})
	return nil
}

// Get returns one of the caller's records.
func (s *Service) Get(ctx context.Context, principal models.Principal, id string) (*models.DailyRecord, error) {
	return s.store.FindRecordByID(ctx, principal.UserID, id)
}

// List returns a page of the caller's records, newest first.
func (s *Service) List(ctx context.Context, principal models.Principal, filter sqlstore.RecordFilter) (Page, error) {
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	records, total, err := s.store.ListRecords(ctx, principal.UserID, filter)
	if err != nil {
		return Page{}, err
	}
	if records == nil {
		records = []models.DailyRecord{}
	}

	totalPages := (total + int64(filter.Limit) - 1) / int64(filter.Limit)
	if totalPages < 1 {
		totalPages = 1
	}

	return Page{
		Records: records,
		Pagination: Pagination{
			Total:      total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: totalPages,
		},
	}, nil
}

// Expenses returns the expense lines attached to one of the caller's records.
func (s *Service) Expenses(ctx context.Context, principal models.Principal, recordID string) ([]models.ExpenseLine, error) {
	lines, err := s.store.ListExpenses(ctx, principal.UserID, recordID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []models.ExpenseLine{}
	}
	return lines, nil
}

// Today exposes the validator's current day key.
func (s *Service) Today() string {
	return models.FormatDay(s.validator.Today())
}

func (s *Service) ensureCategories(ctx context.Context, draft models.RecordDraft) error {
	for _, id := range draft.CategoryIDs() {
		if _, err := s.store.FindCategory(ctx, id); err != nil {
			return fmt.Errorf("category %s: %w", id, err)
		}
	}
	return nil
}

// publish is best effort: the change is already committed, so failures are only logged.
func (s *Service) publish(ctx context.Context, kind models.RecordEventType, userID, recordID string, day time.Time) {
	if s.events == nil {
		return
	}
	event := models.RecordEvent{Type: kind, RecordID: recordID, UserID: userID, OccurredAt: s.now().UTC()}
	if !day.IsZero() {
		event.Date = models.FormatDay(day)
	}
	if err := s.events.PublishRecordEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish record event",
			zap.String("type", string(kind)),
			zap.String("record_id", recordID),
			zap.Error(err))
	}
}
