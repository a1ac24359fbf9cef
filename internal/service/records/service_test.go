package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/farmledger/internal/domain/models"
	"github.com/mamadbah2/farmledger/internal/repository/sqlstore"
	"github.com/mamadbah2/farmledger/internal/validation"
)

type fakeStore struct {
	records    map[string]models.DailyRecord
	categories map[string]bool
	total      int64
	created    int
	updated    int
	lastFilter sqlstore.RecordFilter
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:    map[string]models.DailyRecord{"rec-1": {ID: "rec-1", UserID: "user-1"}},
		categories: map[string]bool{"cat-feed": true},
	}
}

func (f *fakeStore) FindRecordByID(_ context.Context, userID, id string) (*models.DailyRecord, error) {
	r, ok := f.records[id]
	if !ok || r.UserID != userID {
		return nil, models.ErrRecordNotFound
	}
	return &r, nil
}

func (f *fakeStore) ListRecords(_ context.Context, _ string, filter sqlstore.RecordFilter) ([]models.DailyRecord, int64, error) {
	f.lastFilter = filter
	return nil, f.total, nil
}

func (f *fakeStore) CreateRecord(_ context.Context, userID string, draft models.RecordDraft) (*models.DailyRecord, error) {
	f.created++
	return &models.DailyRecord{ID: "rec-new", UserID: userID, Date: draft.Date}, nil
}

func (f *fakeStore) UpdateRecord(_ context.Context, userID, id string, draft models.RecordDraft) (*models.DailyRecord, error) {
	f.updated++
	return &models.DailyRecord{ID: id, UserID: userID, Date: draft.Date}, nil
}

func (f *fakeStore) DeleteRecord(_ context.Context, userID, id string) error {
	if _, err := f.FindRecordByID(context.Background(), userID, id); err != nil {
		return err
	}
	delete(f.records, id)
	return nil
}

func (f *fakeStore) ListExpenses(_ context.Context, userID, recordID string) ([]models.ExpenseLine, error) {
	if _, err := f.FindRecordByID(context.Background(), userID, recordID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeStore) FindCategory(_ context.Context, id string) (*models.ExpenseCategory, error) {
	if !f.categories[id] {
		return nil, models.ErrCategoryNotFound
	}
	return &models.ExpenseCategory{ID: id, Active: true}, nil
}

var operator = models.Principal{UserID: "user-1", Role: models.RoleOperator}

type fakePublisher struct {
	events []models.RecordEvent
	err    error
}

func (f *fakePublisher) PublishRecordEvent(_ context.Context, event models.RecordEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func newTestService(store Store) *Service {
	return NewService(store, validation.NewRecordValidator(nil, time.UTC), nil, nil)
}

func submission(categoryID string) validation.RecordSubmission {
	return validation.RecordSubmission{
		Date:          "2025-03-10",
		EggsProduced:  validation.NumberOf("420"),
		EggsSold:      validation.NumberOf("400"),
		UnitSalePrice: validation.NumberOf("600"),
		Expenses: []validation.ExpenseSubmission{
			{Description: "Feed bag", Amount: validation.NumberOf("60000"), CategoryID: categoryID},
		},
	}
}

func TestCreateStoresValidRecord(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	record, err := svc.Create(context.Background(), operator, submission("cat-feed"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if store.created != 1 || record.UserID != "user-1" {
		t.Fatalf("record not stored for caller: %+v", record)
	}
}

func TestCreateRejectsBeforeTouchingStore(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	bad := submission("cat-feed")
	bad.EggsSold = validation.NumberOf("500")
	_, err := svc.Create(context.Background(), operator, bad)
	var verr *validation.ValidationError
	if !errors.As(err, &verr) || !verr.Has("eggsSold") {
		t.Fatalf("expected eggsSold validation failure, got %v", err)
	}

	_, err = svc.Create(context.Background(), operator, submission("cat-unknown"))
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected unknown category to be not found, got %v", err)
	}

	if store.created != 0 {
		t.Fatalf("store should not be called for rejected input")
	}
}

func TestUpdateChecksOwnershipFirst(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	// Invalid payload against a foreign record still reports not found.
	_, err := svc.Update(context.Background(), models.Principal{UserID: "user-2"}, "rec-1", validation.RecordSubmission{})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := svc.Update(context.Background(), operator, "rec-1", submission("cat-feed")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if store.updated != 1 {
		t.Fatalf("expected one update, got %d", store.updated)
	}
}

func TestListPagination(t *testing.T) {
	cases := []struct {
		name      string
		total     int64
		filter    sqlstore.RecordFilter
		wantPage  int
		wantLimit int
		wantPages int64
	}{
		{"defaults on empty ledger", 0, sqlstore.RecordFilter{}, 1, 10, 1},
		{"partial last page", 25, sqlstore.RecordFilter{Page: 2, Limit: 10}, 2, 10, 3},
		{"exact pages", 20, sqlstore.RecordFilter{Page: 1, Limit: 5}, 1, 5, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			store.total = tc.total
			svc := newTestService(store)

			page, err := svc.List(context.Background(), operator, tc.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if page.Pagination.Page != tc.wantPage || page.Pagination.Limit != tc.wantLimit || page.Pagination.TotalPages != tc.wantPages {
				t.Fatalf("pagination = %+v", page.Pagination)
			}
			if page.Records == nil {
				t.Fatalf("records should be an empty slice")
			}
			if store.lastFilter.Limit != tc.wantLimit {
				t.Fatalf("store got limit %d", store.lastFilter.Limit)
			}
		})
	}
}

func TestDeleteAndExpensesAreScopedToCaller(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	stranger := models.Principal{UserID: "user-2"}

	if _, err := svc.Expenses(context.Background(), stranger, "rec-1"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found for foreign record, got %v", err)
	}
	if err := svc.Delete(context.Background(), stranger, "rec-1"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found for foreign delete, got %v", err)
	}

	lines, err := svc.Expenses(context.Background(), operator, "rec-1")
	if err != nil || lines == nil {
		t.Fatalf("expected empty expense list, got %v, %v", lines, err)
	}
	if err := svc.Delete(context.Background(), operator, "rec-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestChangesPublishEvents(t *testing.T) {
	store := newFakeStore()
	events := &fakePublisher{err: errors.New("broker unavailable")}
	svc := NewService(store, validation.NewRecordValidator(nil, time.UTC), events, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, operator, submission("cat-feed")); err != nil {
		t.Fatalf("create should not fail on publish errors: %v", err)
	}
	if _, err := svc.Update(ctx, operator, "rec-1", submission("cat-feed")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Delete(ctx, operator, "rec-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []models.RecordEventType{models.RecordCreated, models.RecordUpdated, models.RecordDeleted}
	if len(events.events) != len(want) {
		t.Fatalf("published %d events, want %d", len(events.events), len(want))
	}
	for i, kind := range want {
		if events.events[i].Type != kind || events.events[i].UserID != "user-1" {
			t.Fatalf("event %d = %+v", i, events.events[i])
		}
	}
	if events.events[0].Date != "2025-03-10" || events.events[2].Date != "" {
		t.Fatalf("unexpected event dates: %+v", events.events)
	}

	if _, err := svc.Create(ctx, operator, validation.RecordSubmission{}); err == nil || len(events.events) != 3 {
		t.Fatalf("rejected input must not publish")
	}
}
