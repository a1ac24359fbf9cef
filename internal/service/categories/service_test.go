package categories

import (
	"context"
	"errors"
	"testing"

	"github.com/mamadbah2/farmledger/internal/domain/models"
	"github.com/mamadbah2/farmledger/internal/validation"
)

type fakeStore struct {
	names map[string]string
}

func (f *fakeStore) ListCategories(context.Context, bool) ([]models.ExpenseCategory, error) {
	return nil, nil
}

func (f *fakeStore) CreateCategory(_ context.Context, name, description string) (*models.ExpenseCategory, error) {
	for _, existing := range f.names {
		if existing == name {
			return nil, models.ErrDuplicateCategory
		}
	}
	f.names["cat-"+name] = name
	return &models.ExpenseCategory{ID: "cat-" + name, Name: name, Description: description, Active: true}, nil
}

func (f *fakeStore) UpdateCategory(_ context.Context, id, name, description string) (*models.ExpenseCategory, error) {
	if _, ok := f.names[id]; !ok {
		return nil, models.ErrCategoryNotFound
	}
	f.names[id] = name
	return &models.ExpenseCategory{ID: id, Name: name, Description: description}, nil
}

func (f *fakeStore) SetCategoryActive(_ context.Context, id string, active bool) (*models.ExpenseCategory, error) {
	if _, ok := f.names[id]; !ok {
		return nil, models.ErrCategoryNotFound
	}
	return &models.ExpenseCategory{ID: id, Name: f.names[id], Active: active}, nil
}

var (
	admin    = models.Principal{UserID: "admin", Role: models.RoleAdmin}
	operator = models.Principal{UserID: "op", Role: models.RoleOperator}
)

func TestWritesRequireAdmin(t *testing.T) {
	svc := NewService(&fakeStore{names: map[string]string{"cat-Feed": "Feed"}}, nil, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, operator, Input{Name: "Transport"}); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("create: expected forbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, operator, "cat-Feed", Input{Name: "Fodder"}); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("update: expected forbidden, got %v", err)
	}
	if _, err := svc.SetActive(ctx, operator, "cat-Feed", false); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("toggle: expected forbidden, got %v", err)
	}
}

func TestCreateValidatesAndTrims(t *testing.T) {
	svc := NewService(&fakeStore{names: map[string]string{"cat-Feed": "Feed"}}, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, Input{Name: "  ab  "})
	var verr *validation.ValidationError
	if !errors.As(err, &verr) || !verr.Has("name") {
		t.Fatalf("expected name validation failure, got %v", err)
	}

	created, err := svc.Create(ctx, admin, Input{Name: "  egg   transport ", Description: " fuel "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Egg Transport" || created.Description != "fuel" {
		t.Fatalf("input not trimmed: %+v", created)
	}

	if _, err := svc.Create(ctx, admin, Input{Name: "feed"}); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict for duplicate name, got %v", err)
	}
}

func TestListNeverReturnsNil(t *testing.T) {
	svc := NewService(&fakeStore{names: map[string]string{}}, nil, nil)
	items, err := svc.List(context.Background(), false)
	if err != nil || items == nil {
		t.Fatalf("expected empty slice, got %v, %v", items, err)
	}
}
