package scheduler

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/farmledger/internal/domain/models"
)

type fakeLedger struct {
	users    []string
	settings map[string]string
	from, to time.Time
}

func (f *fakeLedger) ActiveUsers(_ context.Context, from, to time.Time) ([]string, error) {
	f.from, f.to = from, to
	return f.users, nil
}

func (f *fakeLedger) FindSettings(_ context.Context, userID string) (*models.FarmSettings, error) {
	name, ok := f.settings[userID]
	if !ok {
		return nil, models.ErrSettingsNotFound
	}
	return &models.FarmSettings{UserID: userID, FarmName: name, HenCount: 500}, nil
}

type fakeAggregator struct {
	failFor string
}

func (f fakeAggregator) Between(_ context.Context, userID string, from, to time.Time) (models.WeeklyIndicators, error) {
	if userID == f.failFor {
		return models.WeeklyIndicators{}, errors.New("database is locked")
	}
	return models.WeeklyIndicators{
		From:              models.FormatDay(from),
		To:                models.FormatDay(to),
		DayCount:          1,
		AverageProduction: 420,
		AverageProfit:     decimal.NewFromInt(180000),
		TotalRevenue:      decimal.NewFromInt(240000),
		TotalExpense:      decimal.NewFromInt(60000),
	}, nil
}

type recorder struct {
	mu       sync.Mutex
	archived []string
	exported []string
	messages []string
}

func (r *recorder) SaveDigest(_ context.Context, d models.WeeklyDigest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archived = append(r.archived, d.UserID)
	return nil
}

func (r *recorder) ExportDigest(_ context.Context, d models.WeeklyDigest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exported = append(r.exported, d.UserID)
	return nil
}

func (r *recorder) SendText(_ context.Context, to, body string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, to+"|"+body)
	return "wamid", nil
}

func newTestScheduler(ledger *fakeLedger, agg Aggregator, rec *recorder) *Scheduler {
	s := NewScheduler("0 20 * * 5", time.UTC, ledger, agg, Sinks{
		Archive:   rec,
		Export:    rec,
		Notify:    rec,
		ManagerID: "224600000000",
	}, nil)
	s.now = func() time.Time { return time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC) }
	return s
}

func TestRunWeeklyDigestFansOut(t *testing.T) {
	ledger := &fakeLedger{users: []string{"u-1", "u-2"}, settings: map[string]string{"u-1": "Sunrise"}}
	rec := &recorder{}
	s := newTestScheduler(ledger, fakeAggregator{}, rec)

	sent, err := s.RunWeeklyDigest(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}

	if !ledger.from.Equal(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)) || !ledger.to.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected window %v..%v", ledger.from, ledger.to)
	}

	sort.Strings(rec.archived)
	sort.Strings(rec.messages)
	if len(rec.archived) != 2 || len(rec.exported) != 2 || len(rec.messages) != 2 {
		t.Fatalf("unexpected fan-out: %+v", rec)
	}
	if !strings.Contains(rec.messages[0], "Farm u-2") && !strings.Contains(rec.messages[1], "Farm u-2") {
		t.Fatalf("farm without settings should fall back to its user id: %v", rec.messages)
	}
	for _, m := range rec.messages {
		if !strings.HasPrefix(m, "224600000000|") {
			t.Fatalf("digest sent to the wrong recipient: %s", m)
		}
	}
}

func TestRunWeeklyDigestKeepsGoingAfterFailure(t *testing.T) {
	ledger := &fakeLedger{users: []string{"u-1", "u-2", "u-3"}}
	rec := &recorder{}
	s := newTestScheduler(ledger, fakeAggregator{failFor: "u-2"}, rec)

	sent, err := s.RunWeeklyDigest(context.Background())
	if err == nil || !strings.Contains(err.Error(), "user u-2") {
		t.Fatalf("expected joined error naming u-2, got %v", err)
	}
	if sent != 2 || len(rec.messages) != 2 {
		t.Fatalf("other users should still be served: sent=%d messages=%d", sent, len(rec.messages))
	}
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler("every friday", time.UTC, &fakeLedger{}, fakeAggregator{}, Sinks{}, nil)
	if err := s.Start(); err == nil {
		t.Fatalf("expected schedule error")
	}
}
