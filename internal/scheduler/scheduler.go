package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/farmledger/internal/domain/models"
	"github.com/mamadbah2/farmledger/internal/service/reporting"
)

// digestWindowDays is the number of days before today covered by a digest.
const digestWindowDays = 6

const maxConcurrentDigests = 4

// LedgerReader lists the users to report on and their farm profiles.
type LedgerReader interface {
	ActiveUsers(ctx context.Context, from, to time.Time) ([]string, error)
	FindSettings(ctx context.Context, userID string) (*models.FarmSettings, error)
}

// Aggregator folds a user's records over a window.
type Aggregator interface {
	Between(ctx context.Context, userID string, from, to time.Time) (models.WeeklyIndicators, error)
}

// Archiver keeps digest snapshots.
type Archiver interface {
	SaveDigest(ctx context.Context, digest models.WeeklyDigest) error
}

// Exporter pushes digest rows to a spreadsheet.
type Exporter interface {
	ExportDigest(ctx context.Context, digest models.WeeklyDigest) error
}

// Notifier delivers a text message.
type Notifier interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// Sinks are the optional destinations of a digest. Nil members are skipped.
type Sinks struct {
	Archive   Archiver
	Export    Exporter
	Notify    Notifier
	ManagerID string
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	ledger   LedgerReader
	agg      Aggregator
	sinks    Sinks
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance running in loc.
func NewScheduler(schedule string, loc *time.Location, ledger LedgerReader, agg Aggregator, sinks Sinks, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: schedule,
		ledger:   ledger,
		agg:      agg,
		sinks:    sinks,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the weekly digest and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.loc.String()))

	if _, err := s.cron.AddFunc(s.schedule, s.runScheduled); err != nil {
		return fmt.Errorf("schedule weekly digest %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sent, err := s.RunWeeklyDigest(ctx)
	if err != nil {
		s.logger.Error("weekly digest finished with errors", zap.Int("digests", sent), zap.Error(err))
		return
	}
	s.logger.Info("weekly digest finished", zap.Int("digests", sent))
}

// RunWeeklyDigest builds and distributes one digest per user who logged a
// record in the last seven days. A failing user does not stop the others;
// their errors are joined into the returned error.
func (s *Scheduler) RunWeeklyDigest(ctx context.Context) (int, error) {
	to := models.CalendarDay(s.now(), s.loc)
	from := to.AddDate(0, 0, -digestWindowDays)

	users, err := s.ledger.ActiveUsers(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("list active users: %w", err)
	}
	s.logger.Info("generating weekly digests", zap.Int("users", len(users)))

	var (
		mu   sync.Mutex
		errs []error
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDigests)
	for _, userID := range users {
		userID := userID
		g.Go(func() error {
			if err := s.digestFor(gctx, userID, from, to); err != nil {
				s.logger.Warn("weekly digest failed", zap.String("user_id", userID), zap.Error(err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			done++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return done, errors.Join(errs...)
}

func (s *Scheduler) digestFor(ctx context.Context, userID string, from, to time.Time) error {
	indicators, err := s.agg.Between(ctx, userID, from, to)
	if err != nil {
		return err
	}

	digest := models.WeeklyDigest{
		UserID:      userID,
		Indicators:  indicators,
		GeneratedAt: s.now(),
	}

	settings, err := s.ledger.FindSettings(ctx, userID)
	switch {
	case err == nil:
		digest.FarmName = settings.FarmName
	case !errors.Is(err, models.ErrSettingsNotFound):
		return fmt.Errorf("load farm settings: %w", err)
	}

	if s.sinks.Archive != nil {
		if err := s.sinks.Archive.SaveDigest(ctx, digest); err != nil {
			return fmt.Errorf("archive digest: %w", err)
		}
	}
	if s.sinks.Export != nil {
		if err := s.sinks.Export.ExportDigest(ctx, digest); err != nil {
			return fmt.Errorf("export digest: %w", err)
		}
	}
	if s.sinks.Notify != nil && s.sinks.ManagerID != "" {
		if _, err := s.sinks.Notify.SendText(ctx, s.sinks.ManagerID, reporting.FormatDigest(digest)); err != nil {
			return fmt.Errorf("send digest: %w", err)
		}
	}
	return nil
}
