package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmledger/internal/domain/models"
)

// DefaultWindowDays is how many days before today a rolling window reaches back.
const DefaultWindowDays = 6

// RecordReader is the read side of the record store used for aggregation.
type RecordReader interface {
	FindRecord(ctx context.Context, userID string, day time.Time) (*models.DailyRecord, error)
	FindRecordsInRange(ctx context.Context, userID string, from, to time.Time) ([]models.DailyRecord, error)
}

// Service computes dashboard indicators from persisted daily records.
type Service struct {
	repo   RecordReader
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(repository RecordReader, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repository, loc: loc, logger: logger, now: time.Now}
}

// Today returns the caller's indicators for the current day, or nil when nothing was logged yet.
func (s *Service) Today(ctx context.Context, principal models.Principal) (*models.DailyIndicators, error) {
	today := models.CalendarDay(s.now(), s.loc)

	record, err := s.repo.FindRecord(ctx, principal.UserID, today)
	if errors.Is(err, models.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load today's record: %w", err)
	}

	indicators := Daily(*record)
	return &indicators, nil
}

// Range aggregates the window [today-days, today]. Negative days fall back to the default window.
func (s *Service) Range(ctx context.Context, principal models.Principal, days int) (models.WeeklyIndicators, error) {
	if days < 0 {
		days = DefaultWindowDays
	}
	to := models.CalendarDay(s.now(), s.loc)
	from := to.AddDate(0, 0, -days)
	return s.Between(ctx, principal.UserID, from, to)
}

// Between aggregates the user's records in the inclusive window [from, to].
func (s *Service) Between(ctx context.Context, userID string, from, to time.Time) (models.WeeklyIndicators, error) {
	records, err := s.repo.FindRecordsInRange(ctx, userID, from, to)
	if err != nil {
		return models.WeeklyIndicators{}, fmt.Errorf("load records in range: %w", err)
	}

	s.logger.Debug("aggregating indicators",
		zap.String("user_id", userID),
		zap.String("from", models.FormatDay(from)),
		zap.String("to", models.FormatDay(to)),
		zap.Int("records", len(records)))

	summary := Fold(records)
	summary.From = models.FormatDay(from)
	summary.To = models.FormatDay(to)
	return summary, nil
}

// Daily derives the indicators of a single record.
func Daily(record models.DailyRecord) models.DailyIndicators {
	expense := record.TotalExpense()
	return models.DailyIndicators{
		Date:         models.FormatDay(record.Date),
		EggsProduced: record.EggsProduced,
		EggsSold:     record.EggsSold,
		TotalRevenue: record.TotalRevenue,
		TotalExpense: expense,
		NetProfit:    record.TotalRevenue.Sub(expense),
	}
}

// Fold rolls daily records up into totals and per-recorded-day averages.
// Averages are rounded half away from zero; an empty input yields zeros.
func Fold(records []models.DailyRecord) models.WeeklyIndicators {
	summary := models.WeeklyIndicators{
		AverageProfit: decimal.Zero,
		TotalRevenue:  decimal.Zero,
		TotalExpense:  decimal.Zero,
		Days:          make([]models.DailyIndicators, 0, len(records)),
	}

	var production int64
	profit := decimal.Zero
	for _, record := range records {
		daily := Daily(record)
		summary.Days = append(summary.Days, daily)
		summary.TotalRevenue = summary.TotalRevenue.Add(daily.TotalRevenue)
		summary.TotalExpense = summary.TotalExpense.Add(daily.TotalExpense)
		production += daily.EggsProduced
		profit = profit.Add(daily.NetProfit)
	}

	summary.DayCount = len(summary.Days)
	divisor := decimal.NewFromInt(int64(summary.DayCount))
	if summary.DayCount == 0 {
		divisor = decimal.NewFromInt(1)
	}

	summary.AverageProduction = decimal.NewFromInt(production).DivRound(divisor, 0).IntPart()
	summary.AverageProfit = profit.DivRound(divisor, 0)
	return summary
}

// FormatDigest renders a short plain-text summary suitable for chat delivery.
func FormatDigest(digest models.WeeklyDigest) string {
	ind := digest.Indicators
	farm := digest.FarmName
	if farm == "" {
		farm = "Farm " + digest.UserID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s weekly report (%s to %s)\n", farm, ind.From, ind.To)
	if ind.DayCount == 0 {
		b.WriteString("No records logged this week.")
		return b.String()
	}

	fmt.Fprintf(&b, "Days logged: %d\n", ind.DayCount)
	fmt.Fprintf(&b, "Average production: %d eggs/day\n", ind.AverageProduction)
	fmt.Fprintf(&b, "Revenue: %s\n", ind.TotalRevenue.StringFixed(2))
	fmt.Fprintf(&b, "Expenses: %s\n", ind.TotalExpense.StringFixed(2))
	fmt.Fprintf(&b, "Average profit: %s/day", ind.AverageProfit.String())
	return b.String()
}
