package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/farmledger/internal/config"
	"github.com/mamadbah2/farmledger/internal/domain/models"
)

// IndicatorsRange is where digest rows are appended.
const IndicatorsRange = "Indicators!A:H"

// Exporter appends digest figures to a spreadsheet.
type Exporter interface {
	ExportDigest(ctx context.Context, digest models.WeeklyDigest) error
}

// GoogleSheetRepository implements Exporter using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed exporter.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ExportDigest appends one row per recorded day of the digest.
func (r *GoogleSheetRepository) ExportDigest(ctx context.Context, digest models.WeeklyDigest) error {
	rows := IndicatorRows(digest)
	if len(rows) == 0 {
		return nil
	}
	return r.WriteRows(ctx, IndicatorsRange, rows)
}

// WriteRows appends the provided rows to the supplied sheet range.
func (r *GoogleSheetRepository) WriteRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return fmt.Errorf("sheetRange must not be empty")
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)))
	return nil
}

// IndicatorRows flattens a digest into spreadsheet rows:
// user, farm, date, produced, sold, revenue, expense, profit.
func IndicatorRows(digest models.WeeklyDigest) [][]interface{} {
	rows := make([][]interface{}, 0, len(digest.Indicators.Days))
	for _, day := range digest.Indicators.Days {
		rows = append(rows, []interface{}{
			digest.UserID,
			digest.FarmName,
			day.Date,
			day.EggsProduced,
			day.EggsSold,
			day.TotalRevenue.StringFixed(2),
			day.TotalExpense.StringFixed(2),
			day.NetProfit.StringFixed(2),
		})
	}
	return rows
}
