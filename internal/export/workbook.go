package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/farmledger/internal/domain/models"
)

const (
	daysSheet    = "Days"
	summarySheet = "Summary"
)

var dayHeader = []interface{}{"Date", "Eggs produced", "Eggs sold", "Revenue", "Expenses", "Net profit"}

// WriteIndicators renders a window of indicators as an XLSX workbook with a
// per-day sheet and a summary sheet.
func WriteIndicators(w io.Writer, ind models.WeeklyIndicators) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", daysSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(daysSheet, "A1", &dayHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, day := range ind.Days {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			day.Date,
			day.EggsProduced,
			day.EggsSold,
			day.TotalRevenue.InexactFloat64(),
			day.TotalExpense.InexactFloat64(),
			day.NetProfit.InexactFloat64(),
		}
		if err := f.SetSheetRow(daysSheet, cell, &row); err != nil {
			return fmt.Errorf("write day %s: %w", day.Date, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"From", ind.From},
		{"To", ind.To},
		{"Days logged", ind.DayCount},
		{"Average production", ind.AverageProduction},
		{"Average profit", ind.AverageProfit.InexactFloat64()},
		{"Total revenue", ind.TotalRevenue.InexactFloat64()},
		{"Total expenses", ind.TotalExpense.InexactFloat64()},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
