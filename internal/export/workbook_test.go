package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/farmledger/internal/domain/models"
)

func TestWriteIndicators(t *testing.T) {
	ind := models.WeeklyIndicators{
		From:              "2025-03-04",
		To:                "2025-03-10",
		DayCount:          2,
		AverageProduction: 410,
		AverageProfit:     decimal.NewFromInt(179000),
		TotalRevenue:      decimal.NewFromInt(468000),
		TotalExpense:      decimal.NewFromInt(110000),
		Days: []models.DailyIndicators{
			{Date: "2025-03-08", EggsProduced: 400, EggsSold: 380, TotalRevenue: decimal.NewFromInt(228000), TotalExpense: decimal.NewFromInt(50000), NetProfit: decimal.NewFromInt(178000)},
			{Date: "2025-03-10", EggsProduced: 420, EggsSold: 400, TotalRevenue: decimal.NewFromInt(240000), TotalExpense: decimal.NewFromInt(60000), NetProfit: decimal.NewFromInt(180000)},
		},
	}

	var buf bytes.Buffer
	if err := WriteIndicators(&buf, ind); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(daysSheet)
	if err != nil {
		t.Fatalf("read days: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "Date" || rows[2][0] != "2025-03-10" || rows[2][5] != "180000" {
		t.Fatalf("unexpected day rows %v", rows)
	}

	avg, err := f.GetCellValue(summarySheet, "B4")
	if err != nil || avg != "410" {
		t.Fatalf("average production cell = %q, %v", avg, err)
	}
}

func TestWriteIndicatorsEmptyWindow(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteIndicators(&buf, models.WeeklyIndicators{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected a workbook even without records")
	}
}
