package sheets

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/farmledger/internal/domain/models"
)

func TestIndicatorRows(t *testing.T) {
	digest := models.WeeklyDigest{
		UserID:   "user-1",
		FarmName: "Sunrise",
		Indicators: models.WeeklyIndicators{Days: []models.DailyIndicators{
			{Date: "2025-03-08", EggsProduced: 400, EggsSold: 380, TotalRevenue: decimal.NewFromInt(228000), TotalExpense: decimal.NewFromInt(50000), NetProfit: decimal.NewFromInt(178000)},
			{Date: "2025-03-10", EggsProduced: 420, EggsSold: 400, TotalRevenue: decimal.NewFromInt(240000), TotalExpense: decimal.NewFromInt(60000), NetProfit: decimal.NewFromInt(180000)},
		}},
	}

	rows := IndicatorRows(digest)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	if len(first) != 8 || first[0] != "user-1" || first[2] != "2025-03-08" || first[5] != "228000.00" || first[7] != "178000.00" {
		t.Fatalf("unexpected row %v", first)
	}

	if rows := IndicatorRows(models.WeeklyDigest{}); len(rows) != 0 {
		t.Fatalf("expected no rows for an empty digest")
	}
}
