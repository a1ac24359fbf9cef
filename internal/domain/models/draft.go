package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordDraft is a validated, normalized daily record ready for persistence.
type RecordDraft struct {
	Date          time.Time
	EggsProduced  int64
	EggsSold      int64
	UnitSalePrice decimal.Decimal
	TotalRevenue  decimal.Decimal
	Notes         string
	Expenses      []ExpenseDraft
}

// ExpenseDraft is a validated expense line.
type ExpenseDraft struct {
	Description string
	Amount      decimal.Decimal
	CategoryID  string
}

// CategoryIDs returns the distinct category ids referenced by the draft, in first-seen order.
func (d RecordDraft) CategoryIDs() []string {
	seen := make(map[string]struct{}, len(d.Expenses))
	ids := make([]string, 0, len(d.Expenses))
	for _, e := range d.Expenses {
		if _, ok := seen[e.CategoryID]; ok {
			continue
		}
		seen[e.CategoryID] = struct{}{}
		ids = append(ids, e.CategoryID)
	}
	return ids
}
