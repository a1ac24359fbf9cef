package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/farmledger/internal/domain/models"
)

// RecordSubmission is the raw daily record payload. Any revenue sent by the
// client is ignored; it is always derived from sales.
type RecordSubmission struct {
	Date          string              `json:"date"`
	EggsProduced  Number              `json:"eggsProduced"`
	EggsSold      Number              `json:"eggsSold"`
	UnitSalePrice Number              `json:"unitSalePrice"`
	Notes         *string             `json:"notes"`
	Expenses      []ExpenseSubmission `json:"expenses"`
}

// ExpenseSubmission is one raw expense line.
type ExpenseSubmission struct {
	Description string `json:"description"`
	Amount      Number `json:"amount"`
	CategoryID  string `json:"categoryId"`
}

// recordFields is the typed form checked by struct tags after parsing.
type recordFields struct {
	EggsProduced  int64           `json:"eggsProduced" validate:"gte=0"`
	EggsSold      int64           `json:"eggsSold" validate:"gte=0"`
	UnitSalePrice decimal.Decimal `json:"unitSalePrice" validate:"gte=0"`
	Expenses      []expenseFields `json:"expenses" validate:"dive"`
}

type expenseFields struct {
	Description string          `json:"description" validate:"required,min=3"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0"`
	CategoryID  string          `json:"categoryId" validate:"required"`
}

// RecordValidator turns raw submissions into normalized drafts.
type RecordValidator struct {
	checker *Validator
	loc     *time.Location
	now     func() time.Time
}

// NewRecordValidator builds a validator whose notion of "today" follows loc.
func NewRecordValidator(checker *Validator, loc *time.Location) *RecordValidator {
	if checker == nil {
		checker = New()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RecordValidator{checker: checker, loc: loc, now: time.Now}
}

// Validate parses and checks sub. On failure the error is a *ValidationError
// that lists every rejected field.
func (v *RecordValidator) Validate(sub RecordSubmission) (models.RecordDraft, error) {
	verr := &ValidationError{}

	day := v.parseDate(sub.Date, verr)

	fields := recordFields{
		EggsProduced:  parseInteger("eggsProduced", sub.EggsProduced, verr),
		EggsSold:      parseInteger("eggsSold", sub.EggsSold, verr),
		UnitSalePrice: parseDecimal("unitSalePrice", sub.UnitSalePrice, verr),
		Expenses:      make([]expenseFields, 0, len(sub.Expenses)),
	}
	for i, e := range sub.Expenses {
		fields.Expenses = append(fields.Expenses, expenseFields{
			Description: strings.TrimSpace(e.Description),
			Amount:      parseDecimal(fmt.Sprintf("expenses[%d].amount", i), e.Amount, verr),
			CategoryID:  strings.TrimSpace(e.CategoryID),
		})
	}

	if err := v.checker.collect(fields, verr); err != nil {
		return models.RecordDraft{}, err
	}

	if !verr.Has("eggsProduced") && !verr.Has("eggsSold") && fields.EggsSold > fields.EggsProduced {
		verr.add("eggsSold", "cannot sell more eggs than were produced")
	}

	if err := verr.errOrNil(); err != nil {
		return models.RecordDraft{}, err
	}

	draft := models.RecordDraft{
		Date:          day,
		EggsProduced:  fields.EggsProduced,
		EggsSold:      fields.EggsSold,
		UnitSalePrice: fields.UnitSalePrice,
		TotalRevenue:  fields.UnitSalePrice.Mul(decimal.NewFromInt(fields.EggsSold)),
		Expenses:      make([]models.ExpenseDraft, 0, len(fields.Expenses)),
	}
	if sub.Notes != nil {
		draft.Notes = strings.TrimSpace(*sub.Notes)
	}
	for _, e := range fields.Expenses {
		draft.Expenses = append(draft.Expenses, models.ExpenseDraft{
			Description: e.Description,
			Amount:      e.Amount,
			CategoryID:  e.CategoryID,
		})
	}

	return draft, nil
}

// Today returns the current day key in the validator's timezone.
func (v *RecordValidator) Today() time.Time {
	return models.CalendarDay(v.now(), v.loc)
}

func (v *RecordValidator) parseDate(raw string, verr *ValidationError) time.Time {
	if strings.TrimSpace(raw) == "" {
		verr.add("date", errMissing.Error())
		return time.Time{}
	}
	day, err := models.ParseDay(raw, v.loc)
	if err != nil {
		verr.add("date", "must be a valid date (YYYY-MM-DD)")
		return time.Time{}
	}
	if day.After(v.Today()) {
		verr.add("date", "cannot be in the future")
	}
	return day
}

func parseInteger(field string, n Number, verr *ValidationError) int64 {
	value, err := n.integer()
	if err != nil {
		verr.add(field, err.Error())
		return 0
	}
	return value
}

func parseDecimal(field string, n Number, verr *ValidationError) decimal.Decimal {
	value, err := n.decimal()
	if err != nil {
		verr.add(field, err.Error())
		return decimal.Zero
	}
	return value
}
