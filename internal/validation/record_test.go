package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func fixedValidator(t *testing.T) *RecordValidator {
	t.Helper()
	loc := time.FixedZone("COT", -5*60*60)
	v := NewRecordValidator(New(), loc)
	// 2025-03-10 22:30 in COT is already 2025-03-11 in UTC.
	v.now = func() time.Time { return time.Date(2025, 3, 11, 3, 30, 0, 0, time.UTC) }
	return v
}

func validSubmission() RecordSubmission {
	notes := "  morning collection  "
	return RecordSubmission{
		Date:          "2025-03-10",
		EggsProduced:  NumberOf("420"),
		EggsSold:      NumberOf("400"),
		UnitSalePrice: NumberOf("600"),
		Notes:         &notes,
		Expenses: []ExpenseSubmission{
			{Description: "Feed bag", Amount: NumberOf("85000"), CategoryID: "cat-feed"},
			{Description: "Vitamins", Amount: NumberOf("15000"), CategoryID: "cat-med"},
		},
	}
}

func fieldErrors(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	return verr
}

func TestValidateAcceptsAndDerivesRevenue(t *testing.T) {
	v := fixedValidator(t)

	draft, err := v.Validate(validSubmission())
	if err != nil {
		t.Fatalf("expected valid submission, got %v", err)
	}

	if want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC); !draft.Date.Equal(want) {
		t.Fatalf("date = %v, want %v", draft.Date, want)
	}
	if !draft.TotalRevenue.Equal(decimal.NewFromInt(240000)) {
		t.Fatalf("total revenue = %s, want 240000", draft.TotalRevenue)
	}
	if draft.Notes != "morning collection" {
		t.Fatalf("notes not trimmed: %q", draft.Notes)
	}
	if len(draft.Expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(draft.Expenses))
	}
}

func TestValidateIgnoresClientRevenue(t *testing.T) {
	v := fixedValidator(t)

	body := []byte(`{"date":"2025-03-10","eggsProduced":10,"eggsSold":"4","unitSalePrice":"2.5","totalRevenue":999999}`)
	var sub RecordSubmission
	if err := json.Unmarshal(body, &sub); err != nil {
		t.Fatalf("decode: %v", err)
	}

	draft, err := v.Validate(sub)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !draft.TotalRevenue.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("total revenue = %s, want 10", draft.TotalRevenue)
	}
	if draft.Expenses == nil || len(draft.Expenses) != 0 {
		t.Fatalf("expenses should default to an empty slice, got %#v", draft.Expenses)
	}
}

func TestValidateSoldVersusProduced(t *testing.T) {
	v := fixedValidator(t)

	cases := []struct {
		name     string
		produced string
		sold     string
		ok       bool
	}{
		{"less", "10", "9", true},
		{"equal", "10", "10", true},
		{"more", "10", "11", false},
		{"zero", "0", "0", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			sub.EggsProduced = NumberOf(tc.produced)
			sub.EggsSold = NumberOf(tc.sold)

			_, err := v.Validate(sub)
			if tc.ok {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			verr := fieldErrors(t, err)
			if len(verr.Fields) != 1 || verr.Fields[0].Field != "eggsSold" {
				t.Fatalf("expected a single eggsSold failure, got %+v", verr.Fields)
			}
		})
	}
}

func TestValidateDateRules(t *testing.T) {
	v := fixedValidator(t)

	cases := []struct {
		date string
		ok   bool
	}{
		{"2025-03-10", true},            // today in COT
		{"2025-03-09", true},            // yesterday
		{"2025-03-11", false},           // tomorrow locally, although already today in UTC
		{"2025-03-10T21:00:00-05:00", true},
		{"10/03/2025", false},
		{"", false},
	}

	for _, tc := range cases {
		sub := validSubmission()
		sub.Date = tc.date
		_, err := v.Validate(sub)
		if tc.ok && err != nil {
			t.Fatalf("date %q: expected ok, got %v", tc.date, err)
		}
		if !tc.ok {
			verr := fieldErrors(t, err)
			if !verr.Has("date") {
				t.Fatalf("date %q: expected date failure, got %+v", tc.date, verr.Fields)
			}
		}
	}
}

func TestValidateEnumeratesEveryField(t *testing.T) {
	v := fixedValidator(t)

	sub := RecordSubmission{
		Date:          "2030-01-01",
		EggsProduced:  NumberOf("12abc"),
		EggsSold:      NumberOf("-1"),
		UnitSalePrice: NumberOf("-5"),
		Expenses: []ExpenseSubmission{
			{Description: "ab", Amount: NumberOf("-1"), CategoryID: ""},
			{Description: "Transport", Amount: NumberOf("x"), CategoryID: "cat"},
		},
	}

	_, err := v.Validate(sub)
	verr := fieldErrors(t, err)

	want := []string{
		"date",
		"eggsProduced",
		"eggsSold",
		"unitSalePrice",
		"expenses[0].description",
		"expenses[0].amount",
		"expenses[0].categoryId",
		"expenses[1].amount",
	}
	for _, field := range want {
		if !verr.Has(field) {
			t.Errorf("missing failure for %s in %+v", field, verr.Fields)
		}
	}
	if len(verr.Fields) != len(want) {
		t.Fatalf("expected %d failures, got %d: %+v", len(want), len(verr.Fields), verr.Fields)
	}
}

func TestValidateMalformedNumbersAreNotZero(t *testing.T) {
	v := fixedValidator(t)

	cases := []string{"abc", "1,5", "NaN", "Infinity", "true", "{}"}
	for _, raw := range cases {
		sub := validSubmission()
		sub.UnitSalePrice = Number{raw: raw, present: true}
		_, err := v.Validate(sub)
		verr := fieldErrors(t, err)
		if !verr.Has("unitSalePrice") {
			t.Fatalf("price %q should be rejected, got %+v", raw, verr.Fields)
		}
	}
}

func TestValidateIntegerCounts(t *testing.T) {
	v := fixedValidator(t)

	sub := validSubmission()
	sub.EggsProduced = NumberOf("420.5")
	_, err := v.Validate(sub)
	verr := fieldErrors(t, err)
	if !verr.Has("eggsProduced") {
		t.Fatalf("fractional count should be rejected, got %+v", verr.Fields)
	}
	if verr.Has("eggsSold") {
		t.Fatalf("cross-field rule must not run when eggsProduced is invalid: %+v", verr.Fields)
	}

	sub = validSubmission()
	sub.EggsProduced = NumberOf("420.0")
	if _, err := v.Validate(sub); err != nil {
		t.Fatalf("integral decimal text should be accepted, got %v", err)
	}
}

func TestValidateExpenseLines(t *testing.T) {
	v := fixedValidator(t)

	cases := []struct {
		name        string
		description string
		amount      string
		ok          bool
	}{
		{"description too short", "ab", "10", false},
		{"description minimum", "abc", "10", true},
		{"negative amount", "Feed", "-0.01", false},
		{"zero amount", "Feed", "0", true},
		{"missing amount", "Feed", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			sub.Expenses = []ExpenseSubmission{{Description: tc.description, Amount: NumberOf(tc.amount), CategoryID: "cat"}}
			_, err := v.Validate(sub)
			if tc.ok && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected failure")
			}
		})
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	v := fixedValidator(t)
	sub := validSubmission()

	first, err := v.Validate(sub)
	if err != nil {
		t.Fatalf("first validate: %v", err)
	}
	second, err := v.Validate(sub)
	if err != nil {
		t.Fatalf("second validate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("validation is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestNumberUnmarshal(t *testing.T) {
	cases := []struct {
		body    string
		present bool
		raw     string
	}{
		{`12`, true, "12"},
		{`"12.5"`, true, "12.5"},
		{`"  "`, false, ""},
		{`null`, false, ""},
		{`false`, true, "false"},
	}
	for _, tc := range cases {
		var n Number
		if err := json.Unmarshal([]byte(tc.body), &n); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.body, err)
		}
		if n.present != tc.present || n.raw != tc.raw {
			t.Fatalf("unmarshal %s = %+v", tc.body, n)
		}
	}
}
