package validation

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	errMissing    = errors.New("is required")
	errNotNumeric = errors.New("must be a number")
	errNotInteger = errors.New("must be an integer")
	errOutOfRange = errors.New("is out of range")
)

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// Number keeps a numeric field exactly as submitted. JSON numbers and
// numeric-looking strings are both accepted; conversion happens later so that
// malformed input surfaces as a field error instead of a decoding failure.
type Number struct {
	raw     string
	present bool
}

// NumberOf builds a Number from its textual form. An empty string means absent.
func NumberOf(raw string) Number {
	raw = strings.TrimSpace(raw)
	return Number{raw: raw, present: raw != ""}
}

// UnmarshalJSON never fails on scalar type mismatches.
func (n *Number) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	switch {
	case text == "null":
		*n = Number{}
	case strings.HasPrefix(text, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberOf(s)
	default:
		*n = Number{raw: text, present: true}
	}
	return nil
}

// MarshalJSON emits the submitted text as a JSON string, or null when absent.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.present {
		return []byte("null"), nil
	}
	return json.Marshal(n.raw)
}

func (n Number) decimal() (decimal.Decimal, error) {
	if !n.present {
		return decimal.Zero, errMissing
	}
	d, err := decimal.NewFromString(n.raw)
	if err != nil {
		return decimal.Zero, errNotNumeric
	}
	return d, nil
}

func (n Number) integer() (int64, error) {
	d, err := n.decimal()
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, errNotInteger
	}
	if d.GreaterThan(maxInt64) || d.LessThan(minInt64) {
		return 0, errOutOfRange
	}
	return d.IntPart(), nil
}
