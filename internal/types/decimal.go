package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Decimal keeps a bot money/quantity field exactly as it was written.
// Conversion to float64 happens only at the point of arithmetic.
type Decimal string

// IsSet reports whether the field was present and non-empty.
func (d Decimal) IsSet() bool { return d != "" }

// Float parses the decimal text. Malformed or empty text yields NaN so the
// error propagates through any arithmetic built on it.
func (d Decimal) Float() float64 {
	if d == "" {
		return math.NaN()
	}
	v, err := decimal.NewFromString(string(d))
	if err != nil {
		return math.NaN()
	}
	return v.InexactFloat64()
}

func (d Decimal) String() string { return string(d) }

// UnmarshalJSON accepts a JSON string, a bare number (kept as its literal
// text) or null (absent).
func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*d = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = Decimal(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("decimal field: %w", err)
		}
		*d = Decimal(n.String())
		return nil
	}
}

// Float is a derived value. Non-finite values marshal as null because JSON
// has no representation for them.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
}

// Finite reports whether f is a real number.
func (f Float) Finite() bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// OptFloat is a derived value that may be absent. Absent values render as a
// placeholder, never as zero.
type OptFloat struct {
	Value Float
	Valid bool
}

func Some(v float64) OptFloat { return OptFloat{Value: Float(v), Valid: true} }

func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return o.Value.MarshalJSON()
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp forms the bot writes. Zone-less values
// are taken as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
