package portfolio

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"dca-dashboard/internal/types"
)

// Placeholder is shown for absent or non-finite values.
const Placeholder = "—"

// Layouts for rendered timestamps.
const (
	DashboardTimeLayout = "Jan 2, 2006 3:04 PM"
	LedgerTimeLayout    = "Jan 02, 15:04"
	AxisHourLayout      = "15:04"
	AxisDayLayout       = "Jan 02"
)

// FormatCurrency renders an amount with two decimals and thousands
// separators: "$1,234.50" for USDC, "$EUR 1,234.50" for anything else.
func FormatCurrency(amount float64, currency string) string {
	if !finite(amount) {
		return Placeholder
	}
	prefix := "$"
	if currency != "" && currency != "USDC" {
		prefix += currency + " "
	}
	sign := ""
	if amount < 0 && math.Round(amount*100) != 0 {
		sign = "-"
	}
	return sign + prefix + humanize.FormatFloat("#,###.##", math.Abs(amount))
}

// FormatPercent renders a percentage with an explicit sign, "+12.34%".
func FormatPercent(percent float64) string {
	if !finite(percent) {
		return Placeholder
	}
	sign := "+"
	if percent < 0 && math.Round(percent*100) != 0 {
		sign = "-"
	}
	return sign + humanize.FormatFloat("#,###.##", math.Abs(percent)) + "%"
}

// FormatQuantity renders a quantity with between two and eight decimals.
func FormatQuantity(qty float64) string {
	if !finite(qty) {
		return Placeholder
	}
	s := strconv.FormatFloat(math.Abs(qty), 'f', 8, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")
	for len(frac) < 2 {
		frac += "0"
	}
	if n, err := strconv.ParseInt(intPart, 10, 64); err == nil {
		intPart = humanize.Comma(n)
	}
	sign := ""
	if qty < 0 && strings.Trim(intPart+frac, "0,") != "" {
		sign = "-"
	}
	return sign + intPart + "." + frac
}

// FormatDecimalQuantity formats a wire quantity.
func FormatDecimalQuantity(d types.Decimal) string {
	return FormatQuantity(d.Float())
}

// FormatTimestamp renders ts with layout, or returns ts unchanged when it
// does not parse.
func FormatTimestamp(ts, layout string) string {
	t, ok := types.ParseTimestamp(ts)
	if !ok {
		return ts
	}
	return t.Format(layout)
}

// RelativeTime renders ts relative to now, "3 minutes ago".
func RelativeTime(ts string, now time.Time) string {
	t, ok := types.ParseTimestamp(ts)
	if !ok {
		return ts
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// AxisLayout picks the x-axis tick layout for a window.
func AxisLayout(tr types.TimeRange) string {
	if tr.Value == "24h" {
		return AxisHourLayout
	}
	return AxisDayLayout
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
