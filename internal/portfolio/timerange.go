package portfolio

import "dca-dashboard/internal/types"

// TimeRanges are the chart windows offered in the UI, shortest first.
var TimeRanges = []types.TimeRange{
	{Label: "24h", Value: "24h", Hours: 24},
	{Label: "7d", Value: "7d", Hours: 24 * 7},
	{Label: "30d", Value: "30d", Hours: 24 * 30},
	{Label: "All", Value: "all"},
}

// DefaultTimeRange is the charts page's initial window.
const DefaultTimeRange = "30d"

// LookupTimeRange resolves a range value, falling back to the default for
// unknown or empty input.
func LookupTimeRange(value string) types.TimeRange {
	for _, tr := range TimeRanges {
		if tr.Value == value {
			return tr
		}
	}
	for _, tr := range TimeRanges {
		if tr.Value == DefaultTimeRange {
			return tr
		}
	}
	return TimeRanges[len(TimeRanges)-1]
}
