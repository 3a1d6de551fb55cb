package portfolio

import "dca-dashboard/internal/types"

// DefaultMaxPoints bounds a rendered series.
const DefaultMaxPoints = 1000

// Downsample keeps every step-th element, step = ceil(len/maxPoints), so the
// result never exceeds maxPoints. Series already within bounds, and any
// maxPoints <= 0, are returned unchanged.
func Downsample[T any](series []T, maxPoints int) []T {
	if maxPoints <= 0 || len(series) <= maxPoints {
		return series
	}
	step := (len(series) + maxPoints - 1) / maxPoints
	out := make([]T, 0, (len(series)+step-1)/step)
	for i := 0; i < len(series); i += step {
		out = append(out, series[i])
	}
	return out
}

// DownsampleSeries applies Downsample to the portfolio series and to every
// symbol series.
func DownsampleSeries(cs types.ChartSeries, maxPoints int) types.ChartSeries {
	out := types.ChartSeries{
		Portfolio: Downsample(cs.Portfolio, maxPoints),
		Symbols:   make([]types.SymbolSeries, len(cs.Symbols)),
	}
	for i, s := range cs.Symbols {
		out.Symbols[i] = types.SymbolSeries{Symbol: s.Symbol, Data: Downsample(s.Data, maxPoints)}
	}
	return out
}
