package portfolio

import (
	"slices"
	"sort"
	"time"

	"dca-dashboard/internal/types"
)

type timedSnapshot struct {
	at   time.Time
	snap *types.Snapshot
}

// BuildChartSeries turns snapshots into a portfolio series and per-symbol
// series for the given window ending at now.
//
// Snapshots are filtered to tr, then sorted by ts; the input slice is left
// untouched. Snapshots whose ts does not parse are dropped. An empty
// selected means every symbol. Symbol series appear in first-seen order.
func BuildChartSeries(snapshots []types.Snapshot, tr types.TimeRange, selected []string, now time.Time) types.ChartSeries {
	series := types.ChartSeries{
		Portfolio: []types.ChartPoint{},
		Symbols:   []types.SymbolSeries{},
	}
	if len(snapshots) == 0 {
		return series
	}

	var cutoff time.Time
	if tr.Hours > 0 {
		cutoff = now.Add(-time.Duration(tr.Hours) * time.Hour)
	}

	kept := make([]timedSnapshot, 0, len(snapshots))
	for i := range snapshots {
		at, ok := types.ParseTimestamp(snapshots[i].Ts)
		if !ok {
			continue
		}
		if tr.Hours > 0 && at.Before(cutoff) {
			continue
		}
		kept = append(kept, timedSnapshot{at: at, snap: &snapshots[i]})
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].at.Before(kept[j].at) })

	index := map[string]int{}
	for _, ts := range kept {
		s := ts.snap
		ms := ts.at.UnixMilli()
		series.Portfolio = append(series.Portfolio, types.ChartPoint{
			Ts:                s.Ts,
			Timestamp:         ms,
			TotalInvested:     types.Float(s.TotalQuoteInvested.Float()),
			TotalMarketValue:  types.Float(s.TotalMarketValue.Float()),
			TotalUnrealizedPl: types.Float(s.TotalUnrealizedPl.Float()),
		})

		for _, pos := range s.Positions {
			if len(selected) > 0 && !slices.Contains(selected, pos.Symbol) {
				continue
			}
			i, seen := index[pos.Symbol]
			if !seen {
				i = len(series.Symbols)
				index[pos.Symbol] = i
				series.Symbols = append(series.Symbols, types.SymbolSeries{Symbol: pos.Symbol})
			}
			series.Symbols[i].Data = append(series.Symbols[i].Data, types.ChartPoint{
				Ts:                s.Ts,
				Timestamp:         ms,
				TotalInvested:     types.Float(pos.TotalCost.Float()),
				TotalMarketValue:  types.Float(pos.MarketValue.Float()),
				TotalUnrealizedPl: types.Float(pos.UnrealizedPl.Float()),
			})
		}
	}
	return series
}

// LatestSnapshot returns the snapshot with the greatest parseable ts, or
// nil when none parses.
func LatestSnapshot(snapshots []types.Snapshot) *types.Snapshot {
	var (
		latest   *types.Snapshot
		latestAt time.Time
	)
	for i := range snapshots {
		at, ok := types.ParseTimestamp(snapshots[i].Ts)
		if !ok {
			continue
		}
		if latest == nil || !at.Before(latestAt) {
			latest, latestAt = &snapshots[i], at
		}
	}
	return latest
}
