// Package portfolio derives UI-ready aggregates from bot records. Every
// function here is pure: no I/O, inputs are never modified, and results are
// recomputed from scratch on each call.
package portfolio

import "dca-dashboard/internal/types"

// ComputeDashboardKPIs returns the headline figures for a position set, or
// nil when there is none.
//
// Market value sums each position's market_value, falling back to
// price*open_quantity. When no position contributes either, market value is
// taken to equal the amount invested.
func ComputeDashboardKPIs(current *types.CurrentPositionSet) *types.KPISummary {
	if current == nil {
		return nil
	}

	totalInvested := current.TotalQuoteInvested.Float()

	var totalMarketValue float64
	hasMarketData := false
	for _, pos := range current.Positions {
		if mv, ok := positionMarketValue(pos.MarketValue, pos.Price, pos.OpenQuantity); ok {
			totalMarketValue += mv
			hasMarketData = true
		}
	}
	if !hasMarketData {
		totalMarketValue = totalInvested
	}

	totalUnrealizedPl := totalMarketValue - totalInvested
	var plPercent float64
	if totalInvested > 0 {
		plPercent = totalUnrealizedPl / totalInvested * 100
	}

	return &types.KPISummary{
		TotalInvested:            types.Float(totalInvested),
		TotalMarketValue:         types.Float(totalMarketValue),
		TotalUnrealizedPl:        types.Float(totalUnrealizedPl),
		TotalUnrealizedPlPercent: types.Float(plPercent),
		BaseCurrency:             current.BaseCurrency,
		LastUpdated:              current.UpdatedAt,
		PositionCount:            len(current.Positions),
	}
}

// positionMarketValue applies the aggregate rule: market_value when present,
// else price*quantity when both are present.
func positionMarketValue(marketValue, price, qty types.Decimal) (float64, bool) {
	if marketValue.IsSet() {
		return marketValue.Float(), true
	}
	if price.IsSet() && qty.IsSet() {
		return price.Float() * qty.Float(), true
	}
	return 0, false
}
