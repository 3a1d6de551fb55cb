package portfolio

import (
	"math"

	"dca-dashboard/internal/types"
)

// ComputeEnhancedPositions builds one table row per position, in input
// order. Market value and P/L stay absent unless the position carries
// market_value, or a non-zero price and a positive quantity.
func ComputeEnhancedPositions(current *types.CurrentPositionSet) []types.EnhancedPosition {
	if current == nil || len(current.Positions) == 0 {
		return []types.EnhancedPosition{}
	}

	out := make([]types.EnhancedPosition, 0, len(current.Positions))
	for _, pos := range current.Positions {
		openQty := pos.OpenQuantity.Float()
		totalCost := pos.TotalCost.Float()

		// A zero quantity without avg_cost yields a non-finite average; it
		// renders as a placeholder.
		avgCost := totalCost / openQty
		if pos.AvgCost.IsSet() {
			avgCost = pos.AvgCost.Float()
		}

		row := types.EnhancedPosition{
			Symbol:    pos.Symbol,
			OpenQty:   types.Float(openQty),
			TotalCost: types.Float(totalCost),
			AvgCost:   types.Float(avgCost),
		}

		var currentPrice float64
		if pos.Price.IsSet() {
			currentPrice = pos.Price.Float()
			row.CurrentPrice = types.Some(currentPrice)
		}

		switch {
		case pos.MarketValue.IsSet():
			setValuation(&row, pos.MarketValue.Float(), totalCost)
		case isNonZero(currentPrice) && openQty > 0:
			setValuation(&row, currentPrice*openQty, totalCost)
		}

		out = append(out, row)
	}
	return out
}

func setValuation(row *types.EnhancedPosition, marketValue, totalCost float64) {
	pl := marketValue - totalCost
	var plPercent float64
	if totalCost > 0 {
		plPercent = pl / totalCost * 100
	}
	row.MarketValue = types.Some(marketValue)
	row.UnrealizedPl = types.Some(pl)
	row.UnrealizedPlPercent = types.Some(plPercent)
}

func isNonZero(v float64) bool {
	return v != 0 && !math.IsNaN(v)
}
