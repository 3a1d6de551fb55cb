package portfolio

import "dca-dashboard/internal/types"

// SnapshotAsCurrent views a historical snapshot as a current position set so
// its breakdown can go through ComputeEnhancedPositions. It is the only place
// open_qty is mapped to open_quantity.
func SnapshotAsCurrent(s types.Snapshot) types.CurrentPositionSet {
	positions := make([]types.CurrentPosition, 0, len(s.Positions))
	for _, p := range s.Positions {
		positions = append(positions, types.CurrentPosition{
			Symbol:       p.Symbol,
			OpenQuantity: p.OpenQty,
			TotalCost:    p.TotalCost,
			AvgCost:      p.AvgCost,
			Price:        p.Price,
			MarketValue:  p.MarketValue,
			UnrealizedPl: p.UnrealizedPl,
		})
	}
	return types.CurrentPositionSet{
		UpdatedAt:          s.Ts,
		BaseCurrency:       s.BaseCurrency,
		TotalQuoteInvested: s.TotalQuoteInvested,
		Positions:          positions,
	}
}
