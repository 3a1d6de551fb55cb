package portfolio

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dca-dashboard/internal/types"
)

func scenarioSet() *types.CurrentPositionSet {
	return &types.CurrentPositionSet{
		UpdatedAt:          "2024-03-01T10:00:00Z",
		BaseCurrency:       "USDC",
		TotalQuoteInvested: "1000.00",
		Positions: []types.CurrentPosition{
			{Symbol: "BTC", OpenQuantity: "0.01", TotalCost: "500.00", Price: "55000", MarketValue: "550.00"},
			{Symbol: "ETH", OpenQuantity: "1", TotalCost: "500.00"},
		},
	}
}

func TestComputeDashboardKPIsScenario(t *testing.T) {
	kpis := ComputeDashboardKPIs(scenarioSet())
	require.NotNil(t, kpis)

	assert.InDelta(t, 1000, float64(kpis.TotalInvested), 1e-9)
	assert.InDelta(t, 550, float64(kpis.TotalMarketValue), 1e-9)
	assert.InDelta(t, -450, float64(kpis.TotalUnrealizedPl), 1e-9)
	assert.InDelta(t, -45, float64(kpis.TotalUnrealizedPlPercent), 1e-9)
	assert.Equal(t, "USDC", kpis.BaseCurrency)
	assert.Equal(t, "2024-03-01T10:00:00Z", kpis.LastUpdated)
	assert.Equal(t, 2, kpis.PositionCount)
}

func TestComputeDashboardKPIsNil(t *testing.T) {
	assert.Nil(t, ComputeDashboardKPIs(nil))
}

func TestComputeDashboardKPIsPriceFallback(t *testing.T) {
	set := &types.CurrentPositionSet{
		TotalQuoteInvested: "100",
		Positions: []types.CurrentPosition{
			{Symbol: "A", OpenQuantity: "2", TotalCost: "50", MarketValue: "60"},
			{Symbol: "B", OpenQuantity: "4", TotalCost: "50", Price: "10"},
		},
	}
	kpis := ComputeDashboardKPIs(set)
	assert.InDelta(t, 100, float64(kpis.TotalMarketValue), 1e-9)
	assert.InDelta(t, 0, float64(kpis.TotalUnrealizedPl), 1e-9)
}

func TestComputeDashboardKPIsNoMarketData(t *testing.T) {
	set := &types.CurrentPositionSet{
		TotalQuoteInvested: "250",
		Positions:          []types.CurrentPosition{{Symbol: "A", OpenQuantity: "1", TotalCost: "250"}},
	}
	kpis := ComputeDashboardKPIs(set)
	assert.InDelta(t, 250, float64(kpis.TotalMarketValue), 1e-9)
	assert.Zero(t, float64(kpis.TotalUnrealizedPl))
	assert.Zero(t, float64(kpis.TotalUnrealizedPlPercent))
}

func TestComputeDashboardKPIsZeroInvested(t *testing.T) {
	set := &types.CurrentPositionSet{
		TotalQuoteInvested: "0",
		Positions:          []types.CurrentPosition{{Symbol: "A", OpenQuantity: "1", MarketValue: "5"}},
	}
	kpis := ComputeDashboardKPIs(set)
	assert.InDelta(t, 5, float64(kpis.TotalUnrealizedPl), 1e-9)
	assert.Zero(t, float64(kpis.TotalUnrealizedPlPercent))
}

func TestComputeDashboardKPIsIdempotent(t *testing.T) {
	set := scenarioSet()
	assert.Equal(t, ComputeDashboardKPIs(set), ComputeDashboardKPIs(set))
}

func TestComputeDashboardKPIsMalformedDecimal(t *testing.T) {
	set := scenarioSet()
	set.TotalQuoteInvested = "abc"
	kpis := ComputeDashboardKPIs(set)
	assert.True(t, math.IsNaN(float64(kpis.TotalInvested)))

	b, err := json.Marshal(kpis)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"totalInvested":null`)
}
