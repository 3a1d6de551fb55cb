package types

// KPISummary holds the dashboard headline figures.
type KPISummary struct {
	TotalInvested            Float  `json:"totalInvested"`
	TotalMarketValue         Float  `json:"totalMarketValue"`
	TotalUnrealizedPl        Float  `json:"totalUnrealizedPl"`
	TotalUnrealizedPlPercent Float  `json:"totalUnrealizedPlPercent"`
	BaseCurrency             string `json:"baseCurrency"`
	LastUpdated              string `json:"lastUpdated"`
	PositionCount            int    `json:"positionCount"`
}

// EnhancedPosition is one row of the positions table.
type EnhancedPosition struct {
	Symbol              string   `json:"symbol"`
	OpenQty             Float    `json:"openQty"`
	TotalCost           Float    `json:"totalCost"`
	AvgCost             Float    `json:"avgCost"`
	CurrentPrice        OptFloat `json:"currentPrice"`
	MarketValue         OptFloat `json:"marketValue"`
	UnrealizedPl        OptFloat `json:"unrealizedPl"`
	UnrealizedPlPercent OptFloat `json:"unrealizedPlPercent"`
}

// ChartPoint is one point of a portfolio or per-symbol series.
// Timestamp is epoch milliseconds.
type ChartPoint struct {
	Ts                string `json:"ts"`
	Timestamp         int64  `json:"timestamp"`
	TotalInvested     Float  `json:"totalInvested"`
	TotalMarketValue  Float  `json:"totalMarketValue"`
	TotalUnrealizedPl Float  `json:"totalUnrealizedPl"`
}

type SymbolSeries struct {
	Symbol string       `json:"symbol"`
	Data   []ChartPoint `json:"data"`
}

type ChartSeries struct {
	Portfolio []ChartPoint   `json:"portfolioData"`
	Symbols   []SymbolSeries `json:"symbolData"`
}

// TimeRange selects a trailing window. Hours == 0 means everything.
type TimeRange struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Hours int    `json:"hours,omitempty"`
}

// LedgerRow aggregates the transactions of one symbol.
type LedgerRow struct {
	Symbol       string `json:"symbol"`
	Trades       int    `json:"trades"`
	BuyQty       Float  `json:"buyQty"`
	BuyQuote     Float  `json:"buyQuote"`
	SellQty      Float  `json:"sellQty"`
	SellQuote    Float  `json:"sellQuote"`
	AvgBuyPrice  Float  `json:"avgBuyPrice"`
	AvgSellPrice Float  `json:"avgSellPrice"`
	RealizedPl   Float  `json:"realizedPl"`
}
