package types

import "time"

// Records below mirror the files written by the DCA bot. Field names follow
// the producers exactly: positions_current.json uses open_quantity while
// snapshots.ndjson uses open_qty. Keep them as separate types.

// CurrentPosition is one entry of positions_current.json.
type CurrentPosition struct {
	Symbol       string  `json:"symbol"`
	OpenQuantity Decimal `json:"open_quantity"`
	TotalCost    Decimal `json:"total_cost"`
	AvgCost      Decimal `json:"avg_cost,omitempty"`
	Price        Decimal `json:"price,omitempty"`
	MarketValue  Decimal `json:"market_value,omitempty"`
	UnrealizedPl Decimal `json:"unrealized_pl,omitempty"`
}

// CurrentPositionSet is the bot's live book. The producer overwrites the
// file in place, so at most one exists at a time.
type CurrentPositionSet struct {
	UpdatedAt          string            `json:"updated_at"`
	BaseCurrency       string            `json:"base_currency"`
	TotalQuoteInvested Decimal           `json:"total_quote_invested"`
	Positions          []CurrentPosition `json:"positions"`
}

type SnapshotPosition struct {
	Symbol       string  `json:"symbol"`
	OpenQty      Decimal `json:"open_qty"`
	TotalCost    Decimal `json:"total_cost"`
	AvgCost      Decimal `json:"avg_cost"`
	Price        Decimal `json:"price"`
	MarketValue  Decimal `json:"market_value"`
	UnrealizedPl Decimal `json:"unrealized_pl"`
}

// Snapshot is one line of snapshots.ndjson: the full portfolio at Ts.
type Snapshot struct {
	Ts                 string             `json:"ts"`
	BaseCurrency       string             `json:"base_currency"`
	TotalQuoteInvested Decimal            `json:"total_quote_invested"`
	TotalMarketValue   Decimal            `json:"total_market_value"`
	TotalUnrealizedPl  Decimal            `json:"total_unrealized_pl"`
	Positions          []SnapshotPosition `json:"positions"`
}

type PriceLine struct {
	Ts          string  `json:"ts"`
	Symbol      string  `json:"symbol"`
	Price       Decimal `json:"price"`
	Source      string  `json:"source"`
	IterationID string  `json:"iteration_id"`
}

// Side values used by TransactionLine.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

type TransactionLine struct {
	Ts               string  `json:"ts"`
	Exchange         string  `json:"exchange"`
	Symbol           string  `json:"symbol"`
	Side             string  `json:"side"`
	Price            Decimal `json:"price"`
	Qty              Decimal `json:"qty"`
	QuoteSpent       Decimal `json:"quote_spent"`
	OrderType        string  `json:"order_type"`
	IterationID      string  `json:"iteration_id"`
	FiltersValidated bool    `json:"filters_validated"`
	Notes            string  `json:"notes"`
}

// IterationLine describes one bot iteration. The bot writes these but no
// page reads them yet.
type IterationLine struct {
	IterationID  string `json:"iteration_id"`
	StartedAt    string `json:"started_at"`
	EndedAt      string `json:"ended_at"`
	AssetsTotal  int    `json:"assets_total"`
	BuysExecuted int    `json:"buys_executed"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
}

// StreamOptions narrows an NDJSON read. Zero values mean "no constraint".
type StreamOptions struct {
	Limit int
	From  *time.Time
	To    *time.Time
}
