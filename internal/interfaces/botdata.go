package interfaces

import (
	"context"

	"dca-dashboard/internal/types"
)

// BotData reads the files the DCA bot produces.
type BotData interface {
	// PositionsCurrent reads positions_current.json. A missing file is an
	// error (datasource.ErrNotFound).
	PositionsCurrent(ctx context.Context) (*types.CurrentPositionSet, error)

	// Snapshots reads snapshots.ndjson in file order. A missing file yields
	// no snapshots.
	Snapshots(ctx context.Context, opts types.StreamOptions) ([]types.Snapshot, error)

	// Transactions reads transactions.ndjson, keeping only symbol when it is
	// non-empty. The limit applies before the symbol filter.
	Transactions(ctx context.Context, symbol string, opts types.StreamOptions) ([]types.TransactionLine, error)

	// Prices reads prices.ndjson with the same rules as Transactions.
	Prices(ctx context.Context, symbol string, opts types.StreamOptions) ([]types.PriceLine, error)
}
