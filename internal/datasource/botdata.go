package datasource

import (
	"context"

	"dca-dashboard/internal/interfaces"
	"dca-dashboard/internal/types"
)

// Resource names under the data base path.
const (
	FilePositionsCurrent = "positions_current.json"
	FileSnapshots        = "snapshots.ndjson"
	FileTransactions     = "transactions.ndjson"
	FilePrices           = "prices.ndjson"
)

type botData struct {
	reader *Reader
}

var _ interfaces.BotData = (*botData)(nil)

// NewBotData returns the HTTP-backed BotData implementation.
func NewBotData(reader *Reader) interfaces.BotData {
	return &botData{reader: reader}
}

func (b *botData) PositionsCurrent(ctx context.Context) (*types.CurrentPositionSet, error) {
	set, err := FetchJSON[types.CurrentPositionSet](ctx, b.reader, FilePositionsCurrent)
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (b *botData) Snapshots(ctx context.Context, opts types.StreamOptions) ([]types.Snapshot, error) {
	return FetchNDJSON[types.Snapshot](ctx, b.reader, FileSnapshots, opts)
}

func (b *botData) Transactions(ctx context.Context, symbol string, opts types.StreamOptions) ([]types.TransactionLine, error) {
	if !Exists(ctx, b.reader, FileTransactions) {
		return []types.TransactionLine{}, nil
	}
	txs, err := FetchNDJSON[types.TransactionLine](ctx, b.reader, FileTransactions, opts)
	if err != nil {
		return nil, err
	}
	return filterBySymbol(txs, symbol, func(t types.TransactionLine) string { return t.Symbol }), nil
}

func (b *botData) Prices(ctx context.Context, symbol string, opts types.StreamOptions) ([]types.PriceLine, error) {
	if !Exists(ctx, b.reader, FilePrices) {
		return []types.PriceLine{}, nil
	}
	prices, err := FetchNDJSON[types.PriceLine](ctx, b.reader, FilePrices, opts)
	if err != nil {
		return nil, err
	}
	return filterBySymbol(prices, symbol, func(p types.PriceLine) string { return p.Symbol }), nil
}

func filterBySymbol[T any](in []T, symbol string, symbolOf func(T) string) []T {
	if symbol == "" {
		return in
	}
	out := make([]T, 0, len(in))
	for _, rec := range in {
		if symbolOf(rec) == symbol {
			out = append(out, rec)
		}
	}
	return out
}
