package datasourceobs

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"dca-dashboard/internal/datasource"
	"dca-dashboard/internal/interfaces"
	"dca-dashboard/internal/logger"
	"dca-dashboard/internal/trace"
	"dca-dashboard/internal/types"
)

// observableBotData wraps BotData with logging and tracing
type observableBotData struct {
	data interfaces.BotData
}

var _ interfaces.BotData = (*observableBotData)(nil)

// Wrap wraps a BotData with observability middleware
func Wrap(data interfaces.BotData) interfaces.BotData {
	return &observableBotData{
		data: data,
	}
}

func (o *observableBotData) PositionsCurrent(ctx context.Context) (*types.CurrentPositionSet, error) {
	ctx, span := trace.StartSpan(ctx, "botdata.PositionsCurrent")
	defer span.End()

	start := time.Now()
	set, err := o.data.PositionsCurrent(ctx)
	if err != nil {
		logFailure(ctx, "Failed to read current positions", err,
			"file", datasource.FilePositionsCurrent,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("positions", len(set.Positions)))
	logger.DebugSkip(ctx, 1, "Current positions read",
		"positions", len(set.Positions),
		"updated_at", set.UpdatedAt,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return set, nil
}

func (o *observableBotData) Snapshots(ctx context.Context, opts types.StreamOptions) ([]types.Snapshot, error) {
	ctx, span := trace.StartSpan(ctx, "botdata.Snapshots")
	defer span.End()

	start := time.Now()
	snaps, err := o.data.Snapshots(ctx, opts)
	if err != nil {
		logFailure(ctx, "Failed to read snapshots", err,
			"file", datasource.FileSnapshots,
			"limit", opts.Limit,
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("records", len(snaps)))
	logger.DebugSkip(ctx, 1, "Snapshots read",
		"records", len(snaps),
		"limit", opts.Limit,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return snaps, nil
}

func (o *observableBotData) Transactions(ctx context.Context, symbol string, opts types.StreamOptions) ([]types.TransactionLine, error) {
	ctx, span := trace.StartSpan(ctx, "botdata.Transactions")
	defer span.End()

	start := time.Now()
	txs, err := o.data.Transactions(ctx, symbol, opts)
	if err != nil {
		logFailure(ctx, "Failed to read transactions", err,
			"file", datasource.FileTransactions,
			"symbol", symbol,
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("records", len(txs)), attribute.String("symbol", symbol))
	logger.DebugSkip(ctx, 1, "Transactions read",
		"records", len(txs),
		"symbol", symbol,
		"limit", opts.Limit,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return txs, nil
}

func (o *observableBotData) Prices(ctx context.Context, symbol string, opts types.StreamOptions) ([]types.PriceLine, error) {
	ctx, span := trace.StartSpan(ctx, "botdata.Prices")
	defer span.End()

	start := time.Now()
	prices, err := o.data.Prices(ctx, symbol, opts)
	if err != nil {
		logFailure(ctx, "Failed to read prices", err,
			"file", datasource.FilePrices,
			"symbol", symbol,
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("records", len(prices)), attribute.String("symbol", symbol))
	logger.DebugSkip(ctx, 1, "Prices read",
		"records", len(prices),
		"symbol", symbol,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return prices, nil
}

// logFailure logs a missing singleton at warn level; it is the normal state
// before the bot's first write.
func logFailure(ctx context.Context, msg string, err error, args ...any) {
	if errors.Is(err, datasource.ErrNotFound) {
		logger.WarnSkip(ctx, 2, msg, append([]any{"error", err}, args...)...)
		return
	}
	logger.ErrorWithErrSkip(ctx, 2, msg, err, append([]any{"kind", string(datasource.KindOf(err))}, args...)...)
}
