package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"dca-dashboard/internal/api"
	"dca-dashboard/internal/datasource"
	"dca-dashboard/internal/datasource/datasourceobs"
	"dca-dashboard/internal/interfaces"
	"dca-dashboard/internal/logger"
	"dca-dashboard/internal/store"
	"dca-dashboard/internal/trace"
)

// initializeSystem initializes logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		logger.Warn(context.Background(), "Failed to initialize tracer", "error", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := store.ConfigPath()
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeBotData builds the bot data reader with observability
func initializeBotData(ctx context.Context, cfg *store.Config) interfaces.BotData {
	client := api.NewClient(
		api.WithBaseURL(cfg.DataURL()),
		api.WithTimeout(cfg.Data.RequestTimeout),
		api.WithLogging(cfg.Data.LogRequests),
	)

	if cfg.Server.DataDir != "" {
		logger.Info(ctx, "Serving bot data directory", "dir", cfg.Server.DataDir)
	}
	logger.Info(ctx, "Reading bot data", "base_url", client.BaseURL())

	// Wrap with observability middleware
	return datasourceobs.Wrap(datasource.NewBotData(datasource.NewReader(client)))
}
