package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dca-dashboard/internal/logger"
	"dca-dashboard/internal/store"
	"dca-dashboard/internal/trace"
	"dca-dashboard/internal/web"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	must(run(ctx, cfg, nil))

	if err := trace.Shutdown(context.Background()); err != nil {
		logger.ErrorWithErr(context.Background(), "Failed to shut down tracer", err)
	}
}

// run serves the dashboard until ctx ends. started, when set, receives the
// App once its first fetches are issued.
func run(ctx context.Context, cfg *store.Config, started chan<- *web.App) error {
	// Bind before the first fetch: by default bot files are read from this
	// server's own /data/ route.
	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}
	// Resolve a ":0" port so the default data origin points at this listener.
	if host, _, err := net.SplitHostPort(cfg.Server.Addr); err == nil {
		if _, port, err := net.SplitHostPort(ln.Addr().String()); err == nil {
			cfg.Server.Addr = net.JoinHostPort(host, port)
		}
	}

	app := web.NewApp(initializeBotData(ctx, cfg), cfg)
	srv, err := web.New(app, cfg)
	if err != nil {
		ln.Close()
		return err
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.Serve(ctx, ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	if err := app.Start(ctx); err != nil {
		_ = srv.Shutdown(context.Background())
		return err
	}
	logger.Info(ctx, "Dashboard started", "addr", cfg.Server.Addr)
	if started != nil {
		started <- app
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errc:
		logger.ErrorWithErr(ctx, "HTTP server failed", serveErr)
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Refresh.FetchTimeout+cfg.Server.ShutdownTimeout)
	defer done()

	app.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(shutdownCtx, "Failed to shut down HTTP server", err)
	}
	logger.Info(shutdownCtx, "Dashboard stopped")
	return serveErr
}
