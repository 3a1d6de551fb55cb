package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"dca-dashboard/internal/logger"
	"dca-dashboard/internal/metrics"
	"dca-dashboard/internal/store"
)

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	app    *App
	cfg    *store.Config
	views  *renderer
}

// New creates a new HTTP server
func New(app *App, cfg *store.Config) (*Server, error) {
	views, err := newRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		app:    app,
		cfg:    cfg,
		views:  views,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())

	// Pages
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/charts", s.handleCharts)
	s.router.Get("/transactions", s.handleTransactions)
	s.router.Post("/refresh/{page}", s.handleRefresh)
	s.router.Post("/theme", s.handleTheme)
	s.router.NotFound(s.handleNotFound)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		origins := s.cfg.Server.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/dashboard", s.handleAPIDashboard)
		r.Get("/charts", s.handleAPICharts)
		r.Get("/symbols", s.handleAPISymbols)
		r.Get("/transactions", s.handleAPITransactions)
		r.Get("/transactions.csv", s.handleAPITransactionsCSV)
		r.Get("/prices", s.handleAPIPrices)
	})

	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFiles()))))

	// Local bot directory, for a dashboard that reads its own /data.
	if dir := s.cfg.Server.DataDir; dir != "" {
		s.router.Handle("/data/*", http.StripPrefix("/data/", http.FileServer(http.Dir(dir))))
	}
}

// Serve accepts connections on ln until Shutdown. The listener is bound by
// the caller so that fetches against the dashboard's own /data/ route can be
// issued before Serve runs.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger.Info(ctx, "Starting HTTP server", "addr", ln.Addr().String(), "data_url", s.cfg.DataURL())
	return s.server.Serve(ln)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info(ctx, "Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Debug(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
