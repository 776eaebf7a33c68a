// Package server assembles the HTTP API: route registration, middleware
// chain, and graceful lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lucasharte/arbot/internal/domain"
	"github.com/lucasharte/arbot/internal/server/handler"
	"github.com/lucasharte/arbot/internal/server/middleware"
	"github.com/lucasharte/arbot/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// RateLimiter throttles requests per client IP when non-nil.
	RateLimiter domain.RateLimiter
	RateLimit   int
	RateWindow  time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health  *handler.HealthHandler
	Market  *handler.MarketHandler
	Trading *handler.TradingHandler
	History *handler.HistoryHandler
}

// Server is the headless HTTP + WebSocket API server for the bot dashboard.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (CORS, logging, rate limiting, auth) and attaches
// the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required, registered outside the auth chain
	// would complicate the mux; the auth middleware exempts it instead).
	mux.HandleFunc("GET /health", handlers.Health.HealthCheck)

	// Market data endpoints.
	mux.HandleFunc("GET /api/opportunities", handlers.Market.ListOpportunities)
	mux.HandleFunc("GET /api/prices", handlers.Market.ListPrices)
	mux.HandleFunc("GET /api/stats", handlers.Market.GetStats)

	// Persisted opportunity history.
	mux.HandleFunc("GET /api/opportunities/history", handlers.History.ListRecent)

	// Trading control endpoints.
	mux.HandleFunc("POST /api/start", handlers.Trading.Start)
	mux.HandleFunc("POST /api/stop", handlers.Trading.Stop)
	mux.HandleFunc("POST /api/pause", handlers.Trading.Pause)
	mux.HandleFunc("POST /api/resume", handlers.Trading.Resume)
	mux.HandleFunc("POST /api/emergency-stop", handlers.Trading.EmergencyStop)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain, innermost first.
	var h http.Handler = mux

	h = middleware.Auth(cfg.APIKey)(h)

	if cfg.RateLimiter != nil && cfg.RateLimit > 0 {
		h = middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit, cfg.RateWindow)(h)
	}

	h = middleware.Logging(logger)(h)

	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
