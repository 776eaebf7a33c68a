// Package app provides the top-level application lifecycle for the arbitrage
// bot API. It wires together the infrastructure (caches, stores, blob
// storage, chain access, notifications), selects the data backend from the
// configured credentials, and runs the HTTP server alongside the background
// workers until shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lucasharte/arbot/internal/backend"
	"github.com/lucasharte/arbot/internal/config"
	"github.com/lucasharte/arbot/internal/domain"
	"github.com/lucasharte/arbot/internal/server"
	"github.com/lucasharte/arbot/internal/server/handler"
	"github.com/lucasharte/arbot/internal/server/ws"
	"github.com/lucasharte/arbot/internal/service"
	"github.com/lucasharte/arbot/internal/sim"
)

// shutdownTimeout bounds how long in-flight requests may run on shutdown.
const shutdownTimeout = 10 * time.Second

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, selects the data
// backend, starts the HTTP server and background workers, and blocks until
// the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	mode := backend.Select(a.cfg.HasAggregatorCredential(), a.cfg.HasTradingCredential())
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", string(mode)),
		slog.String("log_level", a.cfg.LogLevel),
	)

	g, ctx := errgroup.WithContext(ctx)

	var be domain.Backend
	var broadcaster *sim.Broadcaster
	var simState *sim.MarketState

	switch mode {
	case domain.ModeLiveAPI:
		be = backend.NewLiveAggregated(deps.Aggregator, deps.PriceCache, a.logger)

	case domain.ModeLive:
		var balances backend.BalanceReader
		if deps.Chain != nil {
			balances = deps.Chain
		}
		be = backend.NewLegacyDirect(nil, nil, nil, balances, a.logger)

	default: // demo
		seed := a.cfg.Sim.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		broadcaster = sim.NewBroadcaster(a.logger)
		state := sim.NewMarketState(sim.Config{
			EvictProbability: a.cfg.Sim.EvictProbability,
			RegenProbability: a.cfg.Sim.RegenProbability,
		}, rand.New(rand.NewSource(seed)), broadcaster)
		if err := state.Initialize(domain.DefaultCatalog()); err != nil {
			return fmt.Errorf("app: initialize market state: %w", err)
		}
		simState = state

		loop := sim.NewLoop(state, a.cfg.Sim.TickInterval.Duration, a.logger)
		g.Go(func() error {
			return loop.Run(ctx)
		})

		// The stats backend draws from its own source so the tick loop's
		// sequence stays deterministic for a fixed seed.
		be = backend.NewSimulated(state, rand.New(rand.NewSource(seed+1)))
	}

	// WebSocket hub, fed in-process from the simulated market in demo mode.
	hub := ws.NewHub(mode, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})
	if broadcaster != nil {
		broadcaster.Subscribe(hub.PublishPrice)
	}
	if simState != nil {
		simState.OnOpportunityRefresh(func(opps []domain.OpportunityRecord) {
			if err := hub.PublishOpportunities(opps); err != nil {
				a.logger.Warn("publish opportunity refresh",
					slog.String("error", err.Error()),
				)
			}
		})
	}

	// Background workers.
	if a.cfg.Recorder.Enabled && (deps.HistoryStore != nil || deps.Notifier != nil) {
		rec := service.NewRecorder(be, deps.HistoryStore, deps.Notifier,
			a.cfg.Recorder.SampleInterval.Duration, a.logger)
		g.Go(func() error {
			return rec.Run(ctx)
		})
	}
	if a.cfg.Archive.Enabled && deps.HistoryStore != nil && deps.BlobWriter != nil {
		arch := service.NewArchiver(deps.HistoryStore, deps.BlobWriter,
			a.cfg.Archive.Interval.Duration,
			time.Duration(a.cfg.Archive.RetentionDays)*24*time.Hour,
			a.logger)
		g.Go(func() error {
			return arch.Run(ctx)
		})
	}

	// HTTP server.
	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimiter: deps.RateLimiter,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateLimitWindow.Duration,
	}, server.Handlers{
		Health:  handler.NewHealthHandler(be),
		Market:  handler.NewMarketHandler(be, a.logger),
		Trading: handler.NewTradingHandler(be, a.logger),
		History: handler.NewHistoryHandler(deps.HistoryStore, a.logger),
	}, hub, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
