package backend

import (
	"context"
	"log/slog"
	"time"

	"github.com/lucasharte/arbot/internal/domain"
)

// BalanceReader reports the trading wallet's on-chain balance as a decimal
// ETH string. internal/chain provides the RPC-backed implementation.
type BalanceReader interface {
	Balance(ctx context.Context) (string, error)
	Health(ctx context.Context) domain.ComponentHealth
}

// LegacyDirect wires the facade straight to the bot-internal components.
// Any collaborator may be absent (nil): reads then return zero values and
// trading controls return ErrNotInitialized, never a panic. Without a
// trading credential the backend is read-only and executor stays nil.
type LegacyDirect struct {
	finder    domain.OpportunityFinder // optional
	monitor   domain.PriceMonitor      // optional
	executor  domain.TradeExecutor     // nil unless trading credential present
	balances  BalanceReader            // optional
	startedAt time.Time
	logger    *slog.Logger
}

// NewLegacyDirect creates the live backend over the given collaborators.
func NewLegacyDirect(
	finder domain.OpportunityFinder,
	monitor domain.PriceMonitor,
	executor domain.TradeExecutor,
	balances BalanceReader,
	logger *slog.Logger,
) *LegacyDirect {
	return &LegacyDirect{
		finder:    finder,
		monitor:   monitor,
		executor:  executor,
		balances:  balances,
		startedAt: time.Now(),
		logger:    logger.With(slog.String("component", "legacy_backend")),
	}
}

// Mode reports live.
func (b *LegacyDirect) Mode() domain.Mode { return domain.ModeLive }

// Opportunities reads from the finder; an absent finder yields an empty
// list rather than an error so the read surface stays usable.
func (b *LegacyDirect) Opportunities(ctx context.Context) ([]domain.OpportunityRecord, error) {
	if b.finder == nil {
		return []domain.OpportunityRecord{}, nil
	}
	return b.finder.Opportunities(ctx)
}

// Prices reads from the monitor; an absent monitor yields an empty list.
func (b *LegacyDirect) Prices(ctx context.Context) ([]domain.PriceRecord, error) {
	if b.monitor == nil {
		return []domain.PriceRecord{}, nil
	}
	return b.monitor.Prices(ctx)
}

// Stats shapes whatever the collaborators currently hold. A missing or
// failing collaborator contributes its zero record; Stats itself never
// fails on account of one.
func (b *LegacyDirect) Stats(ctx context.Context) (domain.StatsResponse, error) {
	resp := domain.StatsResponse{Mode: domain.ModeLive}

	if b.executor != nil {
		if trading, err := b.executor.TradingStats(ctx); err == nil {
			resp.Trading = trading
		} else {
			b.logger.WarnContext(ctx, "trading stats unavailable",
				slog.String("error", err.Error()),
			)
		}
		if risk, err := b.executor.RiskStats(ctx); err == nil {
			resp.Risk = risk
		} else {
			b.logger.WarnContext(ctx, "risk stats unavailable",
				slog.String("error", err.Error()),
			)
		}
	}

	if b.monitor != nil {
		resp.PriceMonitor = b.monitor.Stats(ctx)
	}

	if b.balances != nil {
		if bal, err := b.balances.Balance(ctx); err == nil {
			resp.WalletBalance = bal
		} else {
			b.logger.WarnContext(ctx, "wallet balance unavailable",
				slog.String("error", err.Error()),
			)
		}
	}
	if resp.WalletBalance == "" {
		resp.WalletBalance = "0.000000"
	}

	return resp, nil
}

// Health reports each wired collaborator; absent ones are listed as not
// configured without degrading the overall status.
func (b *LegacyDirect) Health(ctx context.Context) domain.Health {
	h := domain.Health{
		Status:     "healthy",
		Timestamp:  time.Now().UnixMilli(),
		Uptime:     time.Since(b.startedAt).Seconds(),
		Components: map[string]domain.ComponentHealth{},
	}

	report := func(name string, comp domain.ComponentHealth, wired bool) {
		if !wired {
			h.Components[name] = domain.ComponentHealth{Status: "not_configured"}
			return
		}
		h.Components[name] = comp
		if comp.Status != "ok" {
			h.Status = "degraded"
		}
	}

	if b.finder != nil {
		report("opportunityFinder", b.finder.Health(ctx), true)
	} else {
		report("opportunityFinder", domain.ComponentHealth{}, false)
	}
	if b.monitor != nil {
		report("priceMonitor", b.monitor.Health(ctx), true)
	} else {
		report("priceMonitor", domain.ComponentHealth{}, false)
	}
	if b.executor != nil {
		report("executor", b.executor.Health(ctx), true)
	} else {
		report("executor", domain.ComponentHealth{}, false)
	}
	if b.balances != nil {
		report("chain", b.balances.Health(ctx), true)
	} else {
		report("chain", domain.ComponentHealth{}, false)
	}

	return h
}

// Trading controls require the executor.
func (b *LegacyDirect) Start(ctx context.Context) error {
	if b.executor == nil {
		return domain.ErrNotInitialized
	}
	return b.executor.Start(ctx)
}

func (b *LegacyDirect) Stop(ctx context.Context) error {
	if b.executor == nil {
		return domain.ErrNotInitialized
	}
	return b.executor.Stop(ctx)
}

func (b *LegacyDirect) Pause(ctx context.Context) error {
	if b.executor == nil {
		return domain.ErrNotInitialized
	}
	return b.executor.Pause(ctx)
}

func (b *LegacyDirect) Resume(ctx context.Context) error {
	if b.executor == nil {
		return domain.ErrNotInitialized
	}
	return b.executor.Resume(ctx)
}

func (b *LegacyDirect) EmergencyStop(ctx context.Context) error {
	if b.executor == nil {
		return domain.ErrNotInitialized
	}
	return b.executor.EmergencyStop(ctx)
}
