// Package notify pushes operator alerts for notable opportunities to
// Telegram and Discord webhooks.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lucasharte/arbot/internal/domain"
)

// Sender is one notification channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender.
	Name() string
}

// Notifier dispatches alerts to all registered senders. A failure on one
// sender does not prevent delivery to the rest.
type Notifier struct {
	senders   []Sender
	threshold float64 // minimum profit percentage to alert on
	logger    *slog.Logger
}

// NewNotifier creates a Notifier alerting on opportunities at or above the
// given profit percentage.
func NewNotifier(senders []Sender, threshold float64, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders:   senders,
		threshold: threshold,
		logger:    logger.With(slog.String("component", "notifier")),
	}
}

// NotifyOpportunity alerts on opp when it clears the profit threshold.
func (n *Notifier) NotifyOpportunity(ctx context.Context, opp domain.OpportunityRecord) error {
	if opp.ProfitPercentage < n.threshold {
		return nil
	}

	title := fmt.Sprintf("Arbitrage opportunity %.2f%%", opp.ProfitPercentage)
	message := fmt.Sprintf(
		"%s -> %s via %s/%s\namountIn %s, expected profit %s ETH, gas %s",
		opp.TokenA, opp.TokenB,
		opp.VenueA.Name, opp.VenueB.Name,
		opp.AmountIn, opp.ExpectedProfit, opp.GasEstimate,
	)
	return n.dispatch(ctx, title, message)
}

func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
