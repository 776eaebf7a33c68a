package sim

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasharte/arbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestBroadcaster_DeliversInRegistrationOrder(t *testing.T) {
	b := NewBroadcaster(testLogger())

	var got []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		b.Subscribe(func(domain.PriceUpdate) error {
			got = append(got, name)
			return nil
		})
	}

	b.Publish(domain.PriceUpdate{Symbol: "WETH", Price: 2456.78})

	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestBroadcaster_FaultIsolation(t *testing.T) {
	b := NewBroadcaster(testLogger())

	var got []string
	b.Subscribe(func(domain.PriceUpdate) error {
		got = append(got, "erroring")
		return errors.New("subscriber broke")
	})
	b.Subscribe(func(domain.PriceUpdate) error {
		got = append(got, "panicking")
		panic("subscriber blew up")
	})
	b.Subscribe(func(domain.PriceUpdate) error {
		got = append(got, "healthy")
		return nil
	})

	require.NotPanics(t, func() {
		b.Publish(domain.PriceUpdate{Symbol: "DAI", Price: 1.0})
	})

	assert.Equal(t, []string{"erroring", "panicking", "healthy"}, got,
		"a failing subscriber must not block the ones after it")
}

func TestBroadcaster_UnsubscribePreservesOrder(t *testing.T) {
	b := NewBroadcaster(testLogger())

	var got []string
	record := func(name string) Subscriber {
		return func(domain.PriceUpdate) error {
			got = append(got, name)
			return nil
		}
	}

	b.Subscribe(record("a"))
	mid := b.Subscribe(record("b"))
	b.Subscribe(record("c"))

	b.Unsubscribe(mid)
	require.Equal(t, 2, b.Len())

	b.Publish(domain.PriceUpdate{Symbol: "UNI"})
	assert.Equal(t, []string{"a", "c"}, got)

	// Unknown handles are ignored.
	b.Unsubscribe(Subscription{id: 999})
	assert.Equal(t, 2, b.Len())
}

func TestBroadcaster_SameFunctionTwice(t *testing.T) {
	b := NewBroadcaster(testLogger())

	calls := 0
	fn := func(domain.PriceUpdate) error {
		calls++
		return nil
	}
	b.Subscribe(fn)
	b.Subscribe(fn)

	b.Publish(domain.PriceUpdate{Symbol: "WBTC"})
	assert.Equal(t, 2, calls)
}
