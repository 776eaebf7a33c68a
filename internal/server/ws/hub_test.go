package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasharte/arbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_StreamsEventsToClient(t *testing.T) {
	h := NewHub(domain.ModeDemo, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	conn := dialHub(t, h)

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.clients) == 1
	}, 2*time.Second, 10*time.Millisecond, "client never registered")

	require.NoError(t, h.PublishPrice(domain.PriceUpdate{
		Symbol:    "WETH",
		Price:     3000.12,
		Timestamp: 1,
	}))
	require.NoError(t, h.PublishOpportunities([]domain.OpportunityRecord{
		{ID: "arb-1", ProfitPercentage: 1.7},
	}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first, second event
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, &first))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, &second))

	assert.Equal(t, "price_update", first.Type)
	assert.Equal(t, "demo", first.Mode)
	assert.Equal(t, "opportunities", second.Type)
	assert.Equal(t, "demo", second.Mode)
}

func TestHub_ShutdownRejectsLateClients(t *testing.T) {
	h := NewHub(domain.ModeLiveAPI, testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	runDone := make(chan error, 1)
	go func() { runDone <- h.Run(ctx) }()
	cancel()

	select {
	case err := <-runDone:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	select {
	case <-h.done:
	default:
		t.Fatal("done channel must be closed once Run exits")
	}

	// A connection arriving after shutdown is closed instead of blocking
	// forever on registration.
	conn := dialHub(t, h)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
