// Package aggregator is the REST client for the external market aggregation
// service that backs the live_api mode.
package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lucasharte/arbot/internal/domain"
)

// Client talks to the aggregation service. All payloads are JSON in the
// same shape this process itself serves, so the live_api backend can pass
// them through unmodified.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an aggregator client.
//
// baseURL is the service root, e.g. "https://agg.example.com". apiKey is
// sent as a Bearer token on every request.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Opportunities returns the aggregator's current opportunity set.
func (c *Client) Opportunities(ctx context.Context) ([]domain.OpportunityRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/opportunities", nil)
	if err != nil {
		return nil, fmt.Errorf("aggregator: get opportunities: %w", err)
	}

	var payload struct {
		Opportunities []domain.OpportunityRecord `json:"opportunities"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("aggregator: decode opportunities: %w", err)
	}
	return payload.Opportunities, nil
}

// Prices returns the aggregator's current price table.
func (c *Client) Prices(ctx context.Context) ([]domain.PriceRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/prices", nil)
	if err != nil {
		return nil, fmt.Errorf("aggregator: get prices: %w", err)
	}

	var payload struct {
		Prices []domain.PriceRecord `json:"prices"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("aggregator: decode prices: %w", err)
	}
	return payload.Prices, nil
}

// Stats returns the aggregator's stats response.
func (c *Client) Stats(ctx context.Context) (domain.StatsResponse, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/stats", nil)
	if err != nil {
		return domain.StatsResponse{}, fmt.Errorf("aggregator: get stats: %w", err)
	}

	var stats domain.StatsResponse
	if err := json.Unmarshal(body, &stats); err != nil {
		return domain.StatsResponse{}, fmt.Errorf("aggregator: decode stats: %w", err)
	}
	return stats, nil
}

// Health returns the aggregator's health report.
func (c *Client) Health(ctx context.Context) (domain.Health, error) {
	body, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return domain.Health{}, fmt.Errorf("aggregator: get health: %w", err)
	}

	var h domain.Health
	if err := json.Unmarshal(body, &h); err != nil {
		return domain.Health{}, fmt.Errorf("aggregator: decode health: %w", err)
	}
	return h, nil
}

// Trading controls map to the aggregator's POST endpoints.
func (c *Client) Start(ctx context.Context) error  { return c.control(ctx, "start") }
func (c *Client) Stop(ctx context.Context) error   { return c.control(ctx, "stop") }
func (c *Client) Pause(ctx context.Context) error  { return c.control(ctx, "pause") }
func (c *Client) Resume(ctx context.Context) error { return c.control(ctx, "resume") }
func (c *Client) EmergencyStop(ctx context.Context) error {
	return c.control(ctx, "emergency-stop")
}

func (c *Client) control(ctx context.Context, action string) error {
	if _, err := c.do(ctx, http.MethodPost, "/api/"+action, nil); err != nil {
		return fmt.Errorf("aggregator: %s: %w", action, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode == http.StatusBadRequest:
		return nil, domain.ErrNotInitialized
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
