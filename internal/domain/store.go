package domain

import (
	"context"
	"io"
	"time"
)

// OpportunityStore persists opportunity history.
type OpportunityStore interface {
	Insert(ctx context.Context, opp OpportunityRecord, mode Mode) error
	ListRecent(ctx context.Context, limit int) ([]OpportunityRecord, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// PriceCache provides fast access to the latest prices. GetPrices with a
// nil symbol list returns every cached record.
type PriceCache interface {
	SetPrice(ctx context.Context, symbol string, rec PriceRecord, ttl time.Duration) error
	GetPrices(ctx context.Context, symbols []string) (map[string]PriceRecord, error)
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
