package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lucasharte/arbot/internal/domain"
)

// PriceCache implements domain.PriceCache. Each record is stored as JSON at
// "price:{symbol}" with a per-key TTL, so stale quotes age out on their own
// when the aggregator goes quiet.
type PriceCache struct {
	rdb *redis.Client
}

// NewPriceCache creates a PriceCache backed by the given Client.
func NewPriceCache(c *Client) *PriceCache {
	return &PriceCache{rdb: c.Underlying()}
}

func priceKey(symbol string) string {
	return "price:" + symbol
}

// SetPrice stores the latest record for a symbol with the given TTL.
func (pc *PriceCache) SetPrice(ctx context.Context, symbol string, rec domain.PriceRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: encode price %s: %w", symbol, err)
	}
	if err := pc.rdb.Set(ctx, priceKey(symbol), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set price %s: %w", symbol, err)
	}
	return nil
}

// GetPrices retrieves records for the given symbols using a pipeline; keys
// that do not exist are silently omitted. A nil symbol list scans for every
// cached price.
func (pc *PriceCache) GetPrices(ctx context.Context, symbols []string) (map[string]domain.PriceRecord, error) {
	if symbols == nil {
		var err error
		symbols, err = pc.scanSymbols(ctx)
		if err != nil {
			return nil, err
		}
	}
	if len(symbols) == 0 {
		return map[string]domain.PriceRecord{}, nil
	}

	pipe := pc.rdb.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(symbols))
	for _, sym := range symbols {
		cmds[sym] = pipe.Get(ctx, priceKey(sym))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: get prices pipeline: %w", err)
	}

	out := make(map[string]domain.PriceRecord, len(symbols))
	for sym, cmd := range cmds {
		data, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis: get price %s: %w", sym, err)
		}
		var rec domain.PriceRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("redis: decode price %s: %w", sym, err)
		}
		out[sym] = rec
	}
	return out, nil
}

func (pc *PriceCache) scanSymbols(ctx context.Context) ([]string, error) {
	var symbols []string
	iter := pc.rdb.Scan(ctx, 0, priceKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		symbols = append(symbols, key[len("price:"):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis: scan prices: %w", err)
	}
	return symbols, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)
