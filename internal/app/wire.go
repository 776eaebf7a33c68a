package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/lucasharte/arbot/internal/blob/s3"
	"github.com/lucasharte/arbot/internal/cache/redis"
	"github.com/lucasharte/arbot/internal/chain"
	"github.com/lucasharte/arbot/internal/config"
	"github.com/lucasharte/arbot/internal/crypto"
	"github.com/lucasharte/arbot/internal/domain"
	"github.com/lucasharte/arbot/internal/notify"
	"github.com/lucasharte/arbot/internal/platform/aggregator"
	"github.com/lucasharte/arbot/internal/store/postgres"
)

// Dependencies bundles every optional infrastructure dependency the data
// layer can use. Nil fields mean the corresponding feature is disabled by
// configuration; the backends and services degrade gracefully around them.
type Dependencies struct {
	// Caches
	PriceCache  domain.PriceCache
	RateLimiter domain.RateLimiter

	// Stores
	HistoryStore domain.OpportunityStore

	// Blob storage
	BlobWriter domain.BlobWriter

	// Live-mode collaborators
	Aggregator *aggregator.Client
	Chain      *chain.Client

	// Notifications
	Notifier *notify.Notifier
}

// Wire constructs concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Redis (price cache + API rate limiter) ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.PriceCache = redis.NewPriceCache(redisClient)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	// --- PostgreSQL (opportunity history) ---
	if cfg.Postgres.DSN != "" || cfg.Postgres.Host != "" {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if err := pgClient.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres schema: %w", err)
		}

		deps.HistoryStore = postgres.NewOpportunityStore(pgClient.Pool())
	}

	// --- S3 blob storage (snapshot archive) ---
	if cfg.Archive.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.BlobWriter = s3blob.NewWriter(s3Client)
	}

	// --- Aggregator API client ---
	if cfg.HasAggregatorCredential() {
		deps.Aggregator = aggregator.NewClient(cfg.Aggregator.BaseURL, cfg.Aggregator.APIKey)
	}

	// --- Ethereum node (wallet balance reads) ---
	if cfg.HasTradingCredential() && cfg.Chain.RPCURL != "" {
		key, err := crypto.LoadKey(crypto.KeyConfig{
			RawPrivateKey:    cfg.Wallet.PrivateKey,
			EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      cfg.Wallet.KeyPassword,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: wallet key: %w", err)
		}
		addr, err := crypto.AddressOf(key)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: wallet address: %w", err)
		}

		chainClient, err := chain.Dial(ctx, cfg.Chain.RPCURL, addr)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: chain: %w", err)
		}
		closers = append(closers, chainClient.Close)
		deps.Chain = chainClient
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Recorder.ProfitThreshold, logger)
	}

	return deps, cleanup, nil
}
