// Package config defines the top-level configuration for the arbitrage bot
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by ARBOT_* environment variables.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Aggregator AggregatorConfig `toml:"aggregator"`
	Wallet     WalletConfig     `toml:"wallet"`
	Chain      ChainConfig      `toml:"chain"`
	Sim        SimConfig        `toml:"sim"`
	Redis      RedisConfig      `toml:"redis"`
	Postgres   PostgresConfig   `toml:"postgres"`
	S3         S3Config         `toml:"s3"`
	Recorder   RecorderConfig   `toml:"recorder"`
	Archive    ArchiveConfig    `toml:"archive"`
	Notify     NotifyConfig     `toml:"notify"`
	LogLevel   string           `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	APIKey          string   `toml:"api_key"`
	RateLimit       int      `toml:"rate_limit"`
	RateLimitWindow duration `toml:"rate_limit_window"`
}

// AggregatorConfig holds the aggregator API credentials. A non-empty APIKey
// switches the data layer into live_api mode.
type AggregatorConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// WalletConfig holds Ethereum wallet credentials. Any configured credential
// source switches the data layer into live mode (unless the aggregator is
// also configured, which takes precedence).
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// ChainConfig holds Ethereum node connection parameters.
type ChainConfig struct {
	RPCURL string `toml:"rpc_url"`
}

// SimConfig holds demo-mode market simulation parameters.
type SimConfig struct {
	TickInterval     duration `toml:"tick_interval"`
	Seed             int64    `toml:"seed"`
	EvictProbability float64  `toml:"evict_probability"`
	RegenProbability float64  `toml:"regen_probability"`
}

// RedisConfig holds Redis connection parameters. An empty Addr disables
// the Redis-backed price cache and rate limiter.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
}

// PostgresConfig holds PostgreSQL connection parameters for the opportunity
// history store. An empty DSN and Host disables history persistence.
type PostgresConfig struct {
	DSN          string `toml:"dsn"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Database     string `toml:"database"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	SSLMode      string `toml:"ssl_mode"`
	PoolMaxConns int    `toml:"pool_max_conns"`
	PoolMinConns int    `toml:"pool_min_conns"`
}

// S3Config holds S3-compatible object storage parameters for the snapshot
// archiver. An empty Bucket disables archiving.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// RecorderConfig holds parameters for the opportunity recorder.
type RecorderConfig struct {
	Enabled         bool     `toml:"enabled"`
	SampleInterval  duration `toml:"sample_interval"`
	ProfitThreshold float64  `toml:"profit_threshold"`
}

// ArchiveConfig holds parameters for the S3 snapshot archiver.
type ArchiveConfig struct {
	Enabled       bool     `toml:"enabled"`
	Interval      duration `toml:"interval"`
	RetentionDays int      `toml:"retention_days"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "3s", "1h").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "3s" or "1h".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8000,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:       0, // disabled unless set
			RateLimitWindow: duration{time.Minute},
		},
		Sim: SimConfig{
			TickInterval:     duration{3 * time.Second},
			Seed:             0, // 0 means seed from the clock
			EvictProbability: 0.3,
			RegenProbability: 0.7,
		},
		Redis: RedisConfig{
			Addr:       "",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		Postgres: PostgresConfig{
			Port:         5432,
			Database:     "arbot",
			User:         "postgres",
			SSLMode:      "disable",
			PoolMaxConns: 10,
			PoolMinConns: 2,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			ForcePathStyle: true,
		},
		Recorder: RecorderConfig{
			Enabled:         false,
			SampleInterval:  duration{15 * time.Second},
			ProfitThreshold: 2.5,
		},
		Archive: ArchiveConfig{
			Enabled:       false,
			Interval:      duration{time.Hour},
			RetentionDays: 7,
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server: rate_limit must be >= 0")
	}
	if c.Server.RateLimit > 0 && c.Redis.Addr == "" {
		errs = append(errs, "server: rate_limit requires redis.addr")
	}

	// Aggregator — api_key without base_url is unusable.
	if c.Aggregator.APIKey != "" && c.Aggregator.BaseURL == "" {
		errs = append(errs, "aggregator: base_url is required when api_key is set")
	}

	// Wallet
	if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
		errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
	}

	// Sim
	if c.Sim.TickInterval.Duration <= 0 {
		errs = append(errs, "sim: tick_interval must be positive")
	}
	if c.Sim.EvictProbability < 0 || c.Sim.EvictProbability > 1 {
		errs = append(errs, fmt.Sprintf("sim: evict_probability must be in [0,1], got %g", c.Sim.EvictProbability))
	}
	if c.Sim.RegenProbability < 0 || c.Sim.RegenProbability > 1 {
		errs = append(errs, fmt.Sprintf("sim: regen_probability must be in [0,1], got %g", c.Sim.RegenProbability))
	}

	// Redis
	if c.Redis.Addr != "" && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// Postgres — only validated when configured.
	if c.postgresConfigured() {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// S3 — only validated when archiving is enabled.
	if c.Archive.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archive is enabled")
		}
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when archive is enabled")
		}
		if !c.postgresConfigured() {
			errs = append(errs, "archive: requires postgres history store to be configured")
		}
	}

	// Recorder
	if c.Recorder.Enabled && c.Recorder.SampleInterval.Duration <= 0 {
		errs = append(errs, "recorder: sample_interval must be positive")
	}

	// Notify — token and chat ID go together.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// HasAggregatorCredential reports whether an aggregator API key is
// configured.
func (c *Config) HasAggregatorCredential() bool {
	return c.Aggregator.APIKey != ""
}

// HasTradingCredential reports whether any wallet credential source is
// configured.
func (c *Config) HasTradingCredential() bool {
	return c.Wallet.PrivateKey != "" || c.Wallet.EncryptedKeyPath != ""
}

func (c *Config) postgresConfigured() bool {
	return strings.TrimSpace(c.Postgres.DSN) != "" || c.Postgres.Host != ""
}
