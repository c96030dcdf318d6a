// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/personalize/internal/cacheinvalidate"
	"github.com/tomtom215/personalize/internal/dispatch"
	"github.com/tomtom215/personalize/internal/events"
	"github.com/tomtom215/personalize/internal/logging"
	"github.com/tomtom215/personalize/internal/purchases"
	"github.com/tomtom215/personalize/internal/recommend"
	"github.com/tomtom215/personalize/internal/report"
)

// FromDateLayout is the format of source.from_date.
const FromDateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	Recommend RecommendConfig `koanf:"recommend"`
	Snapshot  SnapshotConfig  `koanf:"snapshot"`
	Source    SourceConfig    `koanf:"source"`
	Store     StoreConfig     `koanf:"store"`
	Cache     CacheConfig     `koanf:"cache"`
	Events    EventsConfig    `koanf:"events"`
	Report    ReportConfig    `koanf:"report"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Server    ServerConfig    `koanf:"server"`
	Schedule  ScheduleConfig  `koanf:"schedule"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// RecommendConfig configures scoring.
type RecommendConfig struct {
	// TopN is the number of partners kept per product.
	// Default: 5
	TopN int `koanf:"top_n" validate:"gte=1"`

	// HalfLifeDays is the purchase age at which its weight halves.
	// Default: 30
	HalfLifeDays float64 `koanf:"half_life_days" validate:"gt=0"`

	// ExcludedProductIDs are removed from inputs and results.
	ExcludedProductIDs []int `koanf:"excluded_product_ids"`

	// Weights of the normalized count, lift and cosine metrics. Must sum to 1.
	Weights WeightsConfig `koanf:"weights"`
}

// WeightsConfig is the metric blend.
type WeightsConfig struct {
	Count  float64 `koanf:"count" validate:"gte=0,lte=1"`
	Lift   float64 `koanf:"lift" validate:"gte=0,lte=1"`
	Cosine float64 `koanf:"cosine" validate:"gte=0,lte=1"`
}

// SnapshotConfig locates the snapshot file.
type SnapshotConfig struct {
	// Path of the snapshot file. Default: personalize_snapshot.txt
	Path string `koanf:"path" validate:"required"`
}

// SourceConfig configures the purchase history source.
type SourceConfig struct {
	// Driver is duckdb or postgres.
	Driver string `koanf:"driver" validate:"oneof=duckdb postgres"`

	// DSN is the connection string; for DuckDB a file path or empty for in-memory.
	DSN string `koanf:"dsn"`

	// Query replaces the built-in purchase query.
	Query string `koanf:"query"`

	// Status selects orders. Default: V
	Status string `koanf:"status" validate:"required"`

	// FromDate, YYYY-MM-DD, drops orders last changed before it.
	FromDate string `koanf:"from_date" validate:"omitempty,datetime=2006-01-02"`

	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gte=0"`

	// UseSecretsManager reads the DSN from SecretARN instead of DSN.
	UseSecretsManager bool   `koanf:"use_secrets_manager"`
	SecretARN         string `koanf:"secret_arn"`
	SecretKey         string `koanf:"secret_key"`
	SecretRegion      string `koanf:"secret_region"`
}

// StoreConfig selects the recommendation store.
type StoreConfig struct {
	// Backend is dynamodb or badger.
	Backend string `koanf:"backend" validate:"oneof=dynamodb badger"`

	DynamoDB DynamoDBConfig `koanf:"dynamodb"`
	Badger   BadgerConfig   `koanf:"badger"`

	// WriteRate limits store writes per second; 0 is unlimited.
	WriteRate float64 `koanf:"write_rate" validate:"gte=0"`

	// WriteBurst is the limiter bucket size.
	WriteBurst int `koanf:"write_burst" validate:"gte=1"`
}

// DynamoDBConfig configures the DynamoDB backend.
type DynamoDBConfig struct {
	TableName string `koanf:"table_name"`
	Region    string `koanf:"region"`

	// Endpoint overrides the service endpoint, e.g. DynamoDB Local.
	Endpoint string `koanf:"endpoint" validate:"omitempty,url"`
}

// BadgerConfig configures the embedded store.
type BadgerConfig struct {
	Path string `koanf:"path"`
}

// CacheConfig configures cache invalidation. No servers disables it.
type CacheConfig struct {
	Servers        []string      `koanf:"servers" validate:"dive,url"`
	AuthPath       string        `koanf:"auth_path"`
	InvalidatePath string        `koanf:"invalidate_path"`
	Username       string        `koanf:"username"`
	Password       string        `koanf:"password"`
	Timeout        time.Duration `koanf:"timeout" validate:"gt=0"`

	// KeyRegion and KeyTemplate derive the cache key of a product; the
	// template takes the product id through a single %d.
	KeyRegion   string `koanf:"key_region" validate:"required"`
	KeyTemplate string `koanf:"key_template" validate:"required"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the per-server circuit breaker.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests" validate:"gte=1"`
	Interval     time.Duration `koanf:"interval" validate:"gte=0"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MinRequests  uint32        `koanf:"min_requests" validate:"gte=1"`
	FailureRatio float64       `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// EventsConfig configures change event publication.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	NATSURL string `koanf:"nats_url"`
	Subject string `koanf:"subject" validate:"required"`
}

// ReportConfig configures report delivery.
type ReportConfig struct {
	// Provider is ses, smtp, resend or none.
	Provider  string `koanf:"provider" validate:"oneof=ses smtp resend none"`
	Recipient string `koanf:"recipient"`
	From      string `koanf:"from"`

	SES    SESConfig    `koanf:"ses"`
	SMTP   SMTPConfig   `koanf:"smtp"`
	Resend ResendConfig `koanf:"resend"`
}

// SESConfig configures Amazon SES delivery.
type SESConfig struct {
	Region string `koanf:"region"`
}

// SMTPConfig configures SMTP delivery.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"gte=1,lte=65535"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	UseTLS   bool   `koanf:"use_tls"`
}

// ResendConfig configures Resend delivery.
type ResendConfig struct {
	APIKey string `koanf:"api_key"`
}

// MetricsConfig configures metric export for one-shot runs.
type MetricsConfig struct {
	// PushgatewayURL, when set, receives metrics at the end of `run`.
	PushgatewayURL string `koanf:"pushgateway_url" validate:"omitempty,url"`
	Job            string `koanf:"job" validate:"required"`
}

// ServerConfig configures the status HTTP server of `serve`.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ScheduleConfig configures scheduled runs in `serve`.
type ScheduleConfig struct {
	Interval     time.Duration `koanf:"interval" validate:"gt=0"`
	RunOnStartup bool          `koanf:"run_on_startup"`

	// RunTimeout bounds a single run.
	RunTimeout time.Duration `koanf:"run_timeout" validate:"gt=0"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// RecommendConfig converts to the engine configuration.
func (c *Config) RecommendConfig() recommend.Config {
	return recommend.Config{
		TopN:               c.Recommend.TopN,
		HalfLifeDays:       c.Recommend.HalfLifeDays,
		ExcludedProductIDs: c.Recommend.ExcludedProductIDs,
		Weights: recommend.ScoreWeights{
			Count:  c.Recommend.Weights.Count,
			Lift:   c.Recommend.Weights.Lift,
			Cosine: c.Recommend.Weights.Cosine,
		},
	}
}

// PurchaseOptions converts to purchase query options.
func (c *Config) PurchaseOptions() (purchases.Options, error) {
	opts := purchases.Options{
		Status:  c.Source.Status,
		Query:   c.Source.Query,
		Timeout: c.Source.QueryTimeout,
	}
	if c.Source.FromDate != "" {
		from, err := time.Parse(FromDateLayout, c.Source.FromDate)
		if err != nil {
			return opts, fmt.Errorf("source.from_date: %w", err)
		}
		opts.FromDate = from
	}
	return opts, nil
}

// DispatchConfig converts to the dispatcher configuration.
func (c *Config) DispatchConfig() dispatch.Config {
	return dispatch.Config{
		WriteRate:  c.Store.WriteRate,
		WriteBurst: c.Store.WriteBurst,
	}
}

// CacheEnabled reports whether invalidation can run: it needs at least one
// server and a username to authenticate with.
func (c *Config) CacheEnabled() bool {
	return len(c.Cache.Servers) > 0 && c.Cache.Username != ""
}

// CacheClientConfig converts to the invalidation client configuration.
func (c *Config) CacheClientConfig() cacheinvalidate.Config {
	b := c.Cache.Breaker
	return cacheinvalidate.Config{
		Servers:        c.Cache.Servers,
		AuthPath:       c.Cache.AuthPath,
		InvalidatePath: c.Cache.InvalidatePath,
		Username:       c.Cache.Username,
		Password:       c.Cache.Password,
		Timeout:        c.Cache.Timeout,
		Breaker: cacheinvalidate.BreakerConfig{
			Enabled:      b.Enabled,
			MaxRequests:  b.MaxRequests,
			Interval:     b.Interval,
			Timeout:      b.Timeout,
			MinRequests:  b.MinRequests,
			FailureRatio: b.FailureRatio,
		},
	}
}

// EventsConfig converts to the publisher configuration.
func (c *Config) EventsConfig() events.Config {
	return events.Config{URL: c.Events.NATSURL, Subject: c.Events.Subject}
}

// SMTPSenderConfig converts to the SMTP sender configuration.
func (c *Config) SMTPSenderConfig() report.SMTPConfig {
	s := c.Report.SMTP
	return report.SMTPConfig{
		Host:     s.Host,
		Port:     s.Port,
		Username: s.Username,
		Password: s.Password,
		UseTLS:   s.UseTLS,
	}
}

// LoggingConfig converts to the logger configuration.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}
