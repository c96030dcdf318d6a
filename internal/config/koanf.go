// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/personalize/internal/events"
	"github.com/tomtom215/personalize/internal/purchases"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"personalize.yaml",
	"personalize.yml",
	"/etc/personalize/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "PERSONALIZE_CONFIG"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Recommend: RecommendConfig{
			TopN:         5,
			HalfLifeDays: 30,
			Weights: WeightsConfig{
				Count:  0.3,
				Lift:   0.4,
				Cosine: 0.3,
			},
		},
		Snapshot: SnapshotConfig{
			Path: "personalize_snapshot.txt",
		},
		Source: SourceConfig{
			Driver:       "duckdb",
			Status:       "V",
			QueryTimeout: 5 * time.Minute,
			SecretKey:    purchases.DefaultSecretKey,
			SecretRegion: "us-east-1",
		},
		Store: StoreConfig{
			Backend: "dynamodb",
			DynamoDB: DynamoDBConfig{
				TableName: "dynamo-personalize",
				Region:    "us-east-1",
			},
			Badger: BadgerConfig{
				Path: "/data/personalize/store",
			},
			WriteRate:  0, // unlimited
			WriteBurst: 1,
		},
		Cache: CacheConfig{
			AuthPath:       "/api/auth/token",
			InvalidatePath: "/api/cache/invalidate",
			Timeout:        30 * time.Second,
			KeyRegion:      "recommendation",
			KeyTemplate:    "recommendation:%d",
			Breaker: BreakerConfig{
				Enabled:      true,
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      2 * time.Minute,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Events: EventsConfig{
			Enabled: false,
			NATSURL: "nats://127.0.0.1:4222",
			Subject: events.DefaultSubject,
		},
		Report: ReportConfig{
			Provider: "none",
			SES: SESConfig{
				Region: "us-east-1",
			},
			SMTP: SMTPConfig{
				Port:   587,
				UseTLS: true,
			},
		},
		Metrics: MetricsConfig{
			Job: "personalize",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            9464,
			ShutdownTimeout: 10 * time.Second,
		},
		Schedule: ScheduleConfig{
			Interval:     24 * time.Hour,
			RunOnStartup: true,
			RunTimeout:   2 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: path if non-empty, otherwise the first file findConfigFile finds
//  3. Environment Variables: Override any mapped setting
//
// The result is validated before it is returned.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional unless given explicitly)
	configPath := path
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"cache.servers",
	"recommend.excluded_product_ids",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Recommendation engine
	"recommend_top_n":                "recommend.top_n",
	"recommend_half_life_days":       "recommend.half_life_days",
	"recommend_excluded_product_ids": "recommend.excluded_product_ids",
	"recommend_weight_count":         "recommend.weights.count",
	"recommend_weight_lift":          "recommend.weights.lift",
	"recommend_weight_cosine":        "recommend.weights.cosine",

	"snapshot_path": "snapshot.path",

	// Purchase source
	"source_driver":              "source.driver",
	"source_dsn":                 "source.dsn",
	"source_query":               "source.query",
	"source_status":              "source.status",
	"source_from_date":           "source.from_date",
	"source_query_timeout":       "source.query_timeout",
	"source_use_secrets_manager": "source.use_secrets_manager",
	"source_secret_arn":          "source.secret_arn",
	"source_secret_key":          "source.secret_key",
	"source_secret_region":       "source.secret_region",

	// Store
	"store_backend":       "store.backend",
	"store_write_rate":    "store.write_rate",
	"store_write_burst":   "store.write_burst",
	"dynamodb_table_name": "store.dynamodb.table_name",
	"dynamodb_region":     "store.dynamodb.region",
	"dynamodb_endpoint":   "store.dynamodb.endpoint",
	"badger_path":         "store.badger.path",

	// Cache invalidation
	"cache_servers":         "cache.servers",
	"cache_auth_path":       "cache.auth_path",
	"cache_invalidate_path": "cache.invalidate_path",
	"cache_username":        "cache.username",
	"cache_password":        "cache.password",
	"cache_timeout":         "cache.timeout",
	"cache_key_region":      "cache.key_region",
	"cache_key_template":    "cache.key_template",
	"cache_breaker_enabled": "cache.breaker.enabled",

	// Events
	"events_enabled": "events.enabled",
	"nats_url":       "events.nats_url",
	"events_subject": "events.subject",

	// Report
	"report_provider":  "report.provider",
	"report_recipient": "report.recipient",
	"report_from":      "report.from",
	"ses_region":       "report.ses.region",
	"smtp_host":        "report.smtp.host",
	"smtp_port":        "report.smtp.port",
	"smtp_username":    "report.smtp.username",
	"smtp_password":    "report.smtp.password",
	"smtp_use_tls":     "report.smtp.use_tls",
	"resend_api_key":   "report.resend.api_key",

	// Metrics
	"pushgateway_url": "metrics.pushgateway_url",
	"metrics_job":     "metrics.job",

	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"shutdown_timeout": "server.shutdown_timeout",

	// Schedule
	"schedule_interval":       "schedule.interval",
	"schedule_run_on_startup": "schedule.run_on_startup",
	"schedule_run_timeout":    "schedule.run_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Variables missing from envMappings are skipped.
//
// Examples:
//   - SOURCE_DSN -> source.dsn
//   - DYNAMODB_TABLE_NAME -> store.dynamodb.table_name
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
