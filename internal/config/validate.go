// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package config

import (
	"fmt"
	"net/mail"

	"github.com/tomtom215/personalize/internal/cacheinvalidate"
	"github.com/tomtom215/personalize/internal/logging"
	"github.com/tomtom215/personalize/internal/validation"
)

// Validate checks struct tags first, then the rules that span fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateSource(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	if err := c.validateReport(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateRecommend() error {
	rc := c.RecommendConfig()
	if err := rc.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// validateSource requires a DSN unless it comes from Secrets Manager.
// DuckDB alone may run without one (in-memory database).
func (c *Config) validateSource() error {
	s := c.Source
	if s.UseSecretsManager {
		if s.SecretARN == "" {
			return fmt.Errorf("SOURCE_SECRET_ARN is required when SOURCE_USE_SECRETS_MANAGER=true")
		}
		return nil
	}
	if s.Driver == "postgres" && s.DSN == "" {
		return fmt.Errorf("SOURCE_DSN is required for the postgres driver")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "dynamodb":
		if c.Store.DynamoDB.TableName == "" {
			return fmt.Errorf("DYNAMODB_TABLE_NAME is required for the dynamodb backend")
		}
	case "badger":
		if c.Store.Badger.Path == "" {
			return fmt.Errorf("BADGER_PATH is required for the badger backend")
		}
	}
	return nil
}

func (c *Config) validateCache() error {
	if _, err := cacheinvalidate.NewTemplateKeyDeriver(c.Cache.KeyRegion, c.Cache.KeyTemplate); err != nil {
		return fmt.Errorf("cache key: %w", err)
	}
	if !c.CacheEnabled() {
		return nil
	}
	if c.Cache.AuthPath == "" || c.Cache.InvalidatePath == "" {
		return fmt.Errorf("CACHE_AUTH_PATH and CACHE_INVALIDATE_PATH are required when CACHE_SERVERS is set")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.Enabled && c.Events.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required when EVENTS_ENABLED=true")
	}
	return nil
}

func (c *Config) validateReport() error {
	r := c.Report
	if r.Provider == "none" {
		return nil
	}
	if _, err := mail.ParseAddress(r.Recipient); err != nil {
		return fmt.Errorf("REPORT_RECIPIENT is invalid: %w", err)
	}
	if _, err := mail.ParseAddress(r.From); err != nil {
		return fmt.Errorf("REPORT_FROM is invalid: %w", err)
	}

	switch r.Provider {
	case "smtp":
		if r.SMTP.Host == "" {
			return fmt.Errorf("SMTP_HOST is required when REPORT_PROVIDER=smtp")
		}
	case "resend":
		if r.Resend.APIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required when REPORT_PROVIDER=resend")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic, disabled; got %q", c.Logging.Level)
	}
	return nil
}
