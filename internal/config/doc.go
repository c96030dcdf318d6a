// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

/*
Package config provides centralized configuration management for Personalize.

# Configuration Sources

Configuration is layered with koanf v2, lowest priority first:

 1. Built-in defaults (structs provider)
 2. Optional YAML file: the --config flag, PERSONALIZE_CONFIG, or the first of
    personalize.yaml, personalize.yml, /etc/personalize/config.yaml
 3. Environment variables from an explicit mapping table; unmapped
    variables are ignored

List settings (cache servers, excluded products) accept comma-separated
values when set from the environment.

# Environment Variables

Recommendation engine:
  - RECOMMEND_TOP_N: partners kept per product (default: 5)
  - RECOMMEND_HALF_LIFE_DAYS: decay half-life (default: 30)
  - RECOMMEND_EXCLUDED_PRODUCT_IDS: comma-separated product ids

Purchase source:
  - SOURCE_DRIVER: duckdb or postgres (default: duckdb)
  - SOURCE_DSN: connection string or DuckDB file path
  - SOURCE_FROM_DATE: ignore orders last changed before this date (YYYY-MM-DD)
  - SOURCE_USE_SECRETS_MANAGER, SOURCE_SECRET_ARN, SOURCE_SECRET_KEY

Store:
  - STORE_BACKEND: dynamodb or badger (default: dynamodb)
  - DYNAMODB_TABLE_NAME, DYNAMODB_REGION, DYNAMODB_ENDPOINT
  - BADGER_PATH

Cache invalidation:
  - CACHE_SERVERS: comma-separated base URLs
  - CACHE_USERNAME, CACHE_PASSWORD, CACHE_AUTH_PATH, CACHE_INVALIDATE_PATH

Reports:
  - REPORT_PROVIDER: ses, smtp, resend or none (default: none)
  - REPORT_RECIPIENT, REPORT_FROM

The full table is envMappings in koanf.go.

# Validation

Load validates the result with struct tags (internal/validation) and then
cross-field rules in Validate, for example a DSN is required unless it is
read from Secrets Manager.
*/
package config
