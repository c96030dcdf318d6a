// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

// Command personalize computes co-purchase recommendations from order history
// and synchronizes the products whose recommendations changed to the
// recommendation store and the cache.
//
// # Commands
//
//	personalize run      one batch pass, exits 1 on a fatal error
//	personalize serve    scheduled passes plus a status server
//	personalize version  print the build version
//
// # Configuration
//
// Settings come from defaults, an optional YAML file (--config or
// PERSONALIZE_CONFIG) and environment variables; see internal/config.
//
// Local run against a DuckDB export with an embedded store:
//
//	SOURCE_DSN=/data/orders.duckdb \
//	STORE_BACKEND=badger BADGER_PATH=/data/store \
//	personalize run
//
// Production run reading the DSN from Secrets Manager:
//
//	SOURCE_DRIVER=postgres \
//	SOURCE_USE_SECRETS_MANAGER=true \
//	SOURCE_SECRET_ARN=arn:aws:secretsmanager:us-east-1:123456789012:secret:ecom \
//	CACHE_SERVERS=https://cache-a.internal,https://cache-b.internal \
//	CACHE_USERNAME=personalize CACHE_PASSWORD=... \
//	REPORT_PROVIDER=ses REPORT_RECIPIENT=ops@example.com REPORT_FROM=personalize@example.com \
//	personalize run
package main
