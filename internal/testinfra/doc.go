// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

// Package testinfra provides test infrastructure shared across packages.
//
// # PostgreSQL Container
//
// Built with the integration tag, StartPostgres runs a disposable PostgreSQL
// instance seeded with the orders and order_lines tables and removes it when
// the test ends:
//
//	func TestPurchasesFromPostgres(t *testing.T) {
//	    pg := testinfra.StartPostgres(t, seed)
//	    provider, err := purchases.OpenPostgres(context.Background(), pg.DSN, purchases.Options{})
//	    // ...
//	}
//
// Tests are skipped when no container provider is reachable.
//
// # Mock Cache Server
//
// MockCacheServer is an httptest server speaking the cache API (token
// endpoint plus invalidation endpoint). It records every invalidation batch
// and is available without build tags.
package testinfra
