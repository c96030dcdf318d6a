// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

/*
Package purchases loads the purchase history the recommendation engine is
trained on.

Two sources are supported: PostgreSQL through pgxpool, and DuckDB through
database/sql (a database file, or ":memory:" over attached Parquet or CSV
exports). Both run the same statement against two tables:

	orders       (id, user_id, status, created_at, status_changed_at)
	order_lines  (order_id, product_id, quantity)

Only orders in the configured status (default "V", shipped) are read. When a
from-date is set, orders are kept if COALESCE(status_changed_at, created_at)
is on or after it. Rows come back ordered by order id and product id and are
folded into one recommend.Purchase per order; the purchase time is the order
creation time.

A custom query may replace the default. It must return the columns

	order_id, user_id, status, purchased_at, product_id, quantity

in that order, take the status as $1 and, when a from-date is configured, the
date as $2.
*/
package purchases
