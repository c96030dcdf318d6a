// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package purchases

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/personalize/internal/recommend"
)

// DefaultStatus selects shipped orders.
const DefaultStatus = "V"

const baseQuery = `SELECT o.id, o.user_id, o.status, o.created_at, l.product_id, l.quantity
FROM orders o
INNER JOIN order_lines l ON l.order_id = o.id
WHERE o.status = $1`

const fromDateFilter = `
  AND COALESCE(o.status_changed_at, o.created_at) >= $2`

const orderBy = `
ORDER BY o.id, l.product_id`

// Options selects the purchases to load.
type Options struct {
	// Status filter. Default: "V"
	Status string

	// FromDate, when non-zero, drops orders last changed before it.
	FromDate time.Time

	// Query replaces the default statement; see the package doc for its contract.
	Query string

	// Timeout bounds the whole query. Zero means no extra deadline.
	Timeout time.Duration
}

// Provider yields the purchase history.
type Provider interface {
	Purchases(ctx context.Context) ([]recommend.Purchase, error)
	Close() error
}

// buildQuery returns the statement and its arguments.
func buildQuery(opts Options) (string, []any) {
	status := opts.Status
	if status == "" {
		status = DefaultStatus
	}
	args := []any{status}

	if opts.Query != "" {
		if !opts.FromDate.IsZero() {
			args = append(args, opts.FromDate)
		}
		return opts.Query, args
	}

	query := baseQuery
	if !opts.FromDate.IsZero() {
		query += fromDateFilter
		args = append(args, opts.FromDate)
	}
	return query + orderBy, args
}

// rows is the part of *sql.Rows and pgx.Rows that collect needs.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// collect folds joined order/line rows into purchases, preserving first-seen
// order of order ids.
func collect(r rows) ([]recommend.Purchase, error) {
	index := make(map[int64]int)
	var purchases []recommend.Purchase

	for r.Next() {
		var (
			orderID, userID     int64
			status              string
			purchasedAt         time.Time
			productID, quantity int64
		)
		if err := r.Scan(&orderID, &userID, &status, &purchasedAt, &productID, &quantity); err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}

		i, ok := index[orderID]
		if !ok {
			i = len(purchases)
			index[orderID] = i
			purchases = append(purchases, recommend.Purchase{
				ID:          orderID,
				UserID:      userID,
				Status:      status,
				PurchasedAt: purchasedAt.UTC(),
			})
		}
		purchases[i].Lines = append(purchases[i].Lines, recommend.ProductLine{
			ProductID: int(productID),
			Quantity:  int(quantity),
		})
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase rows: %w", err)
	}
	return purchases, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
