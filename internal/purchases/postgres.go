// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package purchases

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/personalize/internal/logging"
	"github.com/tomtom215/personalize/internal/recommend"
)

const connectTimeout = 10 * time.Second

// PostgresProvider reads purchases from PostgreSQL.
type PostgresProvider struct {
	pool *pgxpool.Pool
	opts Options
}

var _ Provider = (*PostgresProvider)(nil)

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string, opts Options) (*PostgresProvider, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres %s: %w", logging.SanitizeDSN(dsn), err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres %s: %w", logging.SanitizeDSN(dsn), err)
	}
	return &PostgresProvider{pool: pool, opts: opts}, nil
}

// Purchases runs the purchase query.
func (p *PostgresProvider) Purchases(ctx context.Context) ([]recommend.Purchase, error) {
	ctx, cancel := withTimeout(ctx, p.opts.Timeout)
	defer cancel()

	query, args := buildQuery(p.opts)
	start := time.Now()

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close()

	purchases, err := collect(rows)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().Str("source", "postgres").Int("purchases", len(purchases)).
		Dur("duration", time.Since(start)).Msg("Purchases loaded")
	return purchases, nil
}

// Close releases the pool.
func (p *PostgresProvider) Close() error {
	p.pool.Close()
	return nil
}
