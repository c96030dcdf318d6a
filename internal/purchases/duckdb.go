// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package purchases

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"github.com/tomtom215/personalize/internal/logging"
	"github.com/tomtom215/personalize/internal/recommend"
)

// DuckDBProvider reads purchases from a DuckDB database.
type DuckDBProvider struct {
	db   *sql.DB
	opts Options
}

var _ Provider = (*DuckDBProvider)(nil)

// OpenDuckDB opens dsn (a file path, or "" for in-memory).
func OpenDuckDB(dsn string, opts Options) (*DuckDBProvider, error) {
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return &DuckDBProvider{db: db, opts: opts}, nil
}

// DB exposes the handle, used to attach external files or seed tests.
func (p *DuckDBProvider) DB() *sql.DB {
	return p.db
}

// Purchases runs the purchase query.
func (p *DuckDBProvider) Purchases(ctx context.Context) ([]recommend.Purchase, error) {
	ctx, cancel := withTimeout(ctx, p.opts.Timeout)
	defer cancel()

	query, args := buildQuery(p.opts)
	start := time.Now()

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	purchases, err := collect(rows)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().Str("source", "duckdb").Int("purchases", len(purchases)).
		Dur("duration", time.Since(start)).Msg("Purchases loaded")
	return purchases, nil
}

// Close closes the database.
func (p *DuckDBProvider) Close() error {
	return p.db.Close()
}
