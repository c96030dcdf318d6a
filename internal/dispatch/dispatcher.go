// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

// Package dispatch pushes changed recommendations to the store and the
// storefront cache.
package dispatch

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/personalize/internal/cacheinvalidate"
	"github.com/tomtom215/personalize/internal/logging"
	"github.com/tomtom215/personalize/internal/metrics"
	"github.com/tomtom215/personalize/internal/recommend"
	"github.com/tomtom215/personalize/internal/store"
)

// Config controls store write pacing.
type Config struct {
	// WriteRate is the maximum store writes per second; 0 means unlimited.
	WriteRate float64

	// WriteBurst is the limiter bucket size. Default: 1
	WriteBurst int
}

// InvalidationStats is the cache side of a dispatch.
type InvalidationStats struct {
	// Skipped is true when no invalidator is configured or nothing changed.
	Skipped bool `json:"skipped"`

	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`

	// Failed counts key-derivation failures plus items of failed batches.
	Failed    int `json:"failed"`
	KeyErrors int `json:"key_errors"`
}

// Stats summarizes one dispatch.
type Stats struct {
	Changed     int               `json:"changed"`
	Upserts     int               `json:"upserts"`
	Deletes     int               `json:"deletes"`
	StoreErrors int               `json:"store_errors"`
	Cache       InvalidationStats `json:"cache"`

	// FailedProducts lists ids whose store write failed.
	FailedProducts []int `json:"failed_products,omitempty"`

	StoreDuration time.Duration `json:"store_duration"`
	CacheDuration time.Duration `json:"cache_duration"`
}

// Dispatcher applies a change set.
type Dispatcher struct {
	store       store.Store
	invalidator cacheinvalidate.Invalidator
	keys        cacheinvalidate.KeyDeriver
	limiter     *rate.Limiter
	logger      zerolog.Logger
	now         func() time.Time
}

// New creates a dispatcher. invalidator may be nil, in which case cache
// invalidation is skipped; keys is then unused.
func New(s store.Store, invalidator cacheinvalidate.Invalidator, keys cacheinvalidate.KeyDeriver, cfg Config) *Dispatcher {
	limit := rate.Inf
	if cfg.WriteRate > 0 && !math.IsInf(cfg.WriteRate, 1) {
		limit = rate.Limit(cfg.WriteRate)
	}
	burst := cfg.WriteBurst
	if burst < 1 {
		burst = 1
	}

	return &Dispatcher{
		store:       s,
		invalidator: invalidator,
		keys:        keys,
		limiter:     rate.NewLimiter(limit, burst),
		logger:      logging.WithComponent("dispatch"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the lastUpdated time source.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Dispatch upserts or deletes every changed product in ascending id order,
// then invalidates their cache entries in one batch.
//
// Per-product store failures are counted and skipped. The only returned error
// is context cancellation, which stops the loop early.
func (d *Dispatcher) Dispatch(ctx context.Context, changed []int, recs recommend.RecommendationSet) (*Stats, error) {
	ids := make([]int, len(changed))
	copy(ids, changed)
	sort.Ints(ids)

	log := logging.CtxWith(ctx).Str("component", "dispatch").Logger()
	stats := &Stats{Changed: len(ids)}

	storeStart := time.Now()
	for _, id := range ids {
		if err := d.limiter.Wait(ctx); err != nil {
			stats.StoreDuration = time.Since(storeStart)
			return stats, fmt.Errorf("dispatch interrupted at product %d: %w", id, err)
		}
		d.apply(ctx, &log, id, recs[id], stats)
	}
	stats.StoreDuration = time.Since(storeStart)

	log.Info().Int("upserts", stats.Upserts).Int("deletes", stats.Deletes).
		Int("errors", stats.StoreErrors).Dur("duration", stats.StoreDuration).Msg("Store synchronized")

	cacheStart := time.Now()
	stats.Cache = d.invalidate(ctx, &log, ids)
	stats.CacheDuration = time.Since(cacheStart)

	return stats, nil
}

// apply writes one product. Non-empty recommendations are upserted; anything
// else is deleted.
func (d *Dispatcher) apply(ctx context.Context, log *zerolog.Logger, id int, recs []recommend.RecommendedProduct, stats *Stats) {
	start := time.Now()

	if len(recs) > 0 {
		record, err := store.NewRecord(id, recs, d.now())
		if err == nil {
			err = d.store.Put(ctx, record)
		}
		metrics.RecordStoreOperation("upsert", time.Since(start), err)
		if err != nil {
			stats.StoreErrors++
			stats.FailedProducts = append(stats.FailedProducts, id)
			log.Error().Err(err).Int("product_id", id).Msg("Failed to upsert recommendations")
			return
		}
		stats.Upserts++
		return
	}

	err := d.store.Delete(ctx, id)
	metrics.RecordStoreOperation("delete", time.Since(start), err)
	if err != nil {
		stats.StoreErrors++
		stats.FailedProducts = append(stats.FailedProducts, id)
		log.Error().Err(err).Int("product_id", id).Msg("Failed to delete recommendations")
		return
	}
	stats.Deletes++
}

func (d *Dispatcher) invalidate(ctx context.Context, log *zerolog.Logger, ids []int) InvalidationStats {
	if len(ids) == 0 {
		return InvalidationStats{Skipped: true}
	}
	if d.invalidator == nil || d.keys == nil {
		log.Info().Int("changed", len(ids)).Msg("Cache invalidation skipped: not configured")
		return InvalidationStats{Skipped: true}
	}

	var stats InvalidationStats
	items := make([]cacheinvalidate.Item, 0, len(ids))
	for _, id := range ids {
		item, err := d.keys.Derive(id)
		if err != nil {
			stats.KeyErrors++
			stats.Failed++
			log.Warn().Err(err).Int("product_id", id).Msg("Failed to derive cache key")
			continue
		}
		items = append(items, item)
	}
	if stats.KeyErrors > 0 {
		metrics.RecordInvalidatedKeys(0, stats.KeyErrors)
	}

	stats.Requested = len(items)
	if len(items) == 0 {
		return stats
	}

	result := d.invalidator.Invalidate(ctx, items)
	stats.Succeeded = result.Succeeded
	stats.Failed += result.Failed
	return stats
}
