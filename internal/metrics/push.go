// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Pusher sends the registry to a Prometheus Pushgateway. One-shot runs exit
// before a scrape can happen, so they push instead.
type Pusher struct {
	pusher *push.Pusher
}

// NewPusher creates a pusher for url and job. The gatherer defaults to the
// global registry.
func NewPusher(url, job string, gatherer prometheus.Gatherer) *Pusher {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Pusher{pusher: push.New(url, job).Gatherer(gatherer)}
}

// Push replaces the metrics of the job on the gateway.
func (p *Pusher) Push(ctx context.Context) error {
	if err := p.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
