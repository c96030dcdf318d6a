// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

// Package events publishes one change notification per pipeline run over
// NATS, for consumers that maintain their own view of the recommendations.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/personalize/internal/logging"
	"github.com/tomtom215/personalize/internal/metrics"
)

// DefaultSubject is the NATS subject change events are published on.
const DefaultSubject = "personalize.recommendations.changed"

// ErrClosed is returned after Close.
var ErrClosed = errors.New("publisher is closed")

// Config configures the publisher.
type Config struct {
	URL           string
	Subject       string
	MaxReconnects int
	ReconnectWait time.Duration
}

// ChangeSet summarizes what a run wrote to the store.
type ChangeSet struct {
	Changed []int
	Upserts int
	Deletes int
}

// ChangeEvent is the message payload.
type ChangeEvent struct {
	RunID   string    `json:"runId"`
	Changed []int     `json:"changed"`
	Upserts int       `json:"upserts"`
	Deletes int       `json:"deletes"`
	At      time.Time `json:"at"`
}

// ChangePublisher is what the pipeline depends on.
type ChangePublisher interface {
	PublishChanges(ctx context.Context, runID string, changes ChangeSet) error
	Close() error
}

// Publisher publishes ChangeEvents through a watermill NATS publisher.
type Publisher struct {
	publisher message.Publisher
	subject   string
	now       func() time.Time

	mu     sync.RWMutex
	closed bool
}

var _ ChangePublisher = (*Publisher)(nil)

// NewPublisher connects to cfg.URL. Core NATS is used; events are
// notifications, not a durable log.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("nats url is required")
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = 10
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}

	log := logging.WithComponent("events")
	natsOpts := []natsgo.Option{
		natsgo.Name("personalize"),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, watermill.NewSlogLogger(logging.NewSlogLogger()))
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &Publisher{
		publisher: pub,
		subject:   cfg.Subject,
		now:       time.Now,
	}, nil
}

// PublishChanges sends one event for the run.
func (p *Publisher) PublishChanges(ctx context.Context, runID string, changes ChangeSet) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	changed := changes.Changed
	if changed == nil {
		changed = []int{}
	}
	payload, err := json.Marshal(ChangeEvent{
		RunID:   runID,
		Changed: changed,
		Upserts: changes.Upserts,
		Deletes: changes.Deletes,
		At:      p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.Metadata.Set("run_id", runID)
	msg.SetContext(ctx)

	err = p.publisher.Publish(p.subject, msg)
	metrics.RecordEventPublish(err)
	if err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}

	logging.Ctx(ctx).Debug().Str("subject", p.subject).Str("message_id", msg.UUID).
		Int("changed", len(changed)).Msg("Change event published")
	return nil
}

// Close shuts down the publisher. Safe to call twice.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
