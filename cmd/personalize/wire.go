// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/personalize/internal/cacheinvalidate"
	"github.com/tomtom215/personalize/internal/config"
	"github.com/tomtom215/personalize/internal/dispatch"
	"github.com/tomtom215/personalize/internal/events"
	"github.com/tomtom215/personalize/internal/logging"
	"github.com/tomtom215/personalize/internal/pipeline"
	"github.com/tomtom215/personalize/internal/purchases"
	"github.com/tomtom215/personalize/internal/recommend"
	"github.com/tomtom215/personalize/internal/report"
	"github.com/tomtom215/personalize/internal/store"
)

// app holds the wired runner and everything that must be closed after it.
type app struct {
	runner  *pipeline.Runner
	closers []func() error
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logging.Warn().Err(err).Msg("Error during shutdown")
		}
	}
}

// buildApp wires every collaborator of the runner from cfg. On error the
// resources acquired so far are released and a nil app is returned.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	fail := func(err error) (*app, error) {
		a.Close()
		return nil, err
	}

	recs, err := buildStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	a.closers = append(a.closers, recs.Close)

	dispatcher, err := buildDispatcher(cfg, recs)
	if err != nil {
		return fail(err)
	}

	engine, err := recommend.NewEngine(cfg.RecommendConfig(), logging.WithComponent("recommend"))
	if err != nil {
		return fail(fmt.Errorf("create engine: %w", err))
	}

	source, err := buildPurchaseSource(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	a.closers = append(a.closers, source.Close)

	deps := pipeline.Deps{
		Purchases:  source,
		Engine:     engine,
		Dispatcher: dispatcher,
	}

	if cfg.Events.Enabled {
		publisher, err := events.NewPublisher(cfg.EventsConfig())
		if err != nil {
			return fail(fmt.Errorf("create event publisher: %w", err))
		}
		a.closers = append(a.closers, publisher.Close)
		deps.Events = publisher
	}

	mailer, err := buildMailer(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	if mailer != nil {
		deps.Mailer = mailer
	}

	a.runner, err = pipeline.NewRunner(deps, cfg.Snapshot.Path)
	if err != nil {
		return fail(fmt.Errorf("create runner: %w", err))
	}

	logging.Info().
		Str("source", cfg.Source.Driver).
		Str("store", cfg.Store.Backend).
		Bool("cache", cfg.CacheEnabled()).
		Bool("events", cfg.Events.Enabled).
		Str("report", cfg.Report.Provider).
		Str("snapshot", cfg.Snapshot.Path).
		Msg("Pipeline wired")
	return a, nil
}

func buildStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "badger":
		s, err := store.OpenBadgerStore(cfg.Store.Badger.Path)
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		return s, nil
	default:
		d := cfg.Store.DynamoDB
		client, err := store.NewDynamoClient(ctx, d.Region, d.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("create dynamodb client: %w", err)
		}
		return store.NewDynamoStore(client, d.TableName), nil
	}
}

// buildDispatcher leaves the invalidator nil when the cache is not configured,
// which makes the dispatcher skip invalidation.
func buildDispatcher(cfg *config.Config, recs store.Store) (*dispatch.Dispatcher, error) {
	keys, err := cacheinvalidate.NewTemplateKeyDeriver(cfg.Cache.KeyRegion, cfg.Cache.KeyTemplate)
	if err != nil {
		return nil, fmt.Errorf("cache keys: %w", err)
	}

	var invalidator cacheinvalidate.Invalidator
	if cfg.CacheEnabled() {
		client, err := cacheinvalidate.New(cfg.CacheClientConfig())
		if err != nil {
			return nil, fmt.Errorf("create cache client: %w", err)
		}
		invalidator = client
	} else {
		logging.Info().Msg("Cache invalidation disabled (no servers or username configured)")
	}

	return dispatch.New(recs, invalidator, keys, cfg.DispatchConfig()), nil
}

func buildPurchaseSource(ctx context.Context, cfg *config.Config) (purchases.Provider, error) {
	opts, err := cfg.PurchaseOptions()
	if err != nil {
		return nil, err
	}

	dsn := cfg.Source.DSN
	if cfg.Source.UseSecretsManager {
		client, err := purchases.NewSecretsClient(ctx, cfg.Source.SecretRegion)
		if err != nil {
			return nil, fmt.Errorf("create secrets client: %w", err)
		}
		dsn, err = purchases.NewSecretResolver(client, cfg.Source.SecretKey).ResolveDSN(ctx, cfg.Source.SecretARN)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Source.Driver == "postgres" {
		pg, err := purchases.OpenPostgres(ctx, dsn, opts)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	duck, err := purchases.OpenDuckDB(dsn, opts)
	if err != nil {
		return nil, err
	}
	return duck, nil
}

// buildMailer returns nil when reports are not delivered.
func buildMailer(ctx context.Context, cfg *config.Config) (*report.Mailer, error) {
	r := cfg.Report

	var sender report.Sender
	switch r.Provider {
	case "none", "":
		return nil, nil
	case "ses":
		client, err := report.NewSESClient(ctx, r.SES.Region)
		if err != nil {
			return nil, fmt.Errorf("create ses client: %w", err)
		}
		sender = report.NewSESSender(client)
	case "smtp":
		sender = report.NewSMTPSender(cfg.SMTPSenderConfig())
	case "resend":
		rs, err := report.NewResendSender(r.Resend.APIKey)
		if err != nil {
			return nil, err
		}
		sender = rs
	default:
		return nil, fmt.Errorf("unknown report provider %q", r.Provider)
	}

	mailer, err := report.NewMailer(sender, r.From, r.Recipient)
	if err != nil {
		return nil, fmt.Errorf("create mailer: %w", err)
	}
	return mailer, nil
}
