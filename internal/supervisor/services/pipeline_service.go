// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/personalize/internal/pipeline"
)

// Runner runs one pipeline pass.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// PipelineServiceConfig holds the schedule.
type PipelineServiceConfig struct {
	// RunOnStartup runs once as soon as the service starts.
	RunOnStartup bool

	// Interval between scheduled runs. Default: 24h
	Interval time.Duration

	// RunTimeout bounds a single run. Default: 2h
	RunTimeout time.Duration
}

// PipelineService schedules pipeline runs under suture.
type PipelineService struct {
	runner  Runner
	config  PipelineServiceConfig
	logger  zerolog.Logger
	trigger chan struct{}
	name    string
}

// NewPipelineService creates the service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipelineService(runner Runner, cfg PipelineServiceConfig, logger zerolog.Logger) *PipelineService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Hour
	}
	return &PipelineService{
		runner:  runner,
		config:  cfg,
		logger:  logger.With().Str("service", "pipeline").Logger(),
		trigger: make(chan struct{}, 1),
		name:    "pipeline-service",
	}
}

// Trigger requests an immediate run. It returns false when a request is
// already pending.
func (s *PipelineService) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Serve implements suture.Service.
func (s *PipelineService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("pipeline service starting")

	if s.config.RunOnStartup {
		s.run(ctx, "startup")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("pipeline service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.run(ctx, "schedule")

		case <-s.trigger:
			s.run(ctx, "trigger")
		}
	}
}

// run executes one pass. Failures are logged; the schedule continues.
func (s *PipelineService) run(ctx context.Context, reason string) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	s.logger.Debug().Str("reason", reason).Msg("pipeline run starting")

	res, err := s.runner.Run(runCtx)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		s.logger.Warn().Str("reason", reason).Msg("pipeline run skipped, another run is in progress")
	case err != nil:
		s.logger.Error().Err(err).Str("reason", reason).Msg("pipeline run failed")
	default:
		s.logger.Info().
			Str("reason", reason).
			Str("run_id", res.RunID).
			Str("outcome", string(res.Outcome)).
			Int("changed", res.Changed).
			Dur("duration", res.Duration()).
			Msg("pipeline run finished")
	}
}

// String returns the service name for logging.
func (s *PipelineService) String() string {
	return s.name
}
