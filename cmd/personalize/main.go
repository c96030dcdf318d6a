// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/personalize/internal/api"
	"github.com/tomtom215/personalize/internal/config"
	"github.com/tomtom215/personalize/internal/logging"
	"github.com/tomtom215/personalize/internal/metrics"
	"github.com/tomtom215/personalize/internal/supervisor"
	"github.com/tomtom215/personalize/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "personalize",
		Short:         "Co-purchase recommendation sync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run one batch pass and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runOnce(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Run on a schedule and serve the status API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "personalize %s (%s)\n", version, runtime.Version())
			},
		},
	)
	return root
}

// loadConfig loads configuration and initializes logging from it.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return nil, err
	}
	logCfg := cfg.LoggingConfig()
	logCfg.Version = version
	logging.Init(logCfg)
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	return cfg, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// runOnce performs a single pass. Fatal pipeline errors are returned so the
// process exits 1.
func runOnce(parent context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(parent)
	defer cancel()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize")
		return err
	}
	defer a.Close()

	runCtx, runCancel := context.WithTimeout(ctx, cfg.Schedule.RunTimeout)
	defer runCancel()

	_, runErr := a.runner.Run(runCtx)

	if cfg.Metrics.PushgatewayURL != "" {
		pushCtx, pushCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pushCancel()
		if err := metrics.NewPusher(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, nil).Push(pushCtx); err != nil {
			logging.Warn().Err(err).Msg("Failed to push metrics")
		}
	}

	return runErr
}

// serve runs the supervisor tree until a signal arrives.
func serve(parent context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(parent)
	defer cancel()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize")
		return err
	}
	defer a.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	pipelineSvc := services.NewPipelineService(a.runner, services.PipelineServiceConfig{
		RunOnStartup: cfg.Schedule.RunOnStartup,
		Interval:     cfg.Schedule.Interval,
		RunTimeout:   cfg.Schedule.RunTimeout,
	}, logging.WithComponent("supervisor"))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(api.NewHandler(a.runner, pipelineSvc), nil),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree.AddPipelineService(pipelineSvc)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("supervisor")))

	logging.Info().
		Str("addr", server.Addr).
		Dur("interval", cfg.Schedule.Interval).
		Str("version", version).
		Msg("Starting personalize in serve mode")

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("supervisor tree stopped: %w", err)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	logging.Info().Msg("Shutdown complete")
	return nil
}
