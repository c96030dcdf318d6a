// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

// Package logging provides centralized zerolog-based structured logging.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Msg("Pipeline starting")
//	logging.Error().Err(err).Msg("Run failed")
//
// Every pipeline run carries a short run ID in its context; logging.Ctx
// attaches it (and the HTTP request ID, when present) to each entry:
//
//	ctx = logging.ContextWithNewRunID(ctx)
//	logging.Ctx(ctx).Info().Int("changed", n).Msg("Diff computed")
//	// {"level":"info","app":"personalize","run_id":"1a2b3c4d","changed":12,"message":"Diff computed"}
//
// # slog Bridge
//
// Suture (via sutureslog) and Watermill log through log/slog. SlogHandler
// forwards those records to the global zerolog logger so that all output
// shares one format.
//
// # Redaction
//
// Credentials reach log lines through DSNs, bearer tokens and report
// addresses. Use SanitizeToken, SanitizeDSN and SanitizeEmail before
// logging them.
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
