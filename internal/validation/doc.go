// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator is built once with WithRequiredStructEnabled
// and a tag-name function that reports fields by their koanf key, so errors
// name the setting an operator actually writes:
//
//	cache.timeout must be greater than 0
//	store.backend must be one of: dynamodb badger
//
// # Quick Start
//
//	type SMTPConfig struct {
//	    Host string `koanf:"host" validate:"required,hostname|ip"`
//	    Port int    `koanf:"port" validate:"gte=1,lte=65535"`
//	}
//
//	if verr := validation.ValidateStruct(&cfg); verr != nil {
//	    return fmt.Errorf("invalid configuration: %w", verr)
//	}
package validation
