// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

// Package snapshot persists the recommended partner set of every product
// between runs and detects which products changed.
//
// # File Format
//
// One line per product, UTF-8, newline terminated:
//
//	<productId>:<id1>;<id2>;...
//	<productId>:
//
// Partner ids are sorted ascending, so a line captures membership only. A
// product whose partners are re-ranked or re-scored produces the same line
// and is not reported as changed.
//
// On read, blank lines, lines without a ':' after a non-empty prefix, and
// lines whose prefix is not an integer are skipped.
//
// # Durability
//
// Write creates a temporary file in the target directory, syncs it, and
// renames it over the previous snapshot. A crash mid-write leaves the prior
// snapshot intact.
package snapshot
