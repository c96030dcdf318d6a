// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

/*
Package pipeline runs one batch pass: it loads the purchase history,
computes recommendations, diffs them against the previous snapshot, pushes
the changes to the store and the cache, and persists the new snapshot.

Steps, in order:

	load_purchases   purchase history from the configured source
	                 (excluded products removed; an empty result ends the run)
	load_snapshot    previous snapshot, empty when the file does not exist
	compute          co-purchase aggregation and scoring
	diff             change set over the union of known product ids
	dispatch         store upserts and deletes, then cache invalidation
	write_snapshot   atomic replacement of the snapshot file
	publish_events   optional change notification
	report           summary rendering and optional email delivery

Source, snapshot and dispatch-cancellation errors are fatal: Run returns them
and the snapshot is left untouched, so the next run retries the same changes.
Store, cache, event and report errors are counted in the Result instead.
*/
package pipeline
