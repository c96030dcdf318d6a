// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package store

import (
	"testing"
	"time"

	"github.com/tomtom215/personalize/internal/recommend"
)

func TestNewRecord(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 30, 45, 999, time.FixedZone("CET", 3600))
	recs := []recommend.RecommendedProduct{
		{ProductID: 2, Score: 1, ScoreType: recommend.ScoreTypeCombined},
		{ProductID: 3, Score: 0.25, ScoreType: recommend.ScoreTypeCombined},
	}

	record, err := NewRecord(1, recs, now)
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}

	if record.ProductID != "1" {
		t.Errorf("ProductID = %q, want %q", record.ProductID, "1")
	}
	if record.LastUpdated != "2026-03-01T11:30:45Z" {
		t.Errorf("LastUpdated = %q, want %q", record.LastUpdated, "2026-03-01T11:30:45Z")
	}
	wantData := `[{"productId":2,"score":1,"scoreType":"combined"},{"productId":3,"score":0.25,"scoreType":"combined"}]`
	if record.Data != wantData {
		t.Errorf("Data = %s, want %s", record.Data, wantData)
	}

	decoded, err := record.Recommendations()
	if err != nil {
		t.Fatalf("Recommendations() error = %v", err)
	}
	if len(decoded) != 2 || decoded[1].ProductID != 3 || decoded[1].Score != 0.25 {
		t.Errorf("Recommendations() = %+v", decoded)
	}
}

func TestNewRecord_NilRecommendations(t *testing.T) {
	record, err := NewRecord(7, nil, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	if record.Data != "[]" {
		t.Errorf("Data = %q, want []", record.Data)
	}
}
