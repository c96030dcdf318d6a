// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

// Package store persists per-product recommendation records in a key-value
// backend. DynamoDB is the production backend; BadgerDB serves local runs and
// tests.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/personalize/internal/recommend"
)

// TimestampLayout is the lastUpdated format, ISO-8601 UTC to the second.
const TimestampLayout = "2006-01-02T15:04:05Z"

// ErrNotFound is returned by Get when no record exists for the product.
var ErrNotFound = errors.New("recommendation record not found")

// Record is the persisted recommendation entry of one product.
type Record struct {
	ProductID   string `json:"productId"`
	Data        string `json:"data"`
	LastUpdated string `json:"lastUpdated"`
}

// NewRecord builds a record for productID with its ranked partners.
func NewRecord(productID int, recs []recommend.RecommendedProduct, now time.Time) (*Record, error) {
	if recs == nil {
		recs = []recommend.RecommendedProduct{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("marshal recommendations for %d: %w", productID, err)
	}
	return &Record{
		ProductID:   strconv.Itoa(productID),
		Data:        string(data),
		LastUpdated: now.UTC().Format(TimestampLayout),
	}, nil
}

// Recommendations decodes the data field.
func (r *Record) Recommendations() ([]recommend.RecommendedProduct, error) {
	var recs []recommend.RecommendedProduct
	if err := json.Unmarshal([]byte(r.Data), &recs); err != nil {
		return nil, fmt.Errorf("unmarshal recommendations for %s: %w", r.ProductID, err)
	}
	return recs, nil
}

// Store is a recommendation record backend.
//
// Put overwrites any existing record. Delete of an absent key succeeds.
type Store interface {
	Put(ctx context.Context, record *Record) error
	Delete(ctx context.Context, productID int) error
	Get(ctx context.Context, productID int) (*Record, error)
	Close() error
}
