// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package cacheinvalidate

import (
	"errors"
	"fmt"
	"strings"
)

// Item is one entry of an invalidation batch.
type Item struct {
	Region         string `json:"region"`
	Key            string `json:"key"`
	CleanRegionInd bool   `json:"cleanRegionInd"`
}

// KeyDeriver maps a product to the cache entry holding its recommendations.
type KeyDeriver interface {
	Derive(productID int) (Item, error)
}

// ErrInvalidTemplate is returned for a key template without exactly one %d verb.
var ErrInvalidTemplate = errors.New("key template must contain exactly one %d verb")

// TemplateKeyDeriver builds keys by formatting the product id into a template,
// e.g. "recommendation:%d".
type TemplateKeyDeriver struct {
	region   string
	template string
}

// NewTemplateKeyDeriver validates template and returns a deriver.
func NewTemplateKeyDeriver(region, template string) (*TemplateKeyDeriver, error) {
	if strings.TrimSpace(region) == "" {
		return nil, errors.New("key region is required")
	}
	if strings.Count(template, "%") != 1 || strings.Count(template, "%d") != 1 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTemplate, template)
	}
	return &TemplateKeyDeriver{region: region, template: template}, nil
}

// Derive returns the item for productID. Positive ids only.
func (d *TemplateKeyDeriver) Derive(productID int) (Item, error) {
	if productID <= 0 {
		return Item{}, fmt.Errorf("invalid product id %d for cache key", productID)
	}
	return Item{
		Region:         d.region,
		Key:            fmt.Sprintf(d.template, productID),
		CleanRegionInd: false,
	}, nil
}
