// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package recommend

import (
	"math"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TopN != 5 {
		t.Errorf("TopN = %d, want 5", cfg.TopN)
	}
	if cfg.HalfLifeDays != 30 {
		t.Errorf("HalfLifeDays = %v, want 30", cfg.HalfLifeDays)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero top n", mutate: func(c *Config) { c.TopN = 0 }, wantErr: true},
		{name: "negative half-life", mutate: func(c *Config) { c.HalfLifeDays = -1 }, wantErr: true},
		{name: "zero half-life", mutate: func(c *Config) { c.HalfLifeDays = 0 }, wantErr: true},
		{name: "infinite half-life", mutate: func(c *Config) { c.HalfLifeDays = math.Inf(1) }, wantErr: true},
		{name: "weights not summing to one", mutate: func(c *Config) { c.Weights.Lift = 0.5 }, wantErr: true},
		{name: "negative weight", mutate: func(c *Config) { c.Weights = ScoreWeights{Count: -0.2, Lift: 0.9, Cosine: 0.3} }, wantErr: true},
		{name: "count only", mutate: func(c *Config) { c.Weights = ScoreWeights{Count: 1} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
