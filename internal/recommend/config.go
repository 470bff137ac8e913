// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package recommend

import (
	"fmt"
	"math"
	"time"
)

// Signal source identifiers. The engine always blends exactly these three;
// the popularity fallback only serves cold-start requests.
const (
	SourceItemBased    = "item_based"
	SourceUserBased    = "user_based"
	SourceContentBased = "content_based"
)

const (
	// overfetchFactor is how many candidates each source is asked for,
	// as a multiple of the requested top N. Overfetching keeps the final
	// list full after watched items and unmapped IDs are removed.
	overfetchFactor = 3

	// mergeWeightTolerance is the strict tolerance applied to the weight
	// sum at merge time.
	mergeWeightTolerance = 1e-6

	// weightSumTolerance is the looser tolerance used when validating
	// client-supplied weights.
	weightSumTolerance = 0.01
)

// Weights defines the relative contribution of each signal source.
// Weights must be non-negative and sum to 1.
type Weights struct {
	// ItemBased is the weight for item-item collaborative filtering.
	ItemBased float64 `json:"item_based"`

	// UserBased is the weight for user-user collaborative filtering.
	UserBased float64 `json:"user_based"`

	// ContentBased is the weight for TF-IDF content similarity.
	ContentBased float64 `json:"content_based"`
}

// DefaultWeights returns the default source blend.
func DefaultWeights() Weights {
	return Weights{
		ItemBased:    0.2,
		UserBased:    0.2,
		ContentBased: 0.6,
	}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.ItemBased + w.UserBased + w.ContentBased
}

// ToMap returns the weights keyed by source name.
func (w Weights) ToMap() map[string]float64 {
	return map[string]float64{
		SourceItemBased:    w.ItemBased,
		SourceUserBased:    w.UserBased,
		SourceContentBased: w.ContentBased,
	}
}

// Validate checks that weights are non-negative and sum to 1 within the
// client-facing tolerance of 0.01. Use this for request validation; the
// engine itself enforces the stricter merge tolerance.
func (w Weights) Validate() error {
	if w.ItemBased < 0 || w.UserBased < 0 || w.ContentBased < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", w)
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

// validateStrict applies the merge-time tolerance.
func (w Weights) validateStrict() error {
	if w.ItemBased < 0 || w.UserBased < 0 || w.ContentBased < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", w)
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > mergeWeightTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %.7f", sum)
	}
	return nil
}

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the default source blend.
	Weights Weights `json:"weights"`

	// DefaultTopN is the number of recommendations returned when the
	// request does not specify one.
	// Default: 20.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN is the maximum allowed top N value.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`

	// SourceTimeout is the maximum time a single signal source may take.
	// Default: 5s.
	SourceTimeout time.Duration `json:"source_timeout"`

	// Seed is the random seed for cold-start sampling.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights:       DefaultWeights(),
		DefaultTopN:   20,
		MaxTopN:       100,
		SourceTimeout: 5 * time.Second,
		Seed:          42,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.DefaultTopN < 1 {
		return fmt.Errorf("default_top_n must be positive, got %d", c.DefaultTopN)
	}
	if c.MaxTopN < c.DefaultTopN {
		return fmt.Errorf("max_top_n must be >= default_top_n, got %d < %d", c.MaxTopN, c.DefaultTopN)
	}
	if c.SourceTimeout <= 0 {
		return fmt.Errorf("source_timeout must be positive, got %v", c.SourceTimeout)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
