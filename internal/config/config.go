// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

// Package config loads and validates the service configuration. Settings
// layer in order of precedence: environment variables over an optional
// YAML config file over built-in defaults.
package config

import (
	"fmt"
	"math"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host"`
	// Port is the listen port.
	Port int `koanf:"port"`
	// Timeout bounds request read/write and shutdown grace.
	Timeout time.Duration `koanf:"timeout"`
}

// DataConfig locates the catalog and rating files and the similarity cache.
type DataConfig struct {
	// MoviesPath is the movie catalog CSV (movieId, title, genres, db_id).
	MoviesPath string `koanf:"movies_path"`
	// RatingsPath is the rating CSV (userId, movieId, rating).
	RatingsPath string `koanf:"ratings_path"`
	// CacheDir holds the persisted similarity matrices.
	CacheDir string `koanf:"cache_dir"`
}

// RecommendConfig holds the recommendation engine settings.
type RecommendConfig struct {
	// ItemWeight, UserWeight and ContentWeight are the default merge
	// weights. They must be non-negative and sum to 1.
	ItemWeight    float64 `koanf:"item_weight"`
	UserWeight    float64 `koanf:"user_weight"`
	ContentWeight float64 `koanf:"content_weight"`
	// DefaultTopN is the list size when a request omits top_n.
	DefaultTopN int `koanf:"default_top_n"`
	// MaxTopN caps the requested list size.
	MaxTopN int `koanf:"max_top_n"`
	// SourceTimeout bounds each signal source per request.
	SourceTimeout time.Duration `koanf:"source_timeout"`
	// Seed feeds the cold-start sampler for reproducible output.
	Seed int64 `koanf:"seed"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	// RateLimitReqs is the allowed requests per window per client IP.
	RateLimitReqs int `koanf:"rate_limit_reqs"`
	// RateLimitWindow is the rate limit window duration.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	// RateLimitDisabled turns off rate limiting entirely.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is "json" or "console".
	Format string `koanf:"format"`
	// Caller adds file:line to every event.
	Caller bool `koanf:"caller"`
}

// weightSumTolerance allows small floating point drift in configured weights.
const weightSumTolerance = 0.01

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}

	if c.Data.MoviesPath == "" {
		return fmt.Errorf("data.movies_path is required")
	}
	if c.Data.RatingsPath == "" {
		return fmt.Errorf("data.ratings_path is required")
	}
	if c.Data.CacheDir == "" {
		return fmt.Errorf("data.cache_dir is required")
	}

	r := c.Recommend
	if r.ItemWeight < 0 || r.UserWeight < 0 || r.ContentWeight < 0 {
		return fmt.Errorf("recommend weights must be non-negative")
	}
	sum := r.ItemWeight + r.UserWeight + r.ContentWeight
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("recommend weights must sum to 1, got %.4f", sum)
	}
	if r.DefaultTopN < 1 {
		return fmt.Errorf("recommend.default_top_n must be at least 1, got %d", r.DefaultTopN)
	}
	if r.MaxTopN < r.DefaultTopN {
		return fmt.Errorf("recommend.max_top_n (%d) must not be below default_top_n (%d)",
			r.MaxTopN, r.DefaultTopN)
	}
	if r.SourceTimeout <= 0 {
		return fmt.Errorf("recommend.source_timeout must be positive, got %s", r.SourceTimeout)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
