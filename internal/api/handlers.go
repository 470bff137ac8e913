// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package api

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/watchroom/watchroom/internal/dataset"
	"github.com/watchroom/watchroom/internal/recommend"
)

// Handler holds the dependencies of all HTTP handlers.
type Handler struct {
	engine  *recommend.Engine
	dataset *dataset.Dataset
	logger  zerolog.Logger
	started time.Time
}

// NewHandler creates the API handler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(engine *recommend.Engine, ds *dataset.Dataset, logger zerolog.Logger) *Handler {
	return &Handler{
		engine:  engine,
		dataset: ds,
		logger:  logger.With().Str("component", "api").Logger(),
		started: time.Now(),
	}
}
