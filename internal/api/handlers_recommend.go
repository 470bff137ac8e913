// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/watchroom/watchroom/internal/dataset"
	"github.com/watchroom/watchroom/internal/logging"
	"github.com/watchroom/watchroom/internal/recommend"
	"github.com/watchroom/watchroom/internal/validation"
)

// groupRecommendResponse is the data payload of a successful group
// recommendation.
type groupRecommendResponse struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Count           int                        `json:"count"`
	ColdStart       bool                       `json:"cold_start"`
	Sources         []string                   `json:"sources"`
}

// RecommendGroup handles POST /api/v1/recommend/group.
//
// The member histories arrive in external movie IDs. Unknown external IDs
// are dropped during translation; a group whose translated watched set is
// empty takes the cold-start path.
func (h *Handler) RecommendGroup(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()

	var req groupRecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	var weights *recommend.Weights
	if req.Weights != nil {
		override := req.Weights.toWeights()
		if err := override.Validate(); err != nil {
			rw.ValidationError(err.Error(), nil)
			return
		}
		weights = &override
	}

	watched := h.dataset.ToInternal(flattenHistories(req.WatchedMovies))
	if err := h.dataset.ValidateItemIDs(watched); err != nil {
		var unknown *dataset.UnknownItemsError
		if errors.As(err, &unknown) {
			rw.ValidationError(err.Error(), map[string]interface{}{"movie_ids": unknown.IDs})
			return
		}
		rw.ValidationError(err.Error(), nil)
		return
	}

	topN := 0
	if req.TopN != nil {
		topN = *req.TopN
	}

	resp, err := h.engine.Recommend(ctx, recommend.Request{
		WatchedItems: watched,
		Users:        h.dataset.UsersForItems(watched),
		TopN:         topN,
		Weights:      weights,
		RequestID:    logging.RequestIDFromContext(ctx),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("recommendation failed")
		rw.InternalError("Failed to compute recommendations")
		return
	}

	rw.Success(groupRecommendResponse{
		Recommendations: resp.Recommendations,
		Count:           len(resp.Recommendations),
		ColdStart:       resp.ColdStart,
		Sources:         resp.Sources,
	})
}
