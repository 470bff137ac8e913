// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package api

import (
	"github.com/watchroom/watchroom/internal/recommend"
)

// groupRecommendRequest is the payload of POST /api/v1/recommend/group.
// WatchedMovies holds one watch history per group member, in external
// (client-facing) movie IDs. Histories may be empty; a group where every
// history is empty takes the cold-start path.
type groupRecommendRequest struct {
	WatchedMovies [][]int         `json:"watched_movies" validate:"required,min=1"`
	TopN          *int            `json:"top_n" validate:"omitempty,min=1"`
	Weights       *weightsPayload `json:"weights"`
}

// weightsPayload overrides the configured merge weights for one request.
// All three fields are required together and must sum to 1.
type weightsPayload struct {
	ItemBased    *float64 `json:"item_based" validate:"required"`
	UserBased    *float64 `json:"user_based" validate:"required"`
	ContentBased *float64 `json:"content_based" validate:"required"`
}

// toWeights converts the payload to engine weights.
func (p *weightsPayload) toWeights() recommend.Weights {
	return recommend.Weights{
		ItemBased:    *p.ItemBased,
		UserBased:    *p.UserBased,
		ContentBased: *p.ContentBased,
	}
}

// flattenHistories merges all member histories into one deduplicated ID
// list, preserving first-seen order.
func flattenHistories(histories [][]int) []int {
	seen := make(map[int]struct{})
	flat := make([]int, 0)
	for _, history := range histories {
		for _, id := range history {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			flat = append(flat, id)
		}
	}
	return flat
}
