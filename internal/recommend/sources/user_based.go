// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package sources

import (
	"context"
	"sort"

	"github.com/watchroom/watchroom/internal/recommend"
	"github.com/watchroom/watchroom/internal/recommend/similarity"
)

// neighborCount bounds how many similar users contribute per group member.
const neighborCount = 10

// RatingProvider exposes the slice of the rating matrix UserBased needs.
// *dataset.Dataset satisfies it.
type RatingProvider interface {
	// UserVector returns the user's ratings aligned with ItemIDs.
	UserVector(userID int) ([]float64, bool)
	// ItemIDs returns all catalog item IDs in ascending order.
	ItemIDs() []int
}

// UserBased ranks movies by what the nearest neighbors of the group's
// members rated. For every member the top neighbors (by rating-vector
// similarity, excluding the member) contribute rating weighted by
// neighbor similarity.
type UserBased struct {
	matrix  *similarity.Matrix
	ratings RatingProvider
}

// NewUserBased creates a user-based collaborative filtering source over
// a precomputed user-user similarity matrix and the rating matrix.
func NewUserBased(m *similarity.Matrix, ratings RatingProvider) *UserBased {
	return &UserBased{matrix: m, ratings: ratings}
}

// Name implements recommend.Source.
func (s *UserBased) Name() string { return recommend.SourceUserBased }

// Rank implements recommend.Source.
func (s *UserBased) Rank(ctx context.Context, q recommend.Query, limit int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(q.Users) == 0 {
		return nil, nil
	}

	itemIDs := s.ratings.ItemIDs()
	scores := make([]float64, len(itemIDs))
	any := false

	for _, userID := range q.Users {
		for _, nb := range s.neighbors(userID) {
			vec, ok := s.ratings.UserVector(nb.id)
			if !ok {
				continue
			}
			for i, rating := range vec {
				if rating > 0 {
					scores[i] += rating * nb.sim
					any = true
				}
			}
		}
	}
	if !any {
		return nil, nil
	}

	order := make([]int, len(itemIDs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return itemIDs[order[a]] < itemIDs[order[b]]
	})

	if limit > len(order) {
		limit = len(order)
	}
	ranked := make([]int, limit)
	for i := 0; i < limit; i++ {
		ranked[i] = itemIDs[order[i]]
	}
	return ranked, nil
}

type neighbor struct {
	id  int
	sim float64
}

// neighbors returns the top neighborCount users most similar to userID,
// excluding userID itself. Ties break on ascending user ID.
func (s *UserBased) neighbors(userID int) []neighbor {
	row, ok := s.matrix.Row(userID)
	if !ok {
		return nil
	}

	labels := s.matrix.Labels
	candidates := make([]neighbor, 0, len(labels))
	for i, other := range labels {
		if other == userID {
			continue
		}
		candidates = append(candidates, neighbor{id: other, sim: row[i]})
	}
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].sim != candidates[b].sim {
			return candidates[a].sim > candidates[b].sim
		}
		return candidates[a].id < candidates[b].id
	})

	if len(candidates) > neighborCount {
		candidates = candidates[:neighborCount]
	}
	return candidates
}
