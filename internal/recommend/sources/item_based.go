// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

// Package sources provides the three signal sources consumed by the
// hybrid engine: item-based collaborative filtering, user-based
// collaborative filtering, and content similarity. Each source returns
// a ranked list of internal movie IDs; scoring and blending happen in
// the engine.
package sources

import (
	"context"
	"sort"

	"github.com/watchroom/watchroom/internal/recommend"
	"github.com/watchroom/watchroom/internal/recommend/similarity"
)

// ItemBased ranks movies by their aggregate co-rating similarity to the
// group's watched movies.
type ItemBased struct {
	matrix *similarity.Matrix
}

// NewItemBased creates an item-based collaborative filtering source over
// a precomputed item-item similarity matrix.
func NewItemBased(m *similarity.Matrix) *ItemBased {
	return &ItemBased{matrix: m}
}

// Name implements recommend.Source.
func (s *ItemBased) Name() string { return recommend.SourceItemBased }

// Rank implements recommend.Source.
func (s *ItemBased) Rank(ctx context.Context, q recommend.Query, limit int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rankSimilaritySum(s.matrix, q.Items, limit), nil
}

// rankSimilaritySum sums the similarity rows of the seed items and
// returns every catalog item ordered by that aggregate, descending.
// Ties break on ascending item ID. Seeds unknown to the matrix
// contribute nothing; an empty seed set yields an empty ranking.
func rankSimilaritySum(m *similarity.Matrix, seeds []int, limit int) []int {
	if len(seeds) == 0 {
		return nil
	}

	labels := m.Labels
	scores := make([]float64, len(labels))
	any := false
	for _, seed := range seeds {
		row, ok := m.Row(seed)
		if !ok {
			continue
		}
		any = true
		for i, v := range row {
			scores[i] += v
		}
	}
	if !any {
		return nil
	}

	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return labels[order[a]] < labels[order[b]]
	})

	if limit > len(order) {
		limit = len(order)
	}
	ranked := make([]int, limit)
	for i := 0; i < limit; i++ {
		ranked[i] = labels[order[i]]
	}
	return ranked
}
