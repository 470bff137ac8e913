// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package sources

import (
	"context"

	"github.com/watchroom/watchroom/internal/recommend"
	"github.com/watchroom/watchroom/internal/recommend/similarity"
)

// ContentBased ranks movies by textual similarity (title and genres) to
// the group's watched movies. The ranking logic is shared with ItemBased;
// only the underlying matrix differs.
type ContentBased struct {
	matrix *similarity.Matrix
}

// NewContentBased creates a content similarity source over a precomputed
// TF-IDF cosine matrix.
func NewContentBased(m *similarity.Matrix) *ContentBased {
	return &ContentBased{matrix: m}
}

// Name implements recommend.Source.
func (s *ContentBased) Name() string { return recommend.SourceContentBased }

// Rank implements recommend.Source.
func (s *ContentBased) Rank(ctx context.Context, q recommend.Query, limit int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rankSimilaritySum(s.matrix, q.Items, limit), nil
}
