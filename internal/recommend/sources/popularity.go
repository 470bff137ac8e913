// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package sources

import "sort"

// Popularity indexes catalog items by aggregate rating mass. It backs the
// engine's cold-start path as recommend.PopularityIndex.
type Popularity struct {
	ranked  []int
	weights map[int]float64
}

// NewPopularity builds a popularity index from parallel slices of item
// IDs and their aggregate rating weights. The ranking is descending by
// weight with ascending ID breaking ties.
func NewPopularity(ids []int, weights []float64) *Popularity {
	p := &Popularity{
		ranked:  append([]int(nil), ids...),
		weights: make(map[int]float64, len(ids)),
	}
	for i, id := range ids {
		if i < len(weights) {
			p.weights[id] = weights[i]
		}
	}
	sort.Slice(p.ranked, func(a, b int) bool {
		wa, wb := p.weights[p.ranked[a]], p.weights[p.ranked[b]]
		if wa != wb {
			return wa > wb
		}
		return p.ranked[a] < p.ranked[b]
	})
	return p
}

// TopK returns the k most popular item IDs.
func (p *Popularity) TopK(k int) []int {
	if k > len(p.ranked) {
		k = len(p.ranked)
	}
	return append([]int(nil), p.ranked[:k]...)
}

// Weight returns the aggregate rating weight of an item, 0 for unknown IDs.
func (p *Popularity) Weight(id int) float64 { return p.weights[id] }
