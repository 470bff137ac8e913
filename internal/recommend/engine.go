// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

// Package recommend implements the hybrid ranking engine. Three signal
// sources (item-based CF, user-based CF, content similarity) are queried
// concurrently and their ranked lists blended by rank position:
//
//	score(item) = sum over sources of weight * 1/(1+position)
//
// Groups with no usable history skip the sources entirely and receive a
// weighted random sample of the most popular items instead.
package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/watchroom/watchroom/internal/metrics"
)

// sourceOrder fixes the blend order so score accumulation is deterministic.
var sourceOrder = []string{SourceItemBased, SourceUserBased, SourceContentBased}

// Engine blends ranked lists from the registered signal sources into a
// single group recommendation.
type Engine struct {
	cfg        *Config
	logger     zerolog.Logger
	resolver   Resolver
	popularity PopularityIndex
	sources    map[string]Source

	// rngMu guards rng; cold-start sampling is the only writer.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewEngine creates a recommendation engine. The resolver and popularity
// index are required; the three signal sources are attached afterwards via
// RegisterSource.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg *Config, resolver Resolver, popularity PopularityIndex, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if popularity == nil {
		return nil, fmt.Errorf("popularity index is required")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}

	return &Engine{
		cfg:        cfg.Clone(),
		logger:     logger.With().Str("component", "engine").Logger(),
		resolver:   resolver,
		popularity: popularity,
		sources:    make(map[string]Source, len(sourceOrder)),
		rng:        rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic sampling, not security-sensitive
	}, nil
}

// RegisterSource attaches a signal source under one of the three known
// names. Registering an unknown name or the same name twice is an error.
func (e *Engine) RegisterSource(name string, src Source) error {
	known := false
	for _, n := range sourceOrder {
		if n == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown source name %q", name)
	}
	if _, dup := e.sources[name]; dup {
		return fmt.Errorf("source %q already registered", name)
	}
	e.sources[name] = src
	return nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.cfg.Clone()
}

// Recommend produces a ranked recommendation list for a group request.
//
// The watched items are always excluded from the result. A request with no
// watched items takes the cold-start path and never touches the signal
// sources. The first source failure aborts the request.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	topN := req.TopN
	if topN <= 0 {
		topN = e.cfg.DefaultTopN
	}
	if topN > e.cfg.MaxTopN {
		topN = e.cfg.MaxTopN
	}

	weights := e.cfg.Weights
	if req.Weights != nil {
		weights = *req.Weights
	}
	// The looser 0.01 tolerance applies only in request validation; the
	// merge itself rejects anything off by more than 1e-6.
	if err := weights.validateStrict(); err != nil {
		metrics.RecommendRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("merge weights: %w", err)
	}

	if len(req.WatchedItems) == 0 {
		resp := e.coldStart(topN, req)
		resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
		metrics.RecommendRequestsTotal.WithLabelValues("cold_start").Inc()
		metrics.RecommendDuration.Observe(time.Since(start).Seconds())
		return resp, nil
	}

	ranked, err := e.fanOut(ctx, req, overfetchFactor*topN)
	if err != nil {
		metrics.RecommendRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	scored := blend(ranked, weights)

	watched := make(map[int]struct{}, len(req.WatchedItems))
	for _, id := range req.WatchedItems {
		watched[id] = struct{}{}
	}

	candidates := make([]scoredID, 0, len(scored))
	for id, score := range scored {
		if _, isWatched := watched[id]; isWatched {
			continue
		}
		candidates = append(candidates, scoredID{id: id, score: score})
	}

	// Descending score; ascending item ID breaks ties reproducibly.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	resp := &Response{
		Recommendations: e.resolve(candidates),
		Sources:         append([]string(nil), sourceOrder...),
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			LatencyMS: time.Since(start).Milliseconds(),
			Timestamp: time.Now(),
		},
	}

	e.logger.Debug().
		Str("request_id", req.RequestID).
		Int("watched", len(req.WatchedItems)).
		Int("returned", len(resp.Recommendations)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation served")

	metrics.RecommendRequestsTotal.WithLabelValues("ok").Inc()
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	return resp, nil
}

type scoredID struct {
	id    int
	score float64
}

// fanOut queries all signal sources concurrently and blocks until every
// source has returned. Results keep sourceOrder positions.
func (e *Engine) fanOut(ctx context.Context, req Request, limit int) ([][]int, error) {
	for _, name := range sourceOrder {
		if _, ok := e.sources[name]; !ok {
			return nil, fmt.Errorf("source %q not registered", name)
		}
	}

	q := Query{Items: req.WatchedItems, Users: req.Users}
	ranked := make([][]int, len(sourceOrder))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range sourceOrder {
		src := e.sources[name]
		g.Go(func() error {
			sctx := gctx
			if e.cfg.SourceTimeout > 0 {
				var cancel context.CancelFunc
				sctx, cancel = context.WithTimeout(gctx, e.cfg.SourceTimeout)
				defer cancel()
			}

			srcStart := time.Now()
			ids, err := src.Rank(sctx, q, limit)
			metrics.ObserveSource(name, time.Since(srcStart))
			if err != nil {
				return fmt.Errorf("source %s: %w", name, err)
			}
			ranked[i] = ids
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ranked, nil
}

// blend accumulates rank-position scores across the sources.
func blend(ranked [][]int, weights Weights) map[int]float64 {
	byName := weights.ToMap()
	scores := make(map[int]float64)
	for i, name := range sourceOrder {
		w := byName[name]
		for pos, id := range ranked[i] {
			scores[id] += w * (1.0 / float64(1+pos))
		}
	}
	return scores
}

// coldStart serves a group with no usable history: a weighted random
// sample (without replacement) of the most popular items. The signal
// sources are never consulted.
func (e *Engine) coldStart(topN int, req Request) *Response {
	pool := e.popularity.TopK(overfetchFactor * topN)

	picked := e.sampleWeighted(pool, topN)

	candidates := make([]scoredID, len(picked))
	for i, id := range picked {
		candidates[i] = scoredID{id: id, score: 1.0 / float64(1+i)}
	}

	e.logger.Debug().
		Str("request_id", req.RequestID).
		Int("pool", len(pool)).
		Int("returned", len(candidates)).
		Msg("cold-start recommendation served")

	return &Response{
		Recommendations: e.resolve(candidates),
		ColdStart:       true,
		Sources:         []string{"popularity"},
		Metadata: ResponseMetadata{
			RequestID: req.RequestID,
			Timestamp: time.Now(),
		},
	}
}

// sampleWeighted draws up to n distinct IDs from the pool, each draw
// proportional to the item's popularity weight. A pool with zero total
// weight degrades to uniform draws. Reproducible under the configured seed.
func (e *Engine) sampleWeighted(pool []int, n int) []int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()

	remaining := append([]int(nil), pool...)
	weights := make([]float64, len(remaining))
	total := 0.0
	for i, id := range remaining {
		w := e.popularity.Weight(id)
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}

	if n > len(remaining) {
		n = len(remaining)
	}

	picked := make([]int, 0, n)
	for len(picked) < n {
		var idx int
		if total <= 0 {
			idx = e.rng.Intn(len(remaining))
		} else {
			r := e.rng.Float64() * total
			cum := 0.0
			idx = len(remaining) - 1
			for i, w := range weights {
				cum += w
				if r < cum {
					idx = i
					break
				}
			}
		}

		picked = append(picked, remaining[idx])
		total -= weights[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}

	return picked
}

// resolve maps internal candidates to client-facing records, silently
// dropping candidates without an external mapping.
func (e *Engine) resolve(candidates []scoredID) []Recommendation {
	recs := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		ext, ok := e.resolver.ExternalID(c.id)
		if !ok {
			continue
		}
		title, _ := e.resolver.Title(c.id)
		recs = append(recs, Recommendation{
			MovieID: ext,
			Title:   title,
			Score:   c.score,
		})
	}
	return recs
}
