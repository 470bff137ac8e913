// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package recommend

import (
	"context"
	"time"
)

// Query carries the group's viewing context to a signal source.
type Query struct {
	// Items is the union of the group's watched internal item IDs.
	Items []int `json:"items"`

	// Users is the set of users associated with the watched items.
	Users []int `json:"users"`
}

// Source produces a ranked candidate list for a query. Implementations
// return at most limit internal item IDs, most relevant first. An empty or
// entirely unmatched query yields an empty slice and no error.
type Source interface {
	// Name returns the source identifier (e.g. "item_based").
	Name() string

	// Rank returns ranked candidate item IDs for the query.
	Rank(ctx context.Context, q Query, limit int) ([]int, error)
}

// PopularityIndex supplies the cold-start candidate pool.
type PopularityIndex interface {
	// TopK returns the k most popular item IDs, descending.
	TopK(k int) []int

	// Weight returns the popularity weight of an item, 0 if unknown.
	Weight(id int) float64
}

// Resolver maps internal item IDs to the identifiers and titles exposed
// to clients. Items without a mapping are silently dropped from responses.
type Resolver interface {
	ExternalID(itemID int) (int, bool)
	Title(itemID int) (string, bool)
}

// Request is a single group recommendation request.
type Request struct {
	// WatchedItems is the union of the group's watched internal item IDs.
	// Empty means cold start.
	WatchedItems []int `json:"watched_items"`

	// Users is the set of users whose rating rows inform the user-based
	// source. Typically derived from the watched items.
	Users []int `json:"users"`

	// TopN is the number of recommendations to return.
	// Defaults to Config.DefaultTopN if zero.
	TopN int `json:"top_n,omitempty"`

	// Weights overrides the configured source weights for this request.
	Weights *Weights `json:"weights,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Recommendation is a single recommended movie in client terms.
type Recommendation struct {
	// MovieID is the external identifier.
	MovieID int `json:"movie_id"`

	// Title is the display title.
	Title string `json:"title"`

	// Score is the blended relevance score, higher is better.
	Score float64 `json:"score,omitempty"`
}

// Response is the result of a recommendation request.
type Response struct {
	// Recommendations is the ordered result list, best first.
	Recommendations []Recommendation `json:"recommendations"`

	// ColdStart indicates the popularity fallback produced the result.
	ColdStart bool `json:"cold_start"`

	// Sources lists the signal sources that contributed.
	Sources []string `json:"sources"`

	// Metadata contains timing and tracing information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and tracing information.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// LatencyMS is the total recommendation latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}
