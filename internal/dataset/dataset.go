// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

// Package dataset provides read-only access to the movie catalog and the
// user-item rating matrix loaded from CSV exports.
//
// All structures are immutable after Load; concurrent readers need no
// synchronization. Ratings use 0 to mean "unrated", so recommendation code
// treats only strictly positive entries as signal.
package dataset

import (
	"fmt"
	"sort"
)

// Movie is a single catalog entry.
type Movie struct {
	// ID is the internal catalog identifier (the movieId column).
	ID int

	// Title is the display title.
	Title string

	// Genres is the raw pipe-separated genre list.
	Genres string

	// Content is the text document used for content similarity:
	// title and genres joined with spaces.
	Content string

	// ExternalID is the public identifier clients use (the db_id column).
	// Valid only when HasExternalID is true.
	ExternalID    int
	HasExternalID bool
}

// Dataset holds the loaded catalog, the rating matrix and the ID mappings.
type Dataset struct {
	movies    []Movie
	itemIDs   []int // ascending
	itemIndex map[int]int
	userIDs   []int // ascending
	userIndex map[int]int

	// ratings is dense, rows aligned with userIDs, columns with itemIDs.
	ratings [][]float64

	byExternal map[int]int // external ID -> internal ID
}

// UnknownItemsError reports internal item IDs absent from the catalog.
type UnknownItemsError struct {
	IDs []int
}

func (e *UnknownItemsError) Error() string {
	return fmt.Sprintf("unknown movie ids: %v", e.IDs)
}

// ItemIDs returns all internal item IDs in ascending order.
// The returned slice must not be modified.
func (d *Dataset) ItemIDs() []int {
	return d.itemIDs
}

// UserIDs returns all user IDs in ascending order.
// The returned slice must not be modified.
func (d *Dataset) UserIDs() []int {
	return d.userIDs
}

// ItemCount returns the number of catalog items.
func (d *Dataset) ItemCount() int {
	return len(d.itemIDs)
}

// UserCount returns the number of users in the rating matrix.
func (d *Dataset) UserCount() int {
	return len(d.userIDs)
}

// Contents returns the content documents aligned with ItemIDs.
func (d *Dataset) Contents() []string {
	docs := make([]string, len(d.itemIDs))
	for i, id := range d.itemIDs {
		docs[i] = d.movies[d.itemIndex[id]].Content
	}
	return docs
}

// ItemVectors returns one rating vector per item over all users, aligned
// with ItemIDs. Used to build the item-item similarity matrix.
func (d *Dataset) ItemVectors() [][]float64 {
	vectors := make([][]float64, len(d.itemIDs))
	for col := range d.itemIDs {
		vec := make([]float64, len(d.userIDs))
		for row := range d.userIDs {
			vec[row] = d.ratings[row][col]
		}
		vectors[col] = vec
	}
	return vectors
}

// UserVectors returns one rating vector per user over all items, aligned
// with UserIDs. Used to build the user-user similarity matrix.
func (d *Dataset) UserVectors() [][]float64 {
	return d.ratings
}

// UserVector returns the rating vector for a user, aligned with ItemIDs.
// The returned slice must not be modified.
func (d *Dataset) UserVector(userID int) ([]float64, bool) {
	row, ok := d.userIndex[userID]
	if !ok {
		return nil, false
	}
	return d.ratings[row], true
}

// Rating returns the rating a user gave an item, or 0 when unrated or
// either ID is unknown.
func (d *Dataset) Rating(userID, itemID int) float64 {
	row, ok := d.userIndex[userID]
	if !ok {
		return 0
	}
	col, ok := d.itemIndex[itemID]
	if !ok {
		return 0
	}
	return d.ratings[row][col]
}

// ToInternal translates external IDs to internal item IDs, silently
// dropping IDs with no mapping.
func (d *Dataset) ToInternal(external []int) []int {
	internal := make([]int, 0, len(external))
	for _, ext := range external {
		if id, ok := d.byExternal[ext]; ok {
			internal = append(internal, id)
		}
	}
	return internal
}

// ExternalID returns the external ID for an internal item ID.
func (d *Dataset) ExternalID(itemID int) (int, bool) {
	i, ok := d.itemIndex[itemID]
	if !ok {
		return 0, false
	}
	m := d.movies[i]
	if !m.HasExternalID {
		return 0, false
	}
	return m.ExternalID, true
}

// Title returns the title for an internal item ID.
func (d *Dataset) Title(itemID int) (string, bool) {
	i, ok := d.itemIndex[itemID]
	if !ok {
		return "", false
	}
	return d.movies[i].Title, true
}

// ValidateItemIDs checks that every ID exists in the catalog.
// On failure it returns an UnknownItemsError listing every missing ID.
func (d *Dataset) ValidateItemIDs(ids []int) error {
	var missing []int
	for _, id := range ids {
		if _, ok := d.itemIndex[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &UnknownItemsError{IDs: missing}
	}
	return nil
}

// UsersForItems returns the distinct users who rated any of the given
// items, in ascending order.
func (d *Dataset) UsersForItems(items []int) []int {
	seen := make(map[int]struct{})
	for _, itemID := range items {
		col, ok := d.itemIndex[itemID]
		if !ok {
			continue
		}
		for row, userID := range d.userIDs {
			if d.ratings[row][col] > 0 {
				seen[userID] = struct{}{}
			}
		}
	}

	users := make([]int, 0, len(seen))
	for userID := range seen {
		users = append(users, userID)
	}
	sort.Ints(users)
	return users
}

// PopularityWeights returns the aggregate rating per item, aligned with
// ItemIDs. This is the popularity metric used for cold-start sampling.
func (d *Dataset) PopularityWeights() []float64 {
	weights := make([]float64, len(d.itemIDs))
	for col := range d.itemIDs {
		sum := 0.0
		for row := range d.userIDs {
			sum += d.ratings[row][col]
		}
		weights[col] = sum
	}
	return weights
}
