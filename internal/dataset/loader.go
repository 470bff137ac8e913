// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Load reads the movie catalog and the ratings table from CSV files and
// assembles an immutable Dataset. Any read or parse error is returned;
// the service refuses to start on a partial dataset.
//
// Expected columns (by header name, order-independent):
//
//	movies:  movieId, title, genres, db_id (db_id optional per row)
//	ratings: userId, movieId, rating
//
// Movie rows with an empty title or empty genres are dropped. Ratings that
// reference an unknown movie are ignored.
func Load(moviesPath, ratingsPath string) (*Dataset, error) {
	movies, byExternal, err := loadMovies(moviesPath)
	if err != nil {
		return nil, fmt.Errorf("load movies: %w", err)
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("load movies: no usable rows in %s", moviesPath)
	}

	// Catalog order is ascending item ID; the same index addresses the
	// movies slice and the rating matrix columns.
	sort.Slice(movies, func(i, j int) bool { return movies[i].ID < movies[j].ID })

	d := &Dataset{
		movies:     movies,
		byExternal: byExternal,
	}

	d.itemIDs = make([]int, len(movies))
	d.itemIndex = make(map[int]int, len(movies))
	for i, m := range movies {
		d.itemIDs[i] = m.ID
		d.itemIndex[m.ID] = i
	}

	triples, err := loadRatings(ratingsPath)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	userSet := make(map[int]struct{})
	for _, tr := range triples {
		if _, ok := d.itemIndex[tr.itemID]; !ok {
			continue
		}
		userSet[tr.userID] = struct{}{}
	}

	d.userIDs = make([]int, 0, len(userSet))
	for userID := range userSet {
		d.userIDs = append(d.userIDs, userID)
	}
	sort.Ints(d.userIDs)

	d.userIndex = make(map[int]int, len(d.userIDs))
	for row, userID := range d.userIDs {
		d.userIndex[userID] = row
	}

	d.ratings = make([][]float64, len(d.userIDs))
	for row := range d.ratings {
		d.ratings[row] = make([]float64, len(d.itemIDs))
	}
	for _, tr := range triples {
		col, ok := d.itemIndex[tr.itemID]
		if !ok {
			continue
		}
		d.ratings[d.userIndex[tr.userID]][col] = tr.value
	}

	return d, nil
}

type ratingTriple struct {
	userID int
	itemID int
	value  float64
}

// loadMovies parses the catalog CSV, dropping rows with empty title or genres.
func loadMovies(path string) ([]Movie, map[int]int, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols := headerIndex(header)

	idCol, ok := cols["movieid"]
	if !ok {
		return nil, nil, fmt.Errorf("missing movieId column in %s", path)
	}
	titleCol, ok := cols["title"]
	if !ok {
		return nil, nil, fmt.Errorf("missing title column in %s", path)
	}
	genresCol, ok := cols["genres"]
	if !ok {
		return nil, nil, fmt.Errorf("missing genres column in %s", path)
	}
	externalCol, hasExternalCol := cols["db_id"]

	var movies []Movie
	byExternal := make(map[int]int)
	seen := make(map[int]struct{})

	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}

		id, err := strconv.Atoi(strings.TrimSpace(field(record, idCol)))
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: invalid movieId: %w", line, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}

		title := strings.TrimSpace(field(record, titleCol))
		genres := strings.TrimSpace(field(record, genresCol))
		if title == "" || genres == "" {
			continue
		}

		m := Movie{
			ID:      id,
			Title:   title,
			Genres:  genres,
			Content: title + " " + strings.ReplaceAll(genres, "|", " "),
		}

		if hasExternalCol {
			if raw := strings.TrimSpace(field(record, externalCol)); raw != "" {
				ext, err := strconv.Atoi(raw)
				if err != nil {
					return nil, nil, fmt.Errorf("line %d: invalid db_id: %w", line, err)
				}
				m.ExternalID = ext
				m.HasExternalID = true
				byExternal[ext] = id
			}
		}

		seen[id] = struct{}{}
		movies = append(movies, m)
	}

	return movies, byExternal, nil
}

// loadRatings parses the ratings CSV into (user, item, value) triples.
func loadRatings(path string) ([]ratingTriple, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := headerIndex(header)

	userCol, ok := cols["userid"]
	if !ok {
		return nil, fmt.Errorf("missing userId column in %s", path)
	}
	itemCol, ok := cols["movieid"]
	if !ok {
		return nil, fmt.Errorf("missing movieId column in %s", path)
	}
	valueCol, ok := cols["rating"]
	if !ok {
		return nil, fmt.Errorf("missing rating column in %s", path)
	}

	var triples []ratingTriple
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		userID, err := strconv.Atoi(strings.TrimSpace(field(record, userCol)))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid userId: %w", line, err)
		}
		itemID, err := strconv.Atoi(strings.TrimSpace(field(record, itemCol)))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid movieId: %w", line, err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(field(record, valueCol)), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid rating: %w", line, err)
		}
		if value < 0 {
			return nil, fmt.Errorf("line %d: negative rating %f", line, value)
		}

		triples = append(triples, ratingTriple{userID: userID, itemID: itemID, value: value})
	}

	return triples, nil
}

// headerIndex maps lowercased header names to their column positions.
func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

// field returns record[i] or empty string when the row is short.
func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return record[i]
}
