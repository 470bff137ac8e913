// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package recommend_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/watchroom/watchroom/internal/dataset"
	"github.com/watchroom/watchroom/internal/recommend"
	"github.com/watchroom/watchroom/internal/recommend/similarity"
	"github.com/watchroom/watchroom/internal/recommend/sources"
)

const integrationMovies = `movieId,title,genres,db_id
1,Toy Story,Animation|Comedy,101
2,Jumanji,Adventure|Fantasy,102
3,Heat,Action|Crime,103
4,Casino,Crime|Drama,104
5,Sabrina,Comedy|Romance,105
6,GoldenEye,Action|Thriller,106
7,Seven,Crime|Thriller,107
8,Babe,Comedy|Drama,108
9,Nixon,Drama,109
10,Ransom,Action|Drama|Thriller,110
`

const integrationRatings = `userId,movieId,rating
1,1,5.0
1,2,4.0
1,5,3.0
2,1,4.0
2,3,5.0
2,7,4.5
3,3,4.0
3,4,5.0
3,9,3.5
4,2,3.0
4,6,4.0
4,10,4.5
5,5,4.0
5,8,5.0
5,1,2.0
`

func buildFixtureEngine(t *testing.T) (*recommend.Engine, *dataset.Dataset) {
	t.Helper()

	dir := t.TempDir()
	moviesPath := filepath.Join(dir, "movies.csv")
	ratingsPath := filepath.Join(dir, "ratings.csv")
	if err := os.WriteFile(moviesPath, []byte(integrationMovies), 0o600); err != nil {
		t.Fatalf("write movies: %v", err)
	}
	if err := os.WriteFile(ratingsPath, []byte(integrationRatings), 0o600); err != nil {
		t.Fatalf("write ratings: %v", err)
	}

	ds, err := dataset.Load(moviesPath, ratingsPath)
	if err != nil {
		t.Fatalf("dataset.Load: %v", err)
	}

	store, err := similarity.NewStore(filepath.Join(dir, "cache"), zerolog.Nop())
	if err != nil {
		t.Fatalf("similarity.NewStore: %v", err)
	}

	ctx := context.Background()
	itemMatrix, err := store.LoadOrBuild(ctx, "item", ds.ItemIDs(), func(context.Context) (*similarity.Matrix, error) {
		return similarity.BuildCosine(ds.ItemVectors(), ds.ItemIDs())
	})
	if err != nil {
		t.Fatalf("item matrix: %v", err)
	}
	userMatrix, err := store.LoadOrBuild(ctx, "user", ds.UserIDs(), func(context.Context) (*similarity.Matrix, error) {
		return similarity.BuildCosine(ds.UserVectors(), ds.UserIDs())
	})
	if err != nil {
		t.Fatalf("user matrix: %v", err)
	}
	contentMatrix, err := store.LoadOrBuild(ctx, "content", ds.ItemIDs(), func(context.Context) (*similarity.Matrix, error) {
		return similarity.BuildCosine(similarity.Vectorize(ds.Contents()), ds.ItemIDs())
	})
	if err != nil {
		t.Fatalf("content matrix: %v", err)
	}

	popularity := sources.NewPopularity(ds.ItemIDs(), ds.PopularityWeights())
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), ds, popularity, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for _, reg := range []struct {
		name string
		src  recommend.Source
	}{
		{recommend.SourceItemBased, sources.NewItemBased(itemMatrix)},
		{recommend.SourceUserBased, sources.NewUserBased(userMatrix, ds)},
		{recommend.SourceContentBased, sources.NewContentBased(contentMatrix)},
	} {
		if err := engine.RegisterSource(reg.name, reg.src); err != nil {
			t.Fatalf("RegisterSource(%s): %v", reg.name, err)
		}
	}
	return engine, ds
}

func TestGroupRecommendationEndToEnd(t *testing.T) {
	t.Parallel()

	engine, ds := buildFixtureEngine(t)

	// Two viewers with histories {101, 102} and {103} in external IDs.
	watched := ds.ToInternal([]int{101, 102, 103})
	if len(watched) != 3 {
		t.Fatalf("resolved %d watched movies, want 3", len(watched))
	}

	weights := recommend.DefaultWeights()
	resp, err := engine.Recommend(context.Background(), recommend.Request{
		WatchedItems: watched,
		Users:        ds.UsersForItems(watched),
		TopN:         2,
		Weights:      &weights,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.ColdStart {
		t.Fatal("history-backed request took the cold-start path")
	}
	if len(resp.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(resp.Recommendations))
	}

	seen := make(map[int]bool)
	for _, rec := range resp.Recommendations {
		if rec.MovieID == 101 || rec.MovieID == 102 || rec.MovieID == 103 {
			t.Errorf("watched movie %d recommended back", rec.MovieID)
		}
		if seen[rec.MovieID] {
			t.Errorf("duplicate movie %d", rec.MovieID)
		}
		seen[rec.MovieID] = true
		if rec.Title == "" {
			t.Errorf("movie %d missing title", rec.MovieID)
		}
		if rec.Score <= 0 {
			t.Errorf("movie %d has non-positive score %v", rec.MovieID, rec.Score)
		}
	}
}

func TestGroupRecommendationDeterministic(t *testing.T) {
	t.Parallel()

	engine, ds := buildFixtureEngine(t)
	watched := ds.ToInternal([]int{101, 102, 103})
	req := recommend.Request{
		WatchedItems: watched,
		Users:        ds.UsersForItems(watched),
		TopN:         5,
	}

	a, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	b, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(a.Recommendations) != len(b.Recommendations) {
		t.Fatalf("result sizes differ: %d vs %d", len(a.Recommendations), len(b.Recommendations))
	}
	for i := range a.Recommendations {
		if a.Recommendations[i].MovieID != b.Recommendations[i].MovieID {
			t.Fatalf("position %d differs: %d vs %d", i,
				a.Recommendations[i].MovieID, b.Recommendations[i].MovieID)
		}
	}
}

func TestColdStartAgainstRealPopularity(t *testing.T) {
	t.Parallel()

	engine, _ := buildFixtureEngine(t)

	resp, err := engine.Recommend(context.Background(), recommend.Request{TopN: 3})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !resp.ColdStart {
		t.Fatal("expected cold-start response")
	}
	if len(resp.Recommendations) != 3 {
		t.Fatalf("got %d recommendations, want 3", len(resp.Recommendations))
	}
}
