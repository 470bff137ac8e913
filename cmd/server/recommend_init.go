// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package main

import (
	"context"
	"fmt"

	"github.com/watchroom/watchroom/internal/config"
	"github.com/watchroom/watchroom/internal/dataset"
	"github.com/watchroom/watchroom/internal/logging"
	"github.com/watchroom/watchroom/internal/recommend"
	"github.com/watchroom/watchroom/internal/recommend/similarity"
	"github.com/watchroom/watchroom/internal/recommend/sources"
)

// buildEngine assembles the recommendation engine: the three similarity
// matrices (loaded from the on-disk cache or recomputed), the signal
// sources over them, and the popularity index for cold starts.
func buildEngine(cfg *config.Config, ds *dataset.Dataset) (*recommend.Engine, error) {
	store, err := similarity.NewStore(cfg.Data.CacheDir, logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("similarity store: %w", err)
	}

	ctx := context.Background()

	itemMatrix, err := store.LoadOrBuild(ctx, "item", ds.ItemIDs(), func(context.Context) (*similarity.Matrix, error) {
		return similarity.BuildCosine(ds.ItemVectors(), ds.ItemIDs())
	})
	if err != nil {
		return nil, fmt.Errorf("item similarity: %w", err)
	}

	userMatrix, err := store.LoadOrBuild(ctx, "user", ds.UserIDs(), func(context.Context) (*similarity.Matrix, error) {
		return similarity.BuildCosine(ds.UserVectors(), ds.UserIDs())
	})
	if err != nil {
		return nil, fmt.Errorf("user similarity: %w", err)
	}

	contentMatrix, err := store.LoadOrBuild(ctx, "content", ds.ItemIDs(), func(context.Context) (*similarity.Matrix, error) {
		return similarity.BuildCosine(similarity.Vectorize(ds.Contents()), ds.ItemIDs())
	})
	if err != nil {
		return nil, fmt.Errorf("content similarity: %w", err)
	}

	engineCfg := buildEngineConfig(&cfg.Recommend)
	popularity := sources.NewPopularity(ds.ItemIDs(), ds.PopularityWeights())

	engine, err := recommend.NewEngine(engineCfg, ds, popularity, logging.Logger())
	if err != nil {
		return nil, err
	}

	for name, src := range map[string]recommend.Source{
		recommend.SourceItemBased:    sources.NewItemBased(itemMatrix),
		recommend.SourceUserBased:    sources.NewUserBased(userMatrix, ds),
		recommend.SourceContentBased: sources.NewContentBased(contentMatrix),
	} {
		if err := engine.RegisterSource(name, src); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}

	return engine, nil
}

// buildEngineConfig translates the service configuration into engine terms.
func buildEngineConfig(rc *config.RecommendConfig) *recommend.Config {
	return &recommend.Config{
		Weights: recommend.Weights{
			ItemBased:    rc.ItemWeight,
			UserBased:    rc.UserWeight,
			ContentBased: rc.ContentWeight,
		},
		DefaultTopN:   rc.DefaultTopN,
		MaxTopN:       rc.MaxTopN,
		SourceTimeout: rc.SourceTimeout,
		Seed:          rc.Seed,
	}
}
