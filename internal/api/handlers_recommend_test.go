// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/watchroom/watchroom/internal/dataset"
	"github.com/watchroom/watchroom/internal/recommend"
	"github.com/watchroom/watchroom/internal/recommend/similarity"
	"github.com/watchroom/watchroom/internal/recommend/sources"
)

const testMovies = `movieId,title,genres,db_id
1,Toy Story,Animation|Comedy,101
2,Jumanji,Adventure|Fantasy,102
3,Heat,Action|Crime,103
4,Casino,Crime|Drama,104
5,Sabrina,Comedy|Romance,105
6,GoldenEye,Action|Thriller,106
`

const testRatings = `userId,movieId,rating
1,1,5.0
1,2,4.0
2,1,4.0
2,3,5.0
3,3,4.0
3,4,5.0
4,5,4.0
4,6,3.0
`

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	dir := t.TempDir()
	moviesPath := filepath.Join(dir, "movies.csv")
	ratingsPath := filepath.Join(dir, "ratings.csv")
	if err := os.WriteFile(moviesPath, []byte(testMovies), 0o600); err != nil {
		t.Fatalf("write movies: %v", err)
	}
	if err := os.WriteFile(ratingsPath, []byte(testRatings), 0o600); err != nil {
		t.Fatalf("write ratings: %v", err)
	}

	ds, err := dataset.Load(moviesPath, ratingsPath)
	if err != nil {
		t.Fatalf("dataset.Load: %v", err)
	}

	itemMatrix, err := similarity.BuildCosine(ds.ItemVectors(), ds.ItemIDs())
	if err != nil {
		t.Fatalf("item matrix: %v", err)
	}
	userMatrix, err := similarity.BuildCosine(ds.UserVectors(), ds.UserIDs())
	if err != nil {
		t.Fatalf("user matrix: %v", err)
	}
	contentMatrix, err := similarity.BuildCosine(similarity.Vectorize(ds.Contents()), ds.ItemIDs())
	if err != nil {
		t.Fatalf("content matrix: %v", err)
	}

	popularity := sources.NewPopularity(ds.ItemIDs(), ds.PopularityWeights())
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), ds, popularity, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	for name, src := range map[string]recommend.Source{
		recommend.SourceItemBased:    sources.NewItemBased(itemMatrix),
		recommend.SourceUserBased:    sources.NewUserBased(userMatrix, ds),
		recommend.SourceContentBased: sources.NewContentBased(contentMatrix),
	} {
		if err := engine.RegisterSource(name, src); err != nil {
			t.Fatalf("RegisterSource(%s): %v", name, err)
		}
	}

	return NewHandler(engine, ds, zerolog.Nop())
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	cfg := DefaultRouterConfig()
	cfg.RateLimitDisabled = true
	return NewRouter(cfg, newTestHandler(t))
}

func postRecommend(t *testing.T, srv http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommend/group", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return resp
}

func TestRecommendGroupSuccess(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := postRecommend(t, srv, `{"watched_movies":[[101,102],[103]],"top_n":2}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp.Error)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data type %T", resp.Data)
	}
	recs, ok := data["recommendations"].([]interface{})
	if !ok {
		t.Fatalf("unexpected recommendations type %T", data["recommendations"])
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	if count, ok := data["count"].(float64); !ok || int(count) != 2 {
		t.Errorf("got count %v, want 2", data["count"])
	}
	for _, raw := range recs {
		entry := raw.(map[string]interface{})
		id := int(entry["movie_id"].(float64))
		if id == 101 || id == 102 || id == 103 {
			t.Errorf("watched movie %d recommended back", id)
		}
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestRecommendGroupColdStart(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	// Histories exist but contain only unknown external IDs.
	rec := postRecommend(t, srv, `{"watched_movies":[[999],[888]],"top_n":3}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]interface{})
	if coldStart, _ := data["cold_start"].(bool); !coldStart {
		t.Error("expected cold_start true for unresolvable histories")
	}
}

func TestRecommendGroupInvalidJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := postRecommend(t, srv, `{"watched_movies":[[1`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeBadRequest {
		t.Fatalf("got error %+v, want BAD_REQUEST", resp.Error)
	}
}

func TestRecommendGroupMissingHistories(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := postRecommend(t, srv, `{"top_n":5}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeValidationError {
		t.Fatalf("got error %+v, want VALIDATION_ERROR", resp.Error)
	}
}

func TestRecommendGroupInvalidWeights(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	body := `{"watched_movies":[[101]],"weights":{"item_based":0.5,"user_based":0.5,"content_based":0.5}}`
	rec := postRecommend(t, srv, body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeValidationError {
		t.Fatalf("got error %+v, want VALIDATION_ERROR", resp.Error)
	}
}

func TestRecommendGroupPartialWeights(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	body := `{"watched_movies":[[101]],"weights":{"item_based":1.0}}`
	rec := postRecommend(t, srv, body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

func TestRecommendGroupZeroTopN(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := postRecommend(t, srv, `{"watched_movies":[[101]],"top_n":0}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]interface{})
	if data["status"] != "ok" {
		t.Errorf("got status %v, want ok", data["status"])
	}
	if movies := int(data["movies"].(float64)); movies != 6 {
		t.Errorf("got %d movies, want 6", movies)
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Fatalf("got error %+v, want NOT_FOUND", resp.Error)
	}
}

func TestMetricsEndpointMounted(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
}
