// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package similarity

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/watchroom/watchroom/internal/metrics"
)

// MatrixMetadata describes a persisted similarity matrix.
type MatrixMetadata struct {
	// Key is the matrix namespace (e.g. "item", "user", "content").
	Key string `json:"key"`

	// Dim is the matrix dimension at save time.
	Dim int `json:"dim"`

	// Checksum is the SHA-256 checksum of the uncompressed gob payload.
	Checksum string `json:"checksum"`

	// SavedAt is when the matrix was persisted.
	SavedAt time.Time `json:"saved_at"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// storedMatrix is the on-disk format for matrix cache files.
type storedMatrix struct {
	Metadata       MatrixMetadata
	CompressedData []byte
}

// Store persists similarity matrices as gob+gzip files keyed by namespace.
//
// The cache is strictly an optimization: any load failure (missing file,
// corruption, checksum mismatch, stale labels) falls back to a full rebuild
// and the fresh matrix overwrites the cache entry. Load errors never
// propagate to callers.
type Store struct {
	baseDir string
	logger  zerolog.Logger
	mu      sync.Mutex
}

// NewStore creates a matrix store rooted at baseDir, creating it if needed.
func NewStore(baseDir string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for cache storage
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	return &Store{
		baseDir: baseDir,
		logger:  logger.With().Str("component", "similarity_store").Logger(),
	}, nil
}

// LoadOrBuild returns the cached matrix for key if it decodes cleanly and
// carries exactly the given labels; otherwise it invokes build, persists the
// result best-effort, and returns the fresh matrix. Concurrent calls for the
// same key serialize; last writer wins on disk.
func (s *Store) LoadOrBuild(ctx context.Context, key string, labels []int, build func(context.Context) (*Matrix, error)) (*Matrix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(key)
	if err == nil {
		if m.SameLabels(labels) {
			metrics.SimilarityCacheLoads.WithLabelValues(key, "hit").Inc()
			s.logger.Debug().Str("key", key).Int("dim", m.Dim()).Msg("similarity matrix loaded from cache")
			return m, nil
		}
		err = fmt.Errorf("cached labels do not match dataset (%d cached, %d current)", m.Dim(), len(labels))
	}

	if !os.IsNotExist(err) {
		s.logger.Warn().Err(err).Str("key", key).Msg("similarity cache unusable, rebuilding")
	}
	metrics.SimilarityCacheLoads.WithLabelValues(key, "rebuild").Inc()

	start := time.Now()
	m, buildErr := build(ctx)
	if buildErr != nil {
		return nil, fmt.Errorf("build %s similarity: %w", key, buildErr)
	}
	s.logger.Info().
		Str("key", key).
		Int("dim", m.Dim()).
		Dur("elapsed", time.Since(start)).
		Msg("similarity matrix rebuilt")

	if saveErr := s.save(key, m); saveErr != nil {
		// Cache persistence is best-effort; serving continues regardless.
		s.logger.Warn().Err(saveErr).Str("key", key).Msg("failed to persist similarity matrix")
	}

	return m, nil
}

// load reads and verifies a cached matrix.
func (s *Store) load(key string) (*Matrix, error) {
	f, err := os.Open(s.path(key)) //nolint:gosec // path is constructed from trusted key parameter
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedMatrix
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress matrix: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	var m Matrix
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode matrix: %w", err)
	}
	m.buildIndex()

	return &m, nil
}

// save persists a matrix under the given key, replacing any previous entry.
func (s *Store) save(key string, m *Matrix) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("encode matrix: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress matrix: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	sf := storedMatrix{
		Metadata: MatrixMetadata{
			Key:       key,
			Dim:       m.Dim(),
			Checksum:  hex.EncodeToString(hash[:]),
			SavedAt:   time.Now(),
			SizeBytes: int64(compressed.Len()),
		},
		CompressedData: compressed.Bytes(),
	}

	f, err := os.Create(s.path(key)) //nolint:gosec // path is constructed from trusted key parameter
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after write is logged via return

	if err := gob.NewEncoder(f).Encode(sf); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// path returns the cache file path for a key.
func (s *Store) path(key string) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s.gob.gz", key))
}
