// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

// Package similarity provides the similarity matrices backing the signal
// sources: cosine similarity over rating vectors and over TF-IDF content
// vectors, plus a persistent on-disk cache for the computed matrices.
package similarity

import (
	"fmt"
	"math"
)

// Matrix is a square, symmetric similarity matrix labelled by item or user
// IDs. Values are cosine similarities in [-1, 1] with a unit diagonal.
//
// Labels and Data are exported for gob serialization; the label index is
// rebuilt on demand after decoding.
type Matrix struct {
	// Labels holds the ID of each row/column, in matrix order.
	Labels []int

	// Data holds the dense similarity values, row-major.
	Data [][]float64

	index map[int]int
}

// NewMatrix constructs a Matrix from labels and data.
// The caller guarantees data is square and aligned with labels.
func NewMatrix(labels []int, data [][]float64) *Matrix {
	m := &Matrix{Labels: labels, Data: data}
	m.buildIndex()
	return m
}

func (m *Matrix) buildIndex() {
	m.index = make(map[int]int, len(m.Labels))
	for i, id := range m.Labels {
		m.index[id] = i
	}
}

func (m *Matrix) ensureIndex() {
	if m.index == nil {
		m.buildIndex()
	}
}

// Dim returns the matrix dimension.
func (m *Matrix) Dim() int {
	return len(m.Labels)
}

// Contains reports whether the given ID labels a row.
func (m *Matrix) Contains(id int) bool {
	m.ensureIndex()
	_, ok := m.index[id]
	return ok
}

// Row returns the similarity row for the given ID.
// The returned slice is aligned with Labels and must not be modified.
func (m *Matrix) Row(id int) ([]float64, bool) {
	m.ensureIndex()
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	return m.Data[i], true
}

// At returns the similarity between two IDs, or 0 if either is unknown.
func (m *Matrix) At(a, b int) float64 {
	m.ensureIndex()
	i, ok := m.index[a]
	if !ok {
		return 0
	}
	j, ok := m.index[b]
	if !ok {
		return 0
	}
	return m.Data[i][j]
}

// SameLabels reports whether the matrix carries exactly the given labels
// in the same order. Used to decide whether a cached matrix is still valid
// for the current dataset.
func (m *Matrix) SameLabels(labels []int) bool {
	if len(m.Labels) != len(labels) {
		return false
	}
	for i, id := range m.Labels {
		if id != labels[i] {
			return false
		}
	}
	return true
}

// BuildCosine computes the pairwise cosine similarity matrix over the given
// vectors. vectors[i] corresponds to labels[i]; all vectors must share the
// same length. The diagonal is forced to exactly 1.0 and the result is
// symmetric by construction.
func BuildCosine(vectors [][]float64, labels []int) (*Matrix, error) {
	if len(vectors) != len(labels) {
		return nil, fmt.Errorf("similarity: %d vectors for %d labels", len(vectors), len(labels))
	}

	n := len(vectors)
	norms := make([]float64, n)
	for i, v := range vectors {
		norms[i] = vectorNorm(v)
	}

	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, n)
		data[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := 0.0
			if norms[i] > 0 && norms[j] > 0 {
				sim = dot(vectors[i], vectors[j]) / (norms[i] * norms[j])
			}
			data[i][j] = sim
			data[j][i] = sim
		}
	}

	return NewMatrix(labels, data), nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func vectorNorm(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
