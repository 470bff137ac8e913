// Watchroom - Group Movie Recommendation Service
// Copyright 2026 Watchroom Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/watchroom/watchroom

package similarity

import (
	"math"
	"testing"
)

func TestBuildCosineBasic(t *testing.T) {
	t.Parallel()

	vectors := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{1, 1, 0},
	}
	labels := []int{10, 20, 30}

	m, err := BuildCosine(vectors, labels)
	if err != nil {
		t.Fatalf("BuildCosine() error = %v", err)
	}

	if m.Dim() != 3 {
		t.Fatalf("Dim() = %d, want 3", m.Dim())
	}

	// Orthogonal vectors have zero similarity.
	if got := m.At(10, 20); got != 0 {
		t.Errorf("At(10, 20) = %f, want 0", got)
	}

	// cos between (1,0,0) and (1,1,0) is 1/sqrt(2).
	want := 1 / math.Sqrt2
	if got := m.At(10, 30); math.Abs(got-want) > 1e-12 {
		t.Errorf("At(10, 30) = %f, want %f", got, want)
	}
}

func TestBuildCosineSymmetryAndDiagonal(t *testing.T) {
	t.Parallel()

	vectors := [][]float64{
		{5, 3, 0, 1},
		{4, 0, 0, 1},
		{1, 1, 0, 5},
		{0, 0, 4, 4},
	}
	labels := []int{1, 2, 3, 4}

	m, err := BuildCosine(vectors, labels)
	if err != nil {
		t.Fatalf("BuildCosine() error = %v", err)
	}

	for _, a := range labels {
		if got := m.At(a, a); got != 1.0 {
			t.Errorf("At(%d, %d) = %f, want exactly 1.0", a, a, got)
		}
		for _, b := range labels {
			if m.At(a, b) != m.At(b, a) {
				t.Errorf("asymmetry: At(%d,%d)=%f At(%d,%d)=%f", a, b, m.At(a, b), b, a, m.At(b, a))
			}
			if v := m.At(a, b); v < -1.0000001 || v > 1.0000001 {
				t.Errorf("At(%d,%d) = %f out of [-1, 1]", a, b, v)
			}
		}
	}
}

func TestBuildCosineZeroVector(t *testing.T) {
	t.Parallel()

	m, err := BuildCosine([][]float64{{0, 0}, {1, 1}}, []int{1, 2})
	if err != nil {
		t.Fatalf("BuildCosine() error = %v", err)
	}

	if got := m.At(1, 2); got != 0 {
		t.Errorf("similarity with zero vector = %f, want 0", got)
	}
	// Diagonal stays 1 even for zero vectors.
	if got := m.At(1, 1); got != 1 {
		t.Errorf("At(1,1) = %f, want 1", got)
	}
}

func TestBuildCosineLabelMismatch(t *testing.T) {
	t.Parallel()

	if _, err := BuildCosine([][]float64{{1}}, []int{1, 2}); err == nil {
		t.Error("expected error for mismatched vectors and labels")
	}
}

func TestMatrixRowAndContains(t *testing.T) {
	t.Parallel()

	m := NewMatrix([]int{7, 8}, [][]float64{{1, 0.5}, {0.5, 1}})

	if !m.Contains(7) || m.Contains(99) {
		t.Error("Contains() gave wrong membership")
	}

	row, ok := m.Row(8)
	if !ok {
		t.Fatal("Row(8) not found")
	}
	if row[0] != 0.5 || row[1] != 1 {
		t.Errorf("Row(8) = %v, want [0.5 1]", row)
	}

	if _, ok := m.Row(99); ok {
		t.Error("Row(99) should not exist")
	}

	if got := m.At(7, 99); got != 0 {
		t.Errorf("At with unknown label = %f, want 0", got)
	}
}

func TestSameLabels(t *testing.T) {
	t.Parallel()

	m := NewMatrix([]int{1, 2, 3}, [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})

	tests := []struct {
		name   string
		labels []int
		want   bool
	}{
		{"identical", []int{1, 2, 3}, true},
		{"reordered", []int{3, 2, 1}, false},
		{"shorter", []int{1, 2}, false},
		{"longer", []int{1, 2, 3, 4}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.SameLabels(tt.labels); got != tt.want {
				t.Errorf("SameLabels(%v) = %v, want %v", tt.labels, got, tt.want)
			}
		})
	}
}
