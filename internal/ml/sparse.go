package ml

import (
	"math"
	"sort"
)

// SparseVector holds the non-zero entries of a row. Indices are strictly increasing.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Matrix is a batch of sparse rows sharing the same column space.
type Matrix struct {
	Rows []SparseVector
	Cols int
}

// Len returns the number of rows.
func (m Matrix) Len() int {
	return len(m.Rows)
}

// Subset returns a matrix with the rows at idx, in order.
func (m Matrix) Subset(idx []int) Matrix {
	rows := make([]SparseVector, len(idx))
	for i, j := range idx {
		rows[i] = m.Rows[j]
	}
	return Matrix{Rows: rows, Cols: m.Cols}
}

// Get returns the value stored at column i, or zero.
func (v SparseVector) Get(i int) float64 {
	k := sort.SearchInts(v.Indices, i)
	if k < len(v.Indices) && v.Indices[k] == i {
		return v.Values[k]
	}
	return 0
}

// Dot computes the inner product with a dense vector. Indices beyond len(w) are ignored.
func (v SparseVector) Dot(w []float64) float64 {
	var sum float64
	for k, i := range v.Indices {
		if i < len(w) {
			sum += v.Values[k] * w[i]
		}
	}
	return sum
}

// DotSparse computes the inner product of two sparse vectors.
func (v SparseVector) DotSparse(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm returns the euclidean length.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func subsetLabels(labels []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = labels[j]
	}
	return out
}
