// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"fmt"

	"github.com/samuelfneumann/sflearn/utils/floatutils"
	"gonum.org/v1/gonum/mat"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// MaxVec finds and returns the index of the maximum value in a vector.
// If multiple equal max values exist, only the first one is returned.
func MaxVec(values mat.Vector) int {
	max, idx := values.AtVec(0), 0

	for i := 1; i < values.Len(); i++ {
		if values.AtVec(i) > max {
			max = values.AtVec(i)
			idx = i
		}
	}
	return idx
}

// ColMax returns the maximum value of each column of a matrix
func ColMax(m mat.Matrix) []float64 {
	r, c := m.Dims()
	maxes := make([]float64, c)

	for j := 0; j < c; j++ {
		maxes[j] = m.At(0, j)
		for i := 1; i < r; i++ {
			if v := m.At(i, j); v > maxes[j] {
				maxes[j] = v
			}
		}
	}
	return maxes
}

// RowMax returns the maximum value of each row of a matrix
func RowMax(m mat.Matrix) []float64 {
	return ColMax(m.T())
}

// ArgMaxColMax returns the column whose maximum value is largest. For a
// matrix of action values with one row per policy and one column per
// action, this is the greedy action under generalized policy
// improvement. Ties are broken by the lowest column index.
func ArgMaxColMax(m mat.Matrix) int {
	_, indices := floatutils.MaxSlice(ColMax(m))
	return indices[0]
}

// ArgMaxRowMax returns the row whose maximum value is largest, breaking
// ties by the lowest row index
func ArgMaxRowMax(m mat.Matrix) int {
	_, indices := floatutils.MaxSlice(RowMax(m))
	return indices[0]
}

// Flatten returns a new vector holding the elements of m in row major
// order
func Flatten(m mat.Matrix) *mat.VecDense {
	r, c := m.Dims()
	flat := mat.DenseCopyOf(m)
	return mat.NewVecDense(r*c, flat.RawMatrix().Data)
}
