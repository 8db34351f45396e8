package weights

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// LinearUV initializes a matrix of weights by drawing each weight
// independently from a univariate distribution
type LinearUV struct {
	distuv.Rander
}

// NewLinearUV  creates and returns a new LinearUV
func NewLinearUV(rand distuv.Rander) LinearUV {
	if rand == nil {
		panic("rand cannot be nil")
	}
	return LinearUV{rand}
}

// Initialize initializes a matrix of weights using values drawn from
// a univariate distribution. Elements are drawn in row major order.
func (l LinearUV) Initialize(weights *mat.Dense) {
	if weights == nil {
		return
	}

	raw := weights.RawMatrix()
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for j := range row {
			row[j] = l.Rand()
		}
	}
}
