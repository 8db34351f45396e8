package weights

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// NewUniformUV returns a distuv.Rander which draws numbers uniformly
// from [low, high] using a source seeded with seed. NewUniformUV panics
// if high < low.
func NewUniformUV(low, high float64, seed uint64) distuv.Uniform {
	if high < low {
		panic(fmt.Sprintf("high = %v < low = %v", high, low))
	}

	return distuv.Uniform{
		Min: low,
		Max: high,
		Src: rand.NewSource(seed),
	}
}
