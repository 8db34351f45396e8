package successor

import (
	"github.com/samuelfneumann/sflearn/utils/matutils/initializers/weights"
	"gonum.org/v1/gonum/mat"
)

// Default bounds of the uniform noise used to initialize table entries
const (
	DefaultNoiseLow  float64 = -0.01
	DefaultNoiseHigh float64 = 0.01
)

// NoiseFunc creates the initial ψ values for a state that has not been
// seen before. The returned matrix must have the argument number of rows
// and columns.
type NoiseFunc func(rows, cols int) *mat.Dense

// NoiseFrom returns a NoiseFunc which fills new matrices using the
// argument weight initializer
func NoiseFrom(init weights.Initializer) NoiseFunc {
	if init == nil {
		panic("init cannot be nil")
	}
	return func(rows, cols int) *mat.Dense {
		values := mat.NewDense(rows, cols, nil)
		init.Initialize(values)
		return values
	}
}

// UniformNoise returns a NoiseFunc which samples each entry
// independently from the uniform distribution over [low, high]
func UniformNoise(low, high float64, seed uint64) NoiseFunc {
	rand := weights.NewUniformUV(low, high, seed)
	return NoiseFrom(weights.NewLinearUV(rand))
}

// DefaultNoise returns a NoiseFunc which samples each entry
// independently from the uniform distribution over [-0.01, 0.01]
func DefaultNoise(seed uint64) NoiseFunc {
	return UniformNoise(DefaultNoiseLow, DefaultNoiseHigh, seed)
}

// ZeroNoise returns a NoiseFunc which initializes all entries to 0
func ZeroNoise() NoiseFunc {
	return NoiseFrom(weights.NewLinearUV(weights.NewZeroUV()))
}
