package successor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// countingNoise returns a NoiseFunc which fills matrices with the
// number of times it has been called
func countingNoise(calls *int) NoiseFunc {
	return func(rows, cols int) *mat.Dense {
		*calls++
		values := mat.NewDense(rows, cols, nil)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				values.Set(i, j, float64(*calls))
			}
		}
		return values
	}
}

func TestNewTableConfig(t *testing.T) {
	tests := []struct {
		name      string
		actions   int
		features  int
		noise     NoiseFunc
		wantError bool
	}{
		{"valid", 2, 3, ZeroNoise(), false},
		{"no actions", 0, 3, ZeroNoise(), true},
		{"no features", 2, 0, ZeroNoise(), true},
		{"nil noise", 2, 3, nil, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			table, err := NewTable[string](test.actions, test.features,
				test.noise)
			if test.wantError {
				assert.True(t, IsConfig(err), "expected config error, "+
					"got %v", err)
				return
			}
			require.NoError(t, err)
			r, c := table.Dims()
			assert.Equal(t, test.actions, r)
			assert.Equal(t, test.features, c)
		})
	}
}

func TestTableLazyInit(t *testing.T) {
	calls := 0
	table, err := NewTable[string](3, 2, countingNoise(&calls))
	require.NoError(t, err)

	assert.False(t, table.Has("a"))
	assert.Equal(t, 0, table.Len())

	first, err := table.Get("a")
	require.NoError(t, err)
	second, err := table.Get("a")
	require.NoError(t, err)

	assert.Same(t, first, second, "same state should give same matrix")
	assert.Equal(t, 1, calls, "noise should be called once per state")
	assert.True(t, table.Has("a"))

	// A new state must not disturb stored entries
	other, err := table.Get("b")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1.0, first.At(0, 0))
	assert.Equal(t, 2.0, other.At(0, 0))
	assert.ElementsMatch(t, []string{"a", "b"}, table.States())
}

func TestTableWritesPersist(t *testing.T) {
	table, err := NewTable[int](2, 2, ZeroNoise())
	require.NoError(t, err)

	entry, err := table.Get(7)
	require.NoError(t, err)
	entry.Set(1, 0, 3.5)

	again, err := table.Get(7)
	require.NoError(t, err)
	assert.Equal(t, 3.5, again.At(1, 0))
}

func TestTableShapeInvariant(t *testing.T) {
	table, err := NewTable[int](4, 3, DefaultNoise(1))
	require.NoError(t, err)

	for state := 0; state < 20; state++ {
		entry, err := table.Get(state)
		require.NoError(t, err)
		r, c := entry.Dims()
		assert.Equal(t, 4, r)
		assert.Equal(t, 3, c)
	}
}

func TestTableDefaultNoiseBounds(t *testing.T) {
	table, err := NewTable[int](5, 5, DefaultNoise(3))
	require.NoError(t, err)

	entry, err := table.Get(0)
	require.NoError(t, err)
	for _, v := range entry.RawMatrix().Data {
		assert.GreaterOrEqual(t, v, DefaultNoiseLow)
		assert.LessOrEqual(t, v, DefaultNoiseHigh)
	}
}

func TestTableBadNoise(t *testing.T) {
	wrongShape := func(rows, cols int) *mat.Dense {
		return mat.NewDense(rows+1, cols, nil)
	}
	table, err := NewTable[string](2, 2, wrongShape)
	require.NoError(t, err)

	_, err = table.Get("s")
	assert.True(t, IsConfig(err), "expected config error, got %v", err)
	assert.False(t, table.Has("s"), "bad entry must not be stored")

	nilNoise := func(rows, cols int) *mat.Dense { return nil }
	table, err = NewTable[string](2, 2, nilNoise)
	require.NoError(t, err)
	_, err = table.Get("s")
	assert.True(t, IsConfig(err))
}

func TestTableNoiseView(t *testing.T) {
	backing := mat.NewDense(4, 4, nil)
	view := func(rows, cols int) *mat.Dense {
		return backing.Slice(0, rows, 0, cols).(*mat.Dense)
	}

	table, err := NewTable[string](2, 2, view)
	require.NoError(t, err)

	entry, err := table.Get("s")
	require.NoError(t, err)
	assert.Len(t, entry.RawMatrix().Data, 4, "entry should be contiguous")
}

func TestTableSet(t *testing.T) {
	table, err := NewTable[string](2, 2, ZeroNoise())
	require.NoError(t, err)

	values := mat.NewDense(2, 2, []float64{0, 0, 1, 1})
	require.NoError(t, table.Set("s", values))

	entry, err := table.Get("s")
	require.NoError(t, err)
	assert.True(t, mat.Equal(values, entry))

	values.Set(0, 0, 9)
	assert.Equal(t, 0.0, entry.At(0, 0), "Set should copy values")

	err = table.Set("s", mat.NewDense(3, 2, nil))
	assert.True(t, IsShape(err))
}

func TestTableClone(t *testing.T) {
	calls := 0
	table, err := NewTable[string](2, 3, countingNoise(&calls))
	require.NoError(t, err)

	original, err := table.Get("s")
	require.NoError(t, err)

	clone := table.Clone()
	assert.Equal(t, table.Len(), clone.Len())
	r, c := clone.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)

	copied, err := clone.Get("s")
	require.NoError(t, err)
	assert.NotSame(t, original, copied)
	assert.True(t, mat.Equal(original, copied))

	// Changes to either table must not be seen by the other
	copied.Set(0, 0, -5)
	assert.Equal(t, 1.0, original.At(0, 0))
	original.Set(1, 2, 8)
	assert.Equal(t, 1.0, copied.At(1, 2))

	// The clone shares the noise function
	_, err = clone.Get("t")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.False(t, table.Has("t"))
}
