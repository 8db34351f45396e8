package gpi

import (
	"testing"

	"github.com/samuelfneumann/sflearn/successor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

type task struct{ actions, features int }

func (t task) ActionCount() int { return t.actions }
func (t task) FeatureDim() int  { return t.features }

// newSF returns a TabularSF with two policies whose successor features
// in state "s" are known
func newSF(t *testing.T) *successor.TabularSF[string] {
	sf, err := successor.New[string](0.5, successor.ZeroNoise(), nil)
	require.NoError(t, err)

	values := []*mat.Dense{
		mat.NewDense(3, 2, []float64{
			1, 0,
			0, 1,
			0, 0,
		}),
		mat.NewDense(3, 2, []float64{
			0, 0,
			0, 0,
			2, 2,
		}),
	}
	for _, v := range values {
		index, err := sf.AddTask(task{3, 2})
		require.NoError(t, err)
		table, err := sf.Psi(index)
		require.NoError(t, err)
		require.NoError(t, table.Set("s", v))
	}
	return sf
}

func TestGPI(t *testing.T) {
	sf := newSF(t)
	g := New[string](sf)
	sf.SetGPI(g)

	assert.Equal(t, 0, g.AddTask(mat.NewVecDense(2, []float64{1, 0})))
	assert.Equal(t, 1, g.AddTask(mat.NewVecDense(2, []float64{0, -1})))

	q, chosen, err := g.GPI("s", 0)
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewDense(2, 3, []float64{
		1, 0, 0,
		0, 0, 2,
	}), q))
	assert.Equal(t, 1, chosen)

	action, err := g.Act("s", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, action)

	q, chosen, err = g.GPI("s", 1)
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewDense(2, 3, []float64{
		0, -1, 0,
		0, 0, -2,
	}), q))
	assert.Equal(t, 0, chosen)

	action, err = g.Act("s", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, action)
}

func TestGPIErrors(t *testing.T) {
	sf, err := successor.New[string](0.5, successor.ZeroNoise(), nil)
	require.NoError(t, err)
	g := New[string](sf)
	g.AddTask(mat.NewVecDense(2, nil))

	_, _, err = g.GPI("s", 0)
	assert.True(t, successor.IsOutOfRange(err), "no policies: %v", err)

	_, err = sf.AddTask(task{3, 2})
	require.NoError(t, err)

	_, _, err = g.GPI("s", 1)
	assert.True(t, successor.IsOutOfRange(err), "unknown task: %v", err)

	_, _, err = g.GPIWeights("s", mat.NewVecDense(3, nil))
	assert.True(t, successor.IsShape(err), "%v", err)
}

func TestUpdateReward(t *testing.T) {
	sf := newSF(t)
	g := New[string](sf)
	task := g.AddTask(mat.NewVecDense(2, nil))

	phi := mat.NewVecDense(2, []float64{1, 0})
	delta, err := g.UpdateReward(task, phi, 2, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, delta, 1e-12)

	w, err := g.Weights(task)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0}, w.RawVector().Data, 1e-12)

	// Repeated updates converge on the reward
	for i := 0; i < 100; i++ {
		_, err := g.UpdateReward(task, phi, 2, 0.5)
		require.NoError(t, err)
	}
	assert.InDelta(t, 2.0, w.AtVec(0), 1e-6)

	_, err = g.UpdateReward(task, mat.NewVecDense(3, nil), 1, 0.5)
	assert.True(t, successor.IsShape(err))
}

func TestSetWeights(t *testing.T) {
	sf := newSF(t)
	g := New[string](sf)
	original := mat.NewVecDense(2, []float64{1, 1})
	task := g.AddTask(original)

	original.SetVec(0, 5)
	w, err := g.Weights(task)
	require.NoError(t, err)
	assert.Equal(t, 1.0, w.AtVec(0), "AddTask should copy weights")

	require.NoError(t, g.SetWeights(task, mat.NewVecDense(2,
		[]float64{3, 4})))
	assert.Equal(t, []float64{3, 4}, w.RawVector().Data)

	err = g.SetWeights(task, mat.NewVecDense(1, nil))
	assert.True(t, successor.IsShape(err))
	err = g.SetWeights(4, mat.NewVecDense(2, nil))
	assert.True(t, successor.IsOutOfRange(err))
}

func TestBatchUpdateWithGPI(t *testing.T) {
	sf := newSF(t)
	g := New[string](sf)
	sf.SetGPI(g)
	g.AddTask(mat.NewVecDense(2, []float64{1, 0}))
	g.AddTask(mat.NewVecDense(2, []float64{0, 1}))

	// GPI in "s" for task 0 picks action 2 from policy 1, so policy 0
	// bootstraps from ψ_0(s, 2) = [0, 0]
	phi := mat.NewVecDense(2, []float64{1, 1})
	err := sf.UpdateSuccessorOnBatch([]string{"s"}, []int{0},
		[]mat.Matrix{phi}, []string{"s"}, []float64{0.9}, 0)
	require.NoError(t, err)

	table, err := sf.Psi(0)
	require.NoError(t, err)
	s, err := table.Get("s")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 0.5}, s.RawRowView(0), 1e-12)
}
