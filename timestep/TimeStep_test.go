package timestep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestStepType(t *testing.T) {
	step := New(First, "a", nil, 0, 0.9, 0)
	assert.True(t, step.First())
	assert.False(t, step.Mid())
	assert.False(t, step.Last())
	assert.Equal(t, "First", step.StepType().String())

	step = New(Last, "b", nil, 1, 0, 3)
	assert.True(t, step.Last())
	assert.Equal(t, "Last", Last.String())
	assert.Equal(t, "Mid", Mid.String())
}

func TestNewTransition(t *testing.T) {
	phi := mat.NewVecDense(2, []float64{0, 1})
	step := New(Mid, 4, nil, 0, 0.9, 1)
	next := New(Last, 5, phi, 2.5, 0, 2)

	tr := NewTransition(step, 3, next)
	assert.Equal(t, Transition[int]{
		State:     4,
		Action:    3,
		Phi:       phi,
		Reward:    2.5,
		Discount:  0,
		NextState: 5,
	}, tr)
}
