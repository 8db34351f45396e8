// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep in an environment. The
// State identifies the environment state and Phi holds the features
// observed on the transition into State. Discount is the discount
// applied when bootstrapping from State, which is 0 if State is
// terminal.
type TimeStep[S comparable] struct {
	stepType StepType
	State    S
	Phi      *mat.VecDense
	Reward   float64
	Discount float64
	Number   int
}

// New returns a new TimeStep
func New[S comparable](t StepType, state S, phi *mat.VecDense, r, d float64,
	n int) TimeStep[S] {
	return TimeStep[S]{t, state, phi, r, d, n}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep[S]) First() bool {
	return t.stepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep[S]) Mid() bool {
	return t.stepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep[S]) Last() bool {
	return t.stepType == Last
}

// StepType returns the type of the TimeStep
func (t *TimeStep[S]) StepType() StepType {
	return t.stepType
}

func (t TimeStep[S]) String() string {
	str := "TimeStep | Type: %v  |  State: %v  |  Reward:  %.2f  |  " +
		"Discount: %.2f  |  Step Number:  %v"

	return fmt.Sprintf(str, t.stepType, t.State, t.Reward, t.Discount,
		t.Number)
}

// Transition packages together a single transition between two states
type Transition[S comparable] struct {
	State     S
	Action    int
	Phi       *mat.VecDense
	Reward    float64
	Discount  float64
	NextState S
}

// NewTransition returns the transition from step to next when taking
// action in step
func NewTransition[S comparable](step TimeStep[S], action int,
	next TimeStep[S]) Transition[S] {
	return Transition[S]{
		State:     step.State,
		Action:    action,
		Phi:       next.Phi,
		Reward:    next.Reward,
		Discount:  next.Discount,
		NextState: next.State,
	}
}
