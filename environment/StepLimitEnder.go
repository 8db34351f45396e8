package environment

import "github.com/samuelfneumann/sflearn/timestep"

// StepLimit implements the Ender interface to end episodes at specific
// timestep limits
type StepLimit[S comparable] struct {
	episodeSteps int
}

// NewStepLimit creates and returns a new step limit
func NewStepLimit[S comparable](episodeSteps int) StepLimit[S] {
	return StepLimit[S]{episodeSteps}
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode termination. If the episode
// should be ended End() will modify the timestep so that it is the
// last timestep of the episode. The discount of the timestep is kept,
// since the state it ends in is not terminal.
func (s StepLimit[S]) End(t *timestep.TimeStep[S]) bool {
	if s.episodeSteps > 0 && t.Number >= s.episodeSteps {
		*t = timestep.New(timestep.Last, t.State, t.Phi, t.Reward,
			t.Discount, t.Number)
		return true
	}
	return false
}
