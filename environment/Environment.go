// Package environment outlines the interfaces and sturcts needed to implement
// concrete environments
package environment

import (
	"github.com/samuelfneumann/sflearn/timestep"
)

// Task implements the reward scheme for features seen in some
// environment. A Task is sized by the number of actions in the
// environment and the number of features that the environment emits.
type Task interface {
	ActionCount() int
	FeatureDim() int
}

// Environment implements a simulated environment with discrete actions
// and states identified by comparable values of type S
type Environment[S comparable] interface {
	// Reset resets the environment between episodes and returns the
	// first TimeStep of the new episode
	Reset() timestep.TimeStep[S]

	// Step takes an action in the environment, returning the next
	// TimeStep and whether the episode has ended
	Step(action int) (timestep.TimeStep[S], bool, error)

	// CurrentTimeStep returns the most recent TimeStep
	CurrentTimeStep() timestep.TimeStep[S]

	// Task returns the current task
	Task() Task
}

// Ender determines when episodes should be ended
type Ender[S comparable] interface {
	End(t *timestep.TimeStep[S]) bool
}
