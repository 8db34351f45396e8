// Package agent defines an agent interface
package agent

import (
	"github.com/samuelfneumann/sflearn/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns successor features,
// and a Policy which chooses actions in each state. The Policy chooses
// which actions are taken, and the Learner uses these actions to update
// the successor features that the Policy acts on.
type Agent[S comparable] interface {
	Learner[S]
	Policy[S]
}

// Learner implements a learning algorithm that defines how successor
// features are updated.
type Learner[S comparable] interface {
	// Step performs a single update to the learner
	Step() error

	// Observe records that an action lead to some timestep
	Observe(action int, nextObs timestep.TimeStep[S]) error

	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep[S]) error

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions.
type Policy[S comparable] interface {
	SelectAction(t timestep.TimeStep[S]) (int, error)
	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}
