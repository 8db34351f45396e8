package tracker

import (
	"github.com/samuelfneumann/sflearn/environment"
	"github.com/samuelfneumann/sflearn/timestep"
)

// registeredTracker registers an Environment with some Tracker so
// that the Tracker tracks data from the registered Environment only.
// The argument to Track is ignored and the most recent TimeStep of the
// registered Environment is tracked instead.
type registeredTracker[S comparable] struct {
	Tracker[S]
	env environment.Environment[S]
}

// Register returns a Tracker which passes the most recent TimeStep of
// env to t whenever it tracks a TimeStep
func Register[S comparable](t Tracker[S],
	env environment.Environment[S]) Tracker[S] {
	return &registeredTracker[S]{t, env}
}

// Track calls Track() on the embedded Tracker using the most recent
// TimeStep from the registered Environment.
func (r *registeredTracker[S]) Track(timestep.TimeStep[S]) {
	r.Tracker.Track(r.env.CurrentTimeStep())
}
