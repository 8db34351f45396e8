package gridworld

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Starter samples the starting state of each episode
type Starter interface {
	Start() State
}

// SingleStart starts every episode in the same state
type SingleStart struct {
	state State
}

// NewSingleStart returns a new SingleStart which starts all episodes
// at (x, y) in a grid with r rows and c columns
func NewSingleStart(x, y, r, c int) (*SingleStart, error) {
	if x < 0 || x >= c {
		return nil, fmt.Errorf("newSingleStart: x = %d not in [0, %d)", x, c)
	} else if y < 0 || y >= r {
		return nil, fmt.Errorf("newSingleStart: y = %d not in [0, %d)", y, r)
	}
	return &SingleStart{State{x, y}}, nil
}

// Start returns the starting state
func (s *SingleStart) Start() State {
	return s.state
}

// UniformStart starts each episode in a state sampled uniformly from a
// set of states
type UniformStart struct {
	states []State
	rng    *rand.Rand
}

// NewUniformStart returns a new UniformStart which samples starting
// states from states
func NewUniformStart(states []State, seed uint64) (*UniformStart, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("newUniformStart: no states to start from")
	}

	starts := make([]State, len(states))
	copy(starts, states)
	return &UniformStart{starts, rand.New(rand.NewSource(seed))}, nil
}

// Start samples and returns a starting state
func (u *UniformStart) Start() State {
	return u.states[u.rng.Intn(len(u.states))]
}
