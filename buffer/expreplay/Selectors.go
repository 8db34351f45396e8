package expreplay

import (
	"golang.org/x/exp/rand"
)

// Selector implements functionality for choosing which transitions
// are sampled from an experience replay buffer
type Selector interface {
	// choose selects positions to sample from a buffer holding size
	// transitions. Position 0 is the oldest transition in the buffer
	// and position size-1 is the newest.
	choose(size int) []int

	// BatchSize returns the number of elements that will be selected
	BatchSize() int
}

// uniformSelector is a Selector which selects data from an experience
// replay buffer uniformly randomly, with replacement
type uniformSelector struct {
	samples int
	rng     *rand.Rand
}

// NewUniformSelector returns a new Selector which selects data uniformly
// randomly from an experience replay buffer
func NewUniformSelector(samples int, seed uint64) Selector {
	source := rand.NewSource(seed)
	rng := rand.New(source)

	return &uniformSelector{samples: samples, rng: rng}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (u *uniformSelector) BatchSize() int {
	return u.samples
}

// choose selects a number of positions at which to draw data from the
// buffer
func (u *uniformSelector) choose(size int) []int {
	selected := make([]int, u.BatchSize())
	for i := range selected {
		selected[i] = u.rng.Intn(size)
	}
	return selected
}

// recentSelector is a Selector which selects the most recent data in
// an experience replay buffer, oldest first
type recentSelector struct {
	samples int
}

// NewRecentSelector returns a new Selector which selects the most
// recently added data from an experience replay buffer, in the order
// that the data was added
func NewRecentSelector(samples int) Selector {
	return &recentSelector{samples: samples}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (r *recentSelector) BatchSize() int {
	return r.samples
}

// choose selects the positions of the most recent data
func (r *recentSelector) choose(size int) []int {
	n := r.samples
	if n > size {
		n = size
	}

	selected := make([]int, n)
	for i := range selected {
		selected[i] = size - n + i
	}
	return selected
}
