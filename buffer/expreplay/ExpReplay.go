// Package expreplay implements experience replay buffers of transitions
// between comparable states
package expreplay

import (
	"fmt"

	"github.com/samuelfneumann/sflearn/timestep"
)

// Config implements a specific configuration of a Buffer
type Config struct {
	Sampler           SelectorType `yaml:"sampler" json:"sampler" mapstructure:"sampler"`
	SampleSize        int          `yaml:"sample_size" json:"sample_size" mapstructure:"sample_size"`
	MinReplayCapacity int          `yaml:"min_capacity" json:"min_capacity" mapstructure:"min_capacity"`
	MaxReplayCapacity int          `yaml:"max_capacity" json:"max_capacity" mapstructure:"max_capacity"`
}

// SelectorType determines how data is sampled from a buffer
type SelectorType string

const (
	Uniform SelectorType = "Uniform"
	Recent  SelectorType = "Recent"
)

// Create creates and returns the Buffer with the specified Config
func Create[S comparable](c Config, seed uint64) (*Buffer[S], error) {
	var sampler Selector
	switch c.Sampler {
	case Uniform:
		sampler = NewUniformSelector(c.SampleSize, seed)
	case Recent, "":
		sampler = NewRecentSelector(c.SampleSize)
	default:
		return nil, fmt.Errorf("create: no such sampler %q", c.Sampler)
	}

	return New[S](sampler, c.MinReplayCapacity, c.MaxReplayCapacity)
}

// Buffer implements a first-in-first-out experience replay buffer of
// transitions. Once the buffer is full, adding a transition removes the
// oldest transition in the buffer.
type Buffer[S comparable] struct {
	transitions []timestep.Transition[S]

	// start is the index of the oldest transition
	start int
	size  int

	sampler     Selector
	minCapacity int
}

// New creates and returns a new Buffer. The sampler determines how
// data is sampled from the buffer. Sampling fails until the buffer
// holds at least minCapacity transitions, and the buffer holds at most
// maxCapacity transitions.
func New[S comparable](sampler Selector, minCapacity,
	maxCapacity int) (*Buffer[S], error) {
	if minCapacity <= 0 {
		return nil, fmt.Errorf("new: minCapacity must be > 0")
	}
	if maxCapacity < minCapacity {
		return nil, fmt.Errorf("new: maxCapacity (%v) must be >= "+
			"minCapacity (%v)", maxCapacity, minCapacity)
	}
	if sampler.BatchSize() < 1 {
		return nil, fmt.Errorf("new: batch size must be >= 1")
	}
	if maxCapacity < sampler.BatchSize() {
		return nil, fmt.Errorf("new: cannot have batch size(%v) > max "+
			"buffer capacity (%v)", sampler.BatchSize(), maxCapacity)
	}

	return &Buffer[S]{
		transitions: make([]timestep.Transition[S], maxCapacity),
		sampler:     sampler,
		minCapacity: minCapacity,
	}, nil
}

// Add adds a transition to the buffer
func (b *Buffer[S]) Add(t timestep.Transition[S]) {
	if b.size < len(b.transitions) {
		b.transitions[(b.start+b.size)%len(b.transitions)] = t
		b.size++
		return
	}

	b.transitions[b.start] = t
	b.start = (b.start + 1) % len(b.transitions)
}

// Sample samples a batch of transitions from the buffer
func (b *Buffer[S]) Sample() ([]timestep.Transition[S], error) {
	if b.size == 0 {
		return nil, &ExpReplayError{Op: "sample", Err: errEmptyCache}
	}
	if b.size < b.minCapacity {
		return nil, &ExpReplayError{Op: "sample", Err: errInsufficientSamples}
	}

	positions := b.sampler.choose(b.size)
	batch := make([]timestep.Transition[S], len(positions))
	for i, pos := range positions {
		batch[i] = b.transitions[(b.start+pos)%len(b.transitions)]
	}
	return batch, nil
}

// Clear removes all transitions from the buffer
func (b *Buffer[S]) Clear() {
	var zero timestep.Transition[S]
	for i := range b.transitions {
		b.transitions[i] = zero
	}
	b.start, b.size = 0, 0
}

// Capacity returns the current number of samples in the buffer
func (b *Buffer[S]) Capacity() int {
	return b.size
}

// MaxCapacity returns the maximum allowable samples in the buffer
func (b *Buffer[S]) MaxCapacity() int {
	return len(b.transitions)
}

// MinCapacity returns the number of samples required to be in
// the buffer before the buffer can be sampled
func (b *Buffer[S]) MinCapacity() int {
	return b.minCapacity
}

// BatchSize returns the number of samples returned by Sample()
func (b *Buffer[S]) BatchSize() int {
	return b.sampler.BatchSize()
}
