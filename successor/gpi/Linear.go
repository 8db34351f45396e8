// Package gpi implements generalized policy improvement over successor
// features.
//
// Given successor features ψ_p(s, a) for each policy p and the reward
// weights w of a task, the action values of policy p on the task are
// q_p(s, a) = ψ_p(s, a) · w. GPI acts greedily with respect to the
// maximum of these action values over all policies.
package gpi

import (
	"fmt"

	"github.com/samuelfneumann/sflearn/successor"
	"github.com/samuelfneumann/sflearn/utils/matutils"
	"gonum.org/v1/gonum/mat"
)

// Source provides successor features of a state for every policy, in
// policy order. *successor.TabularSF satisfies Source.
type Source[S comparable] interface {
	NTasks() int
	Successors(state S) ([]*mat.Dense, error)
}

// Linear implements successor.GPIer using reward weights which are
// linear in the features. Linear stores one weight vector per task,
// and the task with index i is the task that policy i is trained on.
type Linear[S comparable] struct {
	source  Source[S]
	weights []*mat.VecDense
}

// New returns a new Linear GPI over the successor features of source
func New[S comparable](source Source[S]) *Linear[S] {
	if source == nil {
		panic("source cannot be nil")
	}
	return &Linear[S]{source: source}
}

// AddTask registers the reward weights of a new task and returns the
// index of the task. The weights are copied.
func (l *Linear[S]) AddTask(w mat.Vector) int {
	l.weights = append(l.weights, mat.VecDenseCopyOf(w))
	return len(l.weights) - 1
}

// NTasks returns the number of tasks with registered reward weights
func (l *Linear[S]) NTasks() int {
	return len(l.weights)
}

// Weights returns the reward weights of a task. The returned vector is
// the stored vector, so changes to it change the task.
func (l *Linear[S]) Weights(task int) (*mat.VecDense, error) {
	if task < 0 || task >= len(l.weights) {
		return nil, fmt.Errorf("weights: task %d not in [0, %d): %w", task,
			len(l.weights), successor.ErrOutOfRange)
	}
	return l.weights[task], nil
}

// SetWeights copies w into the reward weights of a task
func (l *Linear[S]) SetWeights(task int, w mat.Vector) error {
	weights, err := l.Weights(task)
	if err != nil {
		return err
	}
	if w.Len() != weights.Len() {
		return fmt.Errorf("setWeights: have %d weights, expected %d: %w",
			w.Len(), weights.Len(), successor.ErrShape)
	}
	weights.CopyVec(w)
	return nil
}

// UpdateReward performs one step of least mean squares regression of
// the reward weights of a task towards an observed reward:
//
//	w += lr (r - φ · w) φ
//
// It returns the reward prediction error before the update.
func (l *Linear[S]) UpdateReward(task int, phi mat.Vector, reward,
	lr float64) (float64, error) {
	w, err := l.Weights(task)
	if err != nil {
		return 0, err
	}
	if phi.Len() != w.Len() {
		return 0, fmt.Errorf("updateReward: have %d features, expected "+
			"%d: %w", phi.Len(), w.Len(), successor.ErrShape)
	}

	delta := reward - mat.Dot(phi, w)
	w.AddScaledVec(w, lr*delta, phi)
	return delta, nil
}

// GPI returns the action values of all policies in state on the task
// with the same index as policy, one row per policy. The index of the
// policy with the largest action value is also returned.
func (l *Linear[S]) GPI(state S, policy int) (*mat.Dense, int, error) {
	w, err := l.Weights(policy)
	if err != nil {
		return nil, -1, fmt.Errorf("gpi: %w", err)
	}
	return l.GPIWeights(state, w)
}

// GPIWeights returns the action values of all policies in state on the
// task with reward weights w, one row per policy. The index of the
// policy with the largest action value is also returned.
func (l *Linear[S]) GPIWeights(state S, w mat.Vector) (*mat.Dense, int,
	error) {
	if l.source.NTasks() == 0 {
		return nil, -1, fmt.Errorf("gpi: no policies: %w",
			successor.ErrOutOfRange)
	}

	psi, err := l.source.Successors(state)
	if err != nil {
		return nil, -1, err
	}

	actions, features := psi[0].Dims()
	if features != w.Len() {
		return nil, -1, fmt.Errorf("gpi: have %d weights, expected %d: %w",
			w.Len(), features, successor.ErrShape)
	}

	q := mat.NewDense(len(psi), actions, nil)
	for p, entry := range psi {
		if r, c := entry.Dims(); r != actions || c != features {
			return nil, -1, fmt.Errorf("gpi: policy %d has shape (%d, %d), "+
				"expected (%d, %d): %w", p, r, c, actions, features,
				successor.ErrShape)
		}
		row := mat.NewVecDense(actions, q.RawRowView(p))
		row.MulVec(entry, w)
	}

	return q, matutils.ArgMaxRowMax(q), nil
}

// Act returns the greedy action under GPI in state for the task of
// policy, that is the action whose largest value over all policies is
// largest
func (l *Linear[S]) Act(state S, policy int) (int, error) {
	q, _, err := l.GPI(state, policy)
	if err != nil {
		return -1, err
	}
	return matutils.ArgMaxColMax(q), nil
}
