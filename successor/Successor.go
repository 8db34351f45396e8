// Package successor implements tabular successor features.
//
// A successor feature table ψ maps a (state, action) pair to the
// expected discounted sum of features seen when taking the action in the
// state and following some policy thereafter. For each policy tracked,
// a TabularSF stores one lazily populated Table of ψ values. Tables are
// updated from observed transitions using TD(0) learning in feature
// space, with bootstrap actions selected by generalized policy
// improvement (GPI) over all tracked policies.
//
// Tables can be built fresh for a new task or copied from an existing
// policy's table to transfer what that policy has already learned.
//
// None of the types in this package are safe for concurrent use. If
// multiple goroutines train on the same TabularSF, access must be
// serialized by the caller.
package successor

import "gonum.org/v1/gonum/mat"

// Task describes the dimensions of a task that a successor feature
// table is built for
type Task interface {
	// ActionCount returns the number of discrete actions, at least 1
	ActionCount() int

	// FeatureDim returns the length of feature vectors, at least 1
	FeatureDim() int
}

// GPIer selects actions using generalized policy improvement.
//
// GPI returns the action values of all policies in some state,
// evaluated on the task of the argument policy index, as a matrix with
// one row per policy and one column per action. The second return value
// is the index of the policy that GPI would follow in the state.
type GPIer[S comparable] interface {
	GPI(state S, policy int) (q *mat.Dense, chosen int, err error)
}

// GPIFunc adapts an ordinary function to the GPIer interface
type GPIFunc[S comparable] func(state S, policy int) (*mat.Dense, int, error)

// GPI calls f(state, policy)
func (f GPIFunc[S]) GPI(state S, policy int) (*mat.Dense, int, error) {
	return f(state, policy)
}
