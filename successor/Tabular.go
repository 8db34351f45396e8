package successor

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/sflearn/utils/matutils"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// TabularSF stores one lazily populated successor feature Table per
// policy and updates them with TD(0) learning.
//
// Policies are indexed 0, 1, ..., NTasks()-1 in the order that they
// were added. Bootstrap actions for batch updates are chosen by the
// GPIer of the TabularSF, which must be set before calling
// UpdateSuccessorOnBatch.
type TabularSF[S comparable] struct {
	alpha  float64
	noise  NoiseFunc
	gpi    GPIer[S]
	psi    []*Table[S]
	logger zerolog.Logger
}

// New returns a new TabularSF with learning rate alpha. New tables
// initialize unseen states using noise. The gpi argument may be nil,
// in which case it must later be set using SetGPI before performing
// batch updates.
func New[S comparable](alpha float64, noise NoiseFunc,
	gpi GPIer[S]) (*TabularSF[S], error) {
	if alpha <= 0 || math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return nil, newError("new", ErrConfig, "learning rate must be "+
			"positive and finite, have %v", alpha)
	}
	if noise == nil {
		return nil, newError("new", ErrConfig, "noise cannot be nil")
	}

	return &TabularSF[S]{
		alpha:  alpha,
		noise:  noise,
		gpi:    gpi,
		logger: zerolog.Nop(),
	}, nil
}

// SetGPI sets the GPIer used to select bootstrap actions
func (t *TabularSF[S]) SetGPI(gpi GPIer[S]) {
	t.gpi = gpi
}

// SetLogger sets the logger used to report table construction
func (t *TabularSF[S]) SetLogger(logger zerolog.Logger) {
	t.logger = logger
}

// Alpha returns the learning rate
func (t *TabularSF[S]) Alpha() float64 {
	return t.alpha
}

// NTasks returns the number of policies in the store
func (t *TabularSF[S]) NTasks() int {
	return len(t.psi)
}

// Psi returns the table of the policy at index policy
func (t *TabularSF[S]) Psi(policy int) (*Table[S], error) {
	return t.table("psi", policy)
}

// table returns the table at index policy or an ErrOutOfRange error
// attributed to op
func (t *TabularSF[S]) table(op string, policy int) (*Table[S], error) {
	if policy < 0 || policy >= len(t.psi) {
		return nil, newError(op, ErrOutOfRange, "policy %d not in "+
			"[0, %d)", policy, len(t.psi))
	}
	return t.psi[policy], nil
}

// BuildSuccessor builds a new, empty table sized for task. The table
// is not added to the store.
func (t *TabularSF[S]) BuildSuccessor(task Task) (*Table[S], error) {
	table, err := NewTable[S](task.ActionCount(), task.FeatureDim(), t.noise)
	if err != nil {
		return nil, fmt.Errorf("buildSuccessor: %w", err)
	}
	return table, nil
}

// BuildSuccessorFrom builds a new table as a deep copy of the table of
// the policy at index source, including all states seen so far. If no
// policies exist yet, a new empty table is built for task instead. The
// table is not added to the store.
func (t *TabularSF[S]) BuildSuccessorFrom(task Task,
	source int) (*Table[S], error) {
	if len(t.psi) == 0 {
		return t.BuildSuccessor(task)
	}

	table, err := t.table("buildSuccessor", source)
	if err != nil {
		return nil, err
	}
	return table.Clone(), nil
}

// AddTask builds a new empty table for task, adds it to the store,
// and returns the policy index of the new table
func (t *TabularSF[S]) AddTask(task Task) (int, error) {
	table, err := t.BuildSuccessor(task)
	if err != nil {
		return -1, err
	}
	return t.add(table, -1), nil
}

// AddTaskFrom adds a copy of the table at index source to the store
// and returns the policy index of the new table. If the store is empty,
// a new table is built for task instead.
func (t *TabularSF[S]) AddTaskFrom(task Task, source int) (int, error) {
	table, err := t.BuildSuccessorFrom(task, source)
	if err != nil {
		return -1, err
	}
	if len(t.psi) == 0 {
		source = -1
	}
	return t.add(table, source), nil
}

// add appends a table to the store and returns its index
func (t *TabularSF[S]) add(table *Table[S], source int) int {
	t.psi = append(t.psi, table)
	index := len(t.psi) - 1

	actions, features := table.Dims()
	event := t.logger.Debug().
		Int("policy", index).
		Int("actions", actions).
		Int("features", features)
	if source >= 0 {
		event = event.Int("source", source).Int("states", table.Len())
	}
	event.Msg("added successor table")

	return index
}

// GetSuccessor returns the successor features of state for the policy
// at index policy as a tensor of shape (1, actions, features). The
// tensor is backed by the table entry, so writes to the tensor are
// written to the table.
func (t *TabularSF[S]) GetSuccessor(state S,
	policy int) (*tensor.Dense, error) {
	table, err := t.table("getSuccessor", policy)
	if err != nil {
		return nil, err
	}

	entry, err := table.Get(state)
	if err != nil {
		return nil, err
	}

	r, c := entry.Dims()
	return tensor.New(
		tensor.WithShape(1, r, c),
		tensor.WithBacking(entry.RawMatrix().Data),
	), nil
}

// Successors returns the successor features of state for every policy
// in policy order. The returned matrices are the table entries
// themselves.
func (t *TabularSF[S]) Successors(state S) ([]*mat.Dense, error) {
	entries := make([]*mat.Dense, len(t.psi))
	for i, table := range t.psi {
		entry, err := table.Get(state)
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}
	return entries, nil
}

// GetSuccessors returns the successor features of state for every
// policy, stacked in policy order into a new tensor of shape
// (1, policies, actions, features). All tables must have the same
// shape.
func (t *TabularSF[S]) GetSuccessors(state S) (*tensor.Dense, error) {
	const op = "getSuccessors"

	if len(t.psi) == 0 {
		return nil, newError(op, ErrOutOfRange, "no policies in store")
	}

	entries, err := t.Successors(state)
	if err != nil {
		return nil, err
	}

	r, c := entries[0].Dims()
	backing := make([]float64, 0, len(entries)*r*c)
	for i, entry := range entries {
		if er, ec := entry.Dims(); er != r || ec != c {
			return nil, newError(op, ErrShape, "policy %d has shape "+
				"(%d, %d), policy 0 has shape (%d, %d)", i, er, ec, r, c)
		}
		backing = append(backing, entry.RawMatrix().Data...)
	}

	return tensor.New(
		tensor.WithShape(1, len(entries), r, c),
		tensor.WithBacking(backing),
	), nil
}

// UpdateSuccessor performs a TD(0) update of the successor features of
// action in state for the policy at index policy:
//
//	target = φ + γ ψ(nextState, nextAction)
//	ψ(state, action) += α (target - ψ(state, action))
//
// Only the row of action in state is changed. The feature matrix phi is
// flattened in row major order and must have as many elements as the
// table has features.
func (t *TabularSF[S]) UpdateSuccessor(state S, action int, phi mat.Matrix,
	nextState S, nextAction int, gamma float64, policy int) error {
	const op = "updateSuccessor"

	table, err := t.table(op, policy)
	if err != nil {
		return err
	}

	features, err := t.checkTransition(op, table, action, phi, nextAction)
	if err != nil {
		return err
	}

	return t.update(table, state, action, features, nextState, nextAction,
		gamma)
}

// UpdateSuccessorOnBatch updates the table of the policy at index
// policy on a batch of transitions. All argument slices must have the
// same length.
//
// The bootstrap action of transition i is the greedy action under GPI
// in states[i]: the action whose maximum value over all policies is
// largest. The transitions are then applied one after the other using
// UpdateSuccessor, in order, so that later transitions see the effects
// of earlier ones. The whole batch is validated before the first
// update, so an invalid batch leaves the table unchanged.
func (t *TabularSF[S]) UpdateSuccessorOnBatch(states []S, actions []int,
	phis []mat.Matrix, nextStates []S, gammas []float64, policy int) error {
	const op = "updateSuccessorOnBatch"

	n := len(states)
	if len(actions) != n || len(phis) != n || len(nextStates) != n ||
		len(gammas) != n {
		return newError(op, ErrInvalidArgument, "batch lengths differ: "+
			"states=%d actions=%d phis=%d nextStates=%d gammas=%d", n,
			len(actions), len(phis), len(nextStates), len(gammas))
	}

	table, err := t.table(op, policy)
	if err != nil {
		return err
	}
	if t.gpi == nil {
		return newError(op, ErrConfig, "no GPI set")
	}

	// Bootstrap actions come from GPI
	nextActions := make([]int, n)
	for i, state := range states {
		q, _, err := t.gpi.GPI(state, policy)
		if err != nil {
			return fmt.Errorf("%v: gpi: %w", op, err)
		}
		if q == nil {
			return newError(op, ErrShape, "gpi returned no action values")
		}
		nextActions[i] = matutils.ArgMaxColMax(q)
	}

	features := make([]*mat.VecDense, n)
	for i := range states {
		features[i], err = t.checkTransition(op, table, actions[i], phis[i],
			nextActions[i])
		if err != nil {
			return fmt.Errorf("transition %d: %w", i, err)
		}
	}

	// Update sequentially on each transition
	for i := range states {
		err := t.update(table, states[i], actions[i], features[i],
			nextStates[i], nextActions[i], gammas[i])
		if err != nil {
			return fmt.Errorf("transition %d: %w", i, err)
		}
	}
	return nil
}

// checkTransition ensures that action and nextAction are valid actions
// in table and that phi has as many elements as table has features. The
// flattened features are returned.
func (t *TabularSF[S]) checkTransition(op string, table *Table[S],
	action int, phi mat.Matrix, nextAction int) (*mat.VecDense, error) {
	actions, features := table.Dims()

	if action < 0 || action >= actions {
		return nil, newError(op, ErrShape, "action %d not in [0, %d)",
			action, actions)
	}
	if nextAction < 0 || nextAction >= actions {
		return nil, newError(op, ErrShape, "next action %d not in [0, %d)",
			nextAction, actions)
	}
	if phi == nil {
		return nil, newError(op, ErrShape, "phi cannot be nil")
	}
	if r, c := phi.Dims(); r*c != features {
		return nil, newError(op, ErrShape, "phi has %d elements, "+
			"expected %d", r*c, features)
	}

	return matutils.Flatten(phi), nil
}

// update performs the TD(0) update on a validated transition
func (t *TabularSF[S]) update(table *Table[S], state S, action int,
	phi *mat.VecDense, nextState S, nextAction int, gamma float64) error {
	next, err := table.Get(nextState)
	if err != nil {
		return err
	}

	// target = φ + γψ(s', a')
	_, features := table.Dims()
	target := mat.NewVecDense(features, nil)
	target.AddScaledVec(phi, gamma, next.RowView(nextAction))

	current, err := table.Get(state)
	if err != nil {
		return err
	}

	// ψ(s, a) += α(target - ψ(s, a))
	estimate := mat.NewVecDense(features, current.RawRowView(action))
	target.SubVec(target, estimate)
	estimate.AddScaledVec(estimate, t.alpha, target)

	return nil
}
