package successor

import (
	"gonum.org/v1/gonum/mat"
)

// Table is a lazily populated successor feature table for a single
// policy. Each state is mapped to a (actions x features) matrix whose
// rows hold the successor features of each action in that state.
//
// The first time a state is accessed, its matrix is created by the
// table's NoiseFunc and stored. All later accesses return the same
// matrix, so that writes to the matrix are written to the table.
type Table[S comparable] struct {
	rows, cols int
	noise      NoiseFunc
	entries    map[S]*mat.Dense
}

// NewTable returns a new, empty Table for nActions actions and
// nFeatures features
func NewTable[S comparable](nActions, nFeatures int,
	noise NoiseFunc) (*Table[S], error) {
	const op = "newTable"

	if nActions < 1 {
		return nil, newError(op, ErrConfig, "need at least 1 action, "+
			"have %d", nActions)
	}
	if nFeatures < 1 {
		return nil, newError(op, ErrConfig, "need at least 1 feature, "+
			"have %d", nFeatures)
	}
	if noise == nil {
		return nil, newError(op, ErrConfig, "noise cannot be nil")
	}

	return &Table[S]{
		rows:    nActions,
		cols:    nFeatures,
		noise:   noise,
		entries: make(map[S]*mat.Dense),
	}, nil
}

// Dims returns the number of actions and features of the table
func (t *Table[S]) Dims() (actions, features int) {
	return t.rows, t.cols
}

// Len returns the number of states that have been materialized
func (t *Table[S]) Len() int {
	return len(t.entries)
}

// Has returns whether state has been materialized. Has never
// materializes a state.
func (t *Table[S]) Has(state S) bool {
	_, ok := t.entries[state]
	return ok
}

// States returns all materialized states in an unspecified order
func (t *Table[S]) States() []S {
	states := make([]S, 0, len(t.entries))
	for state := range t.entries {
		states = append(states, state)
	}
	return states
}

// Get returns the successor features of all actions in state. If state
// has not been seen before, its entry is first created using the
// table's NoiseFunc. An error is returned only if the NoiseFunc
// produces a matrix of the wrong shape, in which case nothing is
// stored.
func (t *Table[S]) Get(state S) (*mat.Dense, error) {
	if entry, ok := t.entries[state]; ok {
		return entry, nil
	}

	entry := t.noise(t.rows, t.cols)
	if entry == nil {
		return nil, newError("get", ErrConfig, "noise returned nil")
	}
	if r, c := entry.Dims(); r != t.rows || c != t.cols {
		return nil, newError("get", ErrConfig, "noise returned shape "+
			"(%d, %d), expected (%d, %d)", r, c, t.rows, t.cols)
	}

	// Entries must own contiguous storage so that they can back tensors
	if raw := entry.RawMatrix(); raw.Stride != t.cols {
		entry = mat.DenseCopyOf(entry)
	}

	t.entries[state] = entry
	return entry, nil
}

// Set copies values into the entry for state, materializing the entry
// first if needed
func (t *Table[S]) Set(state S, values mat.Matrix) error {
	if r, c := values.Dims(); r != t.rows || c != t.cols {
		return newError("set", ErrShape, "values have shape (%d, %d), "+
			"expected (%d, %d)", r, c, t.rows, t.cols)
	}

	entry, err := t.Get(state)
	if err != nil {
		return err
	}
	entry.Copy(values)
	return nil
}

// Clone returns a deep copy of the table. The clone shares the
// NoiseFunc of t but no matrices, so that changes to either table are
// never seen by the other.
func (t *Table[S]) Clone() *Table[S] {
	entries := make(map[S]*mat.Dense, len(t.entries))
	for state, entry := range t.entries {
		entries[state] = mat.DenseCopyOf(entry)
	}

	return &Table[S]{
		rows:    t.rows,
		cols:    t.cols,
		noise:   t.noise,
		entries: entries,
	}
}
