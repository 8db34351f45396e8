package gridworld

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Task represents the task of collecting objects in a GridWorld. Each
// object type is assigned a weight, and the reward for collecting an
// object is the weight of its type. Equivalently, the reward on a
// transition is φ · w, where φ is the one-hot encoding of the type of
// object collected, or all zeros if no object was collected.
type Task struct {
	w *mat.VecDense
}

// NewTask returns a new Task with one weight per object type
func NewTask(weights []float64) (*Task, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("newTask: need at least one weight")
	}

	w := make([]float64, len(weights))
	copy(w, weights)
	return &Task{mat.NewVecDense(len(w), w)}, nil
}

// ActionCount returns the number of actions in a GridWorld
func (t *Task) ActionCount() int {
	return NumActions
}

// FeatureDim returns the number of object types
func (t *Task) FeatureDim() int {
	return t.w.Len()
}

// Weights returns a copy of the reward weights of the task
func (t *Task) Weights() *mat.VecDense {
	return mat.VecDenseCopyOf(t.w)
}

// GetReward returns the reward for observing features phi
func (t *Task) GetReward(phi mat.Vector) float64 {
	return mat.Dot(t.w, phi)
}

func (t *Task) String() string {
	return fmt.Sprintf("Task | Weights: %v", t.w.RawVector().Data)
}
