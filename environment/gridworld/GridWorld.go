// Package gridworld implements 2D gridworld environments with objects
// of different types. Collecting an object ends the episode, and the
// features observed on each transition encode which type of object,
// if any, was collected.
package gridworld

import (
	"fmt"
	"strings"

	"github.com/samuelfneumann/sflearn/environment"
	"github.com/samuelfneumann/sflearn/timestep"
	"gonum.org/v1/gonum/mat"
)

// Available actions
const (
	Left int = iota
	Right
	Up
	Down
	NumActions
)

// State is the position of the agent in a GridWorld
type State struct {
	X, Y int
}

// Object is an object of some type placed in a GridWorld
type Object struct {
	X, Y int
	Type int
}

// GridWorld represents a gridworld environment
//
// Only the grid dimensions, objects, and current agent position are
// tracked. Moving into a wall leaves the agent in place.
type GridWorld struct {
	Starter
	task     *Task
	ender    environment.Ender[State]
	r, c     int
	objects  map[State]int
	types    int
	discount float64

	position    State
	currentStep timestep.TimeStep[State]
}

// New creates a new GridWorld with r rows and c columns. The objects
// must lie inside the grid, have types in [0, types), and must not
// share a position. The task must have one weight per object type.
// Episodes are truncated after maxSteps steps, or never if
// maxSteps <= 0.
func New(r, c int, s Starter, objects []Object, types int, t *Task,
	discount float64, maxSteps int) (*GridWorld, timestep.TimeStep[State],
	error) {
	if r < 1 || c < 1 {
		return nil, timestep.TimeStep[State]{}, fmt.Errorf("new: grid "+
			"must have at least 1 row and column, have (%d, %d)", r, c)
	}
	if types < 1 {
		return nil, timestep.TimeStep[State]{}, fmt.Errorf("new: need at "+
			"least 1 object type")
	}

	objectAt := make(map[State]int, len(objects))
	for _, o := range objects {
		pos := State{o.X, o.Y}
		if !inBounds(pos, r, c) {
			return nil, timestep.TimeStep[State]{}, fmt.Errorf("new: "+
				"object at %v outside of (%d, %d) grid", pos, r, c)
		}
		if o.Type < 0 || o.Type >= types {
			return nil, timestep.TimeStep[State]{}, fmt.Errorf("new: "+
				"object type %d not in [0, %d)", o.Type, types)
		}
		if _, ok := objectAt[pos]; ok {
			return nil, timestep.TimeStep[State]{}, fmt.Errorf("new: "+
				"multiple objects at %v", pos)
		}
		objectAt[pos] = o.Type
	}

	g := &GridWorld{
		Starter:  s,
		ender:    environment.NewStepLimit[State](maxSteps),
		r:        r,
		c:        c,
		objects:  objectAt,
		types:    types,
		discount: discount,
	}
	if err := g.SetTask(t); err != nil {
		return nil, timestep.TimeStep[State]{}, fmt.Errorf("new: %w", err)
	}

	return g, g.Reset(), nil
}

// SetTask changes the task of the GridWorld
func (g *GridWorld) SetTask(t *Task) error {
	if t == nil {
		return fmt.Errorf("setTask: task cannot be nil")
	}
	if t.FeatureDim() != g.types {
		return fmt.Errorf("setTask: task has %d weights for %d object "+
			"types", t.FeatureDim(), g.types)
	}
	g.task = t
	return nil
}

// Task returns the current task
func (g *GridWorld) Task() environment.Task {
	return g.task
}

// Dims gets the rows and columns of the GridWorld
func (g *GridWorld) Dims() (r, c int) {
	return g.r, g.c
}

// FeatureDim returns the number of features emitted on each step
func (g *GridWorld) FeatureDim() int {
	return g.types
}

// Position returns the current position of the agent
func (g *GridWorld) Position() State {
	return g.position
}

// CurrentTimeStep returns the most recent TimeStep
func (g *GridWorld) CurrentTimeStep() timestep.TimeStep[State] {
	return g.currentStep
}

// Reset resets the GridWorld to a starting state
func (g *GridWorld) Reset() timestep.TimeStep[State] {
	g.position = g.Start()
	phi := mat.NewVecDense(g.types, nil)

	g.currentStep = timestep.New(timestep.First, g.position, phi, 0,
		g.discount, 0)
	return g.currentStep
}

// Step takes an action in the GridWorld. Moving onto an object
// collects the object and ends the episode with a discount of 0.
func (g *GridWorld) Step(action int) (timestep.TimeStep[State], bool,
	error) {
	if action < 0 || action >= NumActions {
		return timestep.TimeStep[State]{}, false, fmt.Errorf("step: "+
			"action %d not in [0, %d)", action, NumActions)
	}
	if g.currentStep.Last() {
		return timestep.TimeStep[State]{}, false, fmt.Errorf("step: " +
			"episode has ended, call Reset")
	}

	g.position = g.move(g.position, action)

	phi := mat.NewVecDense(g.types, nil)
	stepType := timestep.Mid
	discount := g.discount
	if objType, ok := g.objects[g.position]; ok {
		phi.SetVec(objType, 1.0)
		stepType = timestep.Last
		discount = 0
	}

	reward := g.task.GetReward(phi)
	number := g.currentStep.Number + 1
	step := timestep.New(stepType, g.position, phi, reward, discount, number)

	// Truncate long episodes
	g.ender.End(&step)

	g.currentStep = step
	return step, step.Last(), nil
}

// move returns the position reached by taking action from pos
func (g *GridWorld) move(pos State, action int) State {
	next := pos
	switch action {
	case Left:
		next.X--
	case Right:
		next.X++
	case Up:
		next.Y++
	case Down:
		next.Y--
	}

	if !inBounds(next, g.r, g.c) {
		return pos
	}
	return next
}

// inBounds returns whether pos lies in a grid with r rows and c columns
func inBounds(pos State, r, c int) bool {
	return pos.X >= 0 && pos.X < c && pos.Y >= 0 && pos.Y < r
}

func (g *GridWorld) String() string {
	var b strings.Builder

	for y := g.r - 1; y >= 0; y-- {
		for x := 0; x < g.c; x++ {
			pos := State{x, y}
			if pos == g.position {
				b.WriteString("A")
			} else if objType, ok := g.objects[pos]; ok {
				b.WriteString(fmt.Sprint(objType))
			} else {
				b.WriteString(".")
			}
		}
		b.WriteString("\n")
	}

	str := "GridWorld | At: %v  |  %v  |  Bounds: (%d, %d)\n%v"
	return fmt.Sprintf(str, g.position, g.task, g.r, g.c, b.String())
}
