// Package sfql implements successor feature Q-learning with
// generalized policy improvement.
//
// The agent learns one table of successor features for each task it
// is given. Actions are selected ε-greedily with respect to the GPI
// action values of the active task over the successor features of all
// tasks seen so far.
package sfql

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/sflearn/agent"
	"github.com/samuelfneumann/sflearn/buffer/expreplay"
	"github.com/samuelfneumann/sflearn/successor"
	"github.com/samuelfneumann/sflearn/successor/gpi"
	"github.com/samuelfneumann/sflearn/timestep"
	"github.com/samuelfneumann/sflearn/utils/matutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

var _ agent.Agent[int] = &SFQL[int]{}

// SFQL implements the successor feature Q-learning algorithm
type SFQL[S comparable] struct {
	sf     *successor.TabularSF[S]
	gpi    *gpi.Linear[S]
	buffer *expreplay.Buffer[S]
	task   int

	step     timestep.TimeStep[S]
	action   int
	nextStep timestep.TimeStep[S]
	ready    bool

	config Config
	eval   bool
	seed   rand.Source
	logger zerolog.Logger
}

// New creates a new SFQL agent. The agent has no tasks until AddTask
// is called.
func New[S comparable](c Config, seed uint64) (*SFQL[S], error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("sfql: invalid config: %w", err)
	}

	seeds := SplitSeed(seed, 3)
	noise := successor.UniformNoise(c.NoiseLow, c.NoiseHigh, seeds[0])
	sf, err := successor.New[S](c.LearningRate, noise, nil)
	if err != nil {
		return nil, fmt.Errorf("sfql: %w", err)
	}
	g := gpi.New[S](sf)
	sf.SetGPI(g)

	buffer, err := expreplay.Create[S](c.Replay, seeds[1])
	if err != nil {
		return nil, fmt.Errorf("sfql: invalid replay buffer: %w", err)
	}

	return &SFQL[S]{
		sf:     sf,
		gpi:    g,
		buffer: buffer,
		task:   -1,
		config: c,
		seed:   rand.NewSource(seeds[2]),
		logger: zerolog.Nop(),
	}, nil
}

// SplitSeed derives n seeds from seed so that each random stream of an
// experiment draws an independent sequence
func SplitSeed(seed uint64, n int) []uint64 {
	rng := rand.New(rand.NewSource(seed))
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = rng.Uint64()
	}
	return seeds
}

// SetLogger sets the logger of the agent and its successor features
func (s *SFQL[S]) SetLogger(logger zerolog.Logger) {
	s.logger = logger
	s.sf.SetLogger(logger)
}

// Successors returns the successor features learned by the agent
func (s *SFQL[S]) Successors() *successor.TabularSF[S] {
	return s.sf
}

// GPI returns the generalized policy improvement of the agent
func (s *SFQL[S]) GPI() *gpi.Linear[S] {
	return s.gpi
}

// AddTask adds a new task with reward weights w and makes it the
// active task. If transfer is enabled, the successor features of the
// new task start as a copy of those of the active task. If reward
// weights are learned, w only determines the number of weights and
// the weights start at 0.
func (s *SFQL[S]) AddTask(task successor.Task, w mat.Vector) (int, error) {
	if w.Len() != task.FeatureDim() {
		return -1, fmt.Errorf("addTask: have %d weights for %d features",
			w.Len(), task.FeatureDim())
	}

	var index int
	var err error
	if s.config.Transfer && s.task >= 0 {
		index, err = s.sf.AddTaskFrom(task, s.task)
	} else {
		index, err = s.sf.AddTask(task)
	}
	if err != nil {
		return -1, fmt.Errorf("addTask: %w", err)
	}

	if s.config.LearnWeights {
		w = mat.NewVecDense(w.Len(), nil)
	}
	if weightIndex := s.gpi.AddTask(w); weightIndex != index {
		return -1, fmt.Errorf("addTask: task %d has weights at %d", index,
			weightIndex)
	}

	s.logger.Info().
		Int("task", index).
		Bool("transfer", s.config.Transfer && index > 0).
		Msg("added task")

	s.task = index
	return index, nil
}

// SetActiveTask sets the task that the agent acts and learns on
func (s *SFQL[S]) SetActiveTask(task int) error {
	if task < 0 || task >= s.sf.NTasks() {
		return fmt.Errorf("setActiveTask: task %d not in [0, %d): %w", task,
			s.sf.NTasks(), successor.ErrOutOfRange)
	}
	s.task = task
	return nil
}

// ActiveTask returns the index of the task that the agent acts and
// learns on
func (s *SFQL[S]) ActiveTask() int {
	return s.task
}

// SelectAction selects an action from an ε-greedy policy with respect
// to the GPI action values of the active task. In evaluation mode the
// greedy action is always selected.
func (s *SFQL[S]) SelectAction(t timestep.TimeStep[S]) (int, error) {
	if s.task < 0 {
		return -1, fmt.Errorf("selectAction: no active task")
	}

	q, _, err := s.gpi.GPI(t.State, s.task)
	if err != nil {
		return -1, fmt.Errorf("selectAction: %w", err)
	}
	greedyAction := matutils.ArgMaxColMax(q)
	if s.eval {
		return greedyAction, nil
	}

	// Calculate the ε probability of choosing any action at random
	_, numActions := q.Dims()
	prob := s.config.Epsilon / float64(numActions)
	actionProbabilites := make([]float64, numActions)
	for i := range actionProbabilites {
		actionProbabilites[i] = prob
	}

	// Adjust the probability of choosing the greedy action
	actionProbabilites[greedyAction] += (1.0 - s.config.Epsilon)

	dist := distuv.NewCategorical(actionProbabilites, s.seed)
	return int(dist.Rand()), nil
}

// ObserveFirst observes and records the first episodic timestep
func (s *SFQL[S]) ObserveFirst(t timestep.TimeStep[S]) error {
	if !t.First() {
		s.logger.Warn().
			Int("step", t.Number).
			Msg("ObserveFirst() should only be called on the first timestep")
	}
	s.step = timestep.TimeStep[S]{}
	s.nextStep = t
	s.ready = false
	return nil
}

// Observe observes and records any timestep other than the first
// timestep. If reward weights are learned, they are updated towards
// the reward of the timestep.
func (s *SFQL[S]) Observe(action int, nextStep timestep.TimeStep[S]) error {
	s.step = s.nextStep
	s.action = action
	s.nextStep = nextStep
	s.ready = true

	if s.config.LearnWeights && !s.eval {
		_, err := s.gpi.UpdateReward(s.task, nextStep.Phi, nextStep.Reward,
			s.config.WeightLearningRate)
		if err != nil {
			return fmt.Errorf("observe: %w", err)
		}
	}
	return nil
}

// Step adds the last observed transition to the replay buffer and
// updates the successor features of the active task on a batch from
// the buffer. Step does nothing in evaluation mode.
func (s *SFQL[S]) Step() error {
	if s.eval {
		return nil
	}
	if !s.ready {
		return fmt.Errorf("step: no transition observed")
	}
	s.ready = false

	s.buffer.Add(timestep.NewTransition(s.step, s.action, s.nextStep))
	batch, err := s.buffer.Sample()
	if expreplay.IsInsufficientSamples(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("step: %w", err)
	}

	states := make([]S, len(batch))
	actions := make([]int, len(batch))
	phis := make([]mat.Matrix, len(batch))
	nextStates := make([]S, len(batch))
	gammas := make([]float64, len(batch))
	for i, t := range batch {
		if t.Phi == nil {
			return fmt.Errorf("step: transition from %v has no features",
				t.State)
		}
		states[i] = t.State
		actions[i] = t.Action
		phis[i] = t.Phi
		nextStates[i] = t.NextState
		gammas[i] = t.Discount
	}

	err = s.sf.UpdateSuccessorOnBatch(states, actions, phis, nextStates,
		gammas, s.task)
	if err != nil {
		return fmt.Errorf("step: %w", err)
	}
	return nil
}

// EndEpisode performs cleanup at the end of an episode
func (s *SFQL[S]) EndEpisode() {
	s.ready = false
}

// Eval sets the agent to evaluation mode
func (s *SFQL[S]) Eval() {
	s.eval = true
}

// Train sets the agent to training mode
func (s *SFQL[S]) Train() {
	s.eval = false
}

// IsEval returns whether the agent is in evaluation mode
func (s *SFQL[S]) IsEval() bool {
	return s.eval
}
