package experiment

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samuelfneumann/sflearn/agent"
	"github.com/samuelfneumann/sflearn/agent/sfql"
	"github.com/samuelfneumann/sflearn/environment"
	"github.com/samuelfneumann/sflearn/environment/gridworld"
	"github.com/samuelfneumann/sflearn/experiment/tracker"
	"github.com/samuelfneumann/sflearn/timestep"
	"github.com/samuelfneumann/sflearn/utils/progressbar"
	"gonum.org/v1/gonum/stat"
)

const progressWidth = 40

// Online is an experiment that trains an agent online on a sequence of
// tasks. A new policy is added for each task and trained for a fixed
// number of episodes before moving on to the next task.
type Online struct {
	id     uuid.UUID
	config Config
	env    *gridworld.GridWorld
	agent  *sfql.SFQL[gridworld.State]
	tasks  []*gridworld.Task

	// returns holds the episodic returns of each task
	returns  []*tracker.Return[gridworld.State]
	trackers []tracker.Tracker[gridworld.State]
	store    *tracker.Store
	database *tracker.Database[gridworld.State]

	currentTask int
	progress    io.Writer
	logger      zerolog.Logger
}

// NewOnline creates and returns a new online experiment from a Config.
// Progress is written to progress if it is not nil.
func NewOnline(c Config, logger zerolog.Logger,
	progress io.Writer) (*Online, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newOnline: invalid config: %w", err)
	}

	id := uuid.New()
	logger = logger.With().Str("run", id.String()).Logger()

	tasks := make([]*gridworld.Task, len(c.Tasks))
	for i, w := range c.Tasks {
		task, err := gridworld.NewTask(w)
		if err != nil {
			return nil, fmt.Errorf("newOnline: task %d: %w", i, err)
		}
		tasks[i] = task
	}

	seeds := sfql.SplitSeed(c.Seed, 2)
	var starter gridworld.Starter
	var err error
	if len(c.Grid.Starts) == 1 {
		start := c.Grid.Starts[0]
		starter, err = gridworld.NewSingleStart(start.X, start.Y, c.Grid.Rows,
			c.Grid.Cols)
	} else {
		starter, err = gridworld.NewUniformStart(c.Grid.Starts, seeds[0])
	}
	if err != nil {
		return nil, fmt.Errorf("newOnline: %w", err)
	}

	env, _, err := gridworld.New(c.Grid.Rows, c.Grid.Cols, starter,
		c.Grid.Objects, c.Grid.Types, tasks[0], c.Grid.Discount,
		c.Grid.MaxSteps)
	if err != nil {
		return nil, fmt.Errorf("newOnline: %w", err)
	}

	learner, err := sfql.New[gridworld.State](c.Agent, seeds[1])
	if err != nil {
		return nil, fmt.Errorf("newOnline: %w", err)
	}
	learner.SetLogger(logger)

	returns := make([]*tracker.Return[gridworld.State], len(tasks))
	for i := range returns {
		returns[i] = tracker.NewReturn[gridworld.State](
			filepath.Join(c.Out, fmt.Sprintf("%v-task%d-return.bin", id, i)))
	}

	o := &Online{
		id:          id,
		config:      c,
		env:         env,
		agent:       learner,
		tasks:       tasks,
		returns:     returns,
		currentTask: -1,
		progress:    progress,
		logger:      logger,
	}

	if c.Database != "" {
		store, err := tracker.NewStore(c.Database)
		if err != nil {
			return nil, fmt.Errorf("newOnline: %w", err)
		}
		o.store = store
		o.database = tracker.NewDatabase[gridworld.State](store, id.String())
		o.Register(o.database)
	}
	return o, nil
}

// Close releases the resources held by the experiment
func (o *Online) Close() error {
	if o.store == nil {
		return nil
	}
	return o.store.Close()
}

// RunID returns the unique identifier of the experiment
func (o *Online) RunID() string {
	return o.id.String()
}

// Agent returns the agent trained by the experiment
func (o *Online) Agent() *sfql.SFQL[gridworld.State] {
	return o.agent
}

// RenderPolicy draws the greedy GPI policy of a task on the GridWorld
func (o *Online) RenderPolicy(task int, colors bool) (string, error) {
	return o.env.RenderPolicy(func(s gridworld.State) (int, error) {
		return o.agent.GPI().Act(s, task)
	}, colors)
}

// Register registers a Tracker with the experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker[gridworld.State]) {
	o.trackers = append(o.trackers, t)
}

// Returns returns the episodic returns of each task trained so far
func (o *Online) Returns() [][]float64 {
	returns := make([][]float64, 0, len(o.returns))
	for i := 0; i <= o.currentTask && i < len(o.returns); i++ {
		returns = append(returns, o.returns[i].Data())
	}
	return returns
}

// NextTask switches the environment to the next task and adds a new
// policy for it to the agent. It returns false if there are no tasks
// left.
func (o *Online) NextTask() (bool, error) {
	if o.currentTask+1 >= len(o.tasks) {
		return false, nil
	}
	o.currentTask++
	task := o.tasks[o.currentTask]

	if err := o.env.SetTask(task); err != nil {
		return false, fmt.Errorf("nextTask: %w", err)
	}
	if _, err := o.agent.AddTask(task, task.Weights()); err != nil {
		return false, fmt.Errorf("nextTask: %w", err)
	}
	if o.database != nil {
		o.database.SetTask(o.currentTask)
	}

	o.logger.Info().
		Int("task", o.currentTask).
		Stringer("weights", task).
		Msg("training on task")
	return true, nil
}

// RunEpisode runs a single episode of the current task and returns the
// episodic return
func (o *Online) RunEpisode(ctx context.Context) (float64, error) {
	if o.currentTask < 0 {
		return 0, fmt.Errorf("runEpisode: no current task")
	}
	return RunEpisode[gridworld.State](ctx, o.agent, o.env, o.track)
}

// RunEpisode runs a single episode of a on env, passing each TimeStep
// to track, and returns the episodic return. Cancelling ctx stops the
// episode before the next action is taken.
func RunEpisode[S comparable](ctx context.Context, a agent.Agent[S],
	env environment.Environment[S],
	track func(timestep.TimeStep[S])) (float64, error) {
	step := env.Reset()
	if err := a.ObserveFirst(step); err != nil {
		return 0, fmt.Errorf("runEpisode: %w", err)
	}
	track(step)

	episodeReturn := 0.0
	for !step.Last() {
		if err := ctx.Err(); err != nil {
			return episodeReturn, fmt.Errorf("runEpisode: %w", err)
		}
		action, err := a.SelectAction(step)
		if err != nil {
			return 0, fmt.Errorf("runEpisode: %w", err)
		}
		step, _, err = env.Step(action)
		if err != nil {
			return 0, fmt.Errorf("runEpisode: %w", err)
		}
		episodeReturn += step.Reward
		track(step)

		if err := a.Observe(action, step); err != nil {
			return 0, fmt.Errorf("runEpisode: %w", err)
		}
		if err := a.Step(); err != nil {
			return 0, fmt.Errorf("runEpisode: %w", err)
		}
	}
	a.EndEpisode()

	return episodeReturn, nil
}

// Run trains the agent on every task in order. Cancelling ctx stops
// the experiment between episodes.
func (o *Online) Run(ctx context.Context) error {
	var bar *progressbar.ProgressBar
	if o.progress != nil {
		total := len(o.tasks) * o.config.EpisodesPerTask
		bar = progressbar.New(o.progress, progressWidth, total)
		defer bar.Close()
	}

	for {
		ok, err := o.NextTask()
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		if !ok {
			return nil
		}

		for ep := 0; ep < o.config.EpisodesPerTask; ep++ {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("run: %w", err)
			}
			if _, err := o.RunEpisode(ctx); err != nil {
				return fmt.Errorf("run: task %d episode %d: %w",
					o.currentTask, ep, err)
			}
			if bar != nil {
				bar.Increment()
				bar.Display()
			}
		}

		returns := o.returns[o.currentTask].Data()
		o.logger.Info().
			Int("task", o.currentTask).
			Int("episodes", len(returns)).
			Float64("mean_return", stat.Mean(returns, nil)).
			Msg("finished task")
	}
}

// Save writes the configuration and the data of all Trackers to disk
func (o *Online) Save() error {
	if err := os.MkdirAll(o.config.Out, 0o755); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	data, err := o.config.Marshal()
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	configFile := filepath.Join(o.config.Out, o.id.String()+"-config.yaml")
	if err := os.WriteFile(configFile, data, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	for i := 0; i <= o.currentTask && i < len(o.returns); i++ {
		if err := o.returns[i].Save(); err != nil {
			return fmt.Errorf("save: task %d: %w", i, err)
		}
	}
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}

	o.logger.Info().Str("dir", o.config.Out).Msg("saved experiment data")
	return nil
}

// track sends the TimeStep to the return tracker of the current task
// and to each registered Tracker
func (o *Online) track(t timestep.TimeStep[gridworld.State]) {
	o.returns[o.currentTask].Track(t)
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}
