package sfql

import (
	"testing"

	"github.com/samuelfneumann/sflearn/buffer/expreplay"
	"github.com/samuelfneumann/sflearn/environment/gridworld"
	"github.com/samuelfneumann/sflearn/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// corridor returns a 1 x 4 grid with an object of type 0 at the right
// end and an object of type 1 at the left end, starting in the middle
func corridor(t *testing.T, w []float64) (*gridworld.GridWorld,
	*gridworld.Task) {
	start, err := gridworld.NewSingleStart(2, 0, 1, 4)
	require.NoError(t, err)
	task, err := gridworld.NewTask(w)
	require.NoError(t, err)

	objects := []gridworld.Object{{X: 3, Y: 0, Type: 0}, {X: 0, Y: 0, Type: 1}}
	g, _, err := gridworld.New(1, 4, start, objects, 2, task, 0.9, 50)
	require.NoError(t, err)
	return g, task
}

// train runs episodes of the agent on env and returns the return of
// each episode
func train(t *testing.T, agent *SFQL[gridworld.State],
	env *gridworld.GridWorld, episodes int) []float64 {
	returns := make([]float64, episodes)
	for ep := 0; ep < episodes; ep++ {
		step := env.Reset()
		require.NoError(t, agent.ObserveFirst(step))
		for !step.Last() {
			action, err := agent.SelectAction(step)
			require.NoError(t, err)
			step, _, err = env.Step(action)
			require.NoError(t, err)
			returns[ep] += step.Reward
			require.NoError(t, agent.Observe(action, step))
			require.NoError(t, agent.Step())
		}
		agent.EndEpisode()
	}
	return returns
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := map[string]func(*Config){
		"epsilon < 0":       func(c *Config) { c.Epsilon = -0.1 },
		"epsilon > 1":       func(c *Config) { c.Epsilon = 1.1 },
		"learning rate":     func(c *Config) { c.LearningRate = 0 },
		"noise bounds":      func(c *Config) { c.NoiseLow, c.NoiseHigh = 1, 0 },
		"weight learn rate": func(c *Config) { c.LearnWeights, c.WeightLearningRate = true, 0 },
	}
	for name, modify := range tests {
		c := DefaultConfig()
		modify(&c)
		assert.Error(t, c.Validate(), name)

		_, err := New[int](c, 0)
		assert.Error(t, err, name)
	}
}

func TestLearnsCorridor(t *testing.T) {
	env, task := corridor(t, []float64{1, 0})

	c := DefaultConfig()
	c.Epsilon = 0.2
	agent, err := New[gridworld.State](c, 1)
	require.NoError(t, err)

	_, err = agent.SelectAction(env.Reset())
	assert.Error(t, err, "no task added yet")

	index, err := agent.AddTask(task, task.Weights())
	require.NoError(t, err)
	assert.Equal(t, 0, index)

	train(t, agent, env, 200)

	// The greedy policy moves right to collect the rewarding object
	agent.Eval()
	assert.True(t, agent.IsEval())
	returns := train(t, agent, env, 1)
	assert.Equal(t, 1.0, returns[0])

	step := env.Reset()
	action, err := agent.SelectAction(step)
	require.NoError(t, err)
	assert.Equal(t, gridworld.Right, action)
}

func TestTransferAndGPI(t *testing.T) {
	env, right := corridor(t, []float64{1, 0})

	c := DefaultConfig()
	c.Epsilon = 0.3
	agent, err := New[gridworld.State](c, 2)
	require.NoError(t, err)

	_, err = agent.AddTask(right, right.Weights())
	require.NoError(t, err)
	train(t, agent, env, 300)

	// A new task rewards the left object instead
	left, err := gridworld.NewTask([]float64{0, 1})
	require.NoError(t, err)
	require.NoError(t, env.SetTask(left))

	index, err := agent.AddTask(left, left.Weights())
	require.NoError(t, err)
	assert.Equal(t, 1, index)
	assert.Equal(t, 1, agent.ActiveTask())

	// The new table starts as a copy of the first
	first, err := agent.Successors().Psi(0)
	require.NoError(t, err)
	second, err := agent.Successors().Psi(1)
	require.NoError(t, err)
	assert.Equal(t, first.Len(), second.Len())

	snapshot := make(map[gridworld.State]*mat.Dense)
	for _, state := range first.States() {
		a, err := first.Get(state)
		require.NoError(t, err)
		b, err := second.Get(state)
		require.NoError(t, err)
		assert.True(t, mat.Equal(a, b), "state %v", state)
		assert.NotSame(t, a, b)
		snapshot[state] = mat.DenseCopyOf(a)
	}

	// Training on the new task only changes the new table
	train(t, agent, env, 100)
	for state, want := range snapshot {
		a, err := first.Get(state)
		require.NoError(t, err)
		assert.True(t, mat.Equal(want, a), "state %v", state)
	}

	// Switching back to the first task recovers its behaviour
	agent.Eval()
	require.NoError(t, agent.SetActiveTask(0))
	require.NoError(t, env.SetTask(right))
	returns := train(t, agent, env, 1)
	assert.Equal(t, 1.0, returns[0])

	assert.Error(t, agent.SetActiveTask(2))
}

func TestLearnWeights(t *testing.T) {
	env, task := corridor(t, []float64{0.5, -1})

	c := DefaultConfig()
	c.LearnWeights = true
	c.Epsilon = 1
	agent, err := New[gridworld.State](c, 3)
	require.NoError(t, err)

	_, err = agent.AddTask(task, task.Weights())
	require.NoError(t, err)
	w, err := agent.GPI().Weights(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, w.RawVector().Data, "weights start at 0")

	train(t, agent, env, 200)
	assert.InDeltaSlice(t, []float64{0.5, -1}, w.RawVector().Data, 1e-3)
}

func TestReplay(t *testing.T) {
	env, task := corridor(t, []float64{1, 0})

	c := DefaultConfig()
	c.Replay = expreplay.Config{
		Sampler:           expreplay.Uniform,
		SampleSize:        4,
		MinReplayCapacity: 8,
		MaxReplayCapacity: 64,
	}
	agent, err := New[gridworld.State](c, 4)
	require.NoError(t, err)
	_, err = agent.AddTask(task, task.Weights())
	require.NoError(t, err)

	train(t, agent, env, 200)

	agent.Eval()
	returns := train(t, agent, env, 1)
	assert.Equal(t, 1.0, returns[0])
}

func TestStepWithoutObserve(t *testing.T) {
	env, task := corridor(t, []float64{1, 0})
	agent, err := New[gridworld.State](DefaultConfig(), 0)
	require.NoError(t, err)
	_, err = agent.AddTask(task, task.Weights())
	require.NoError(t, err)

	require.NoError(t, agent.ObserveFirst(env.Reset()))
	assert.Error(t, agent.Step())

	// Nothing is learned in evaluation mode
	agent.Eval()
	assert.NoError(t, agent.Step())
	agent.Train()
	assert.False(t, agent.IsEval())

	_, err = agent.AddTask(task, mat.NewVecDense(3, nil))
	assert.Error(t, err)
}

func TestObserveFirstNotFirst(t *testing.T) {
	agent, err := New[int](DefaultConfig(), 0)
	require.NoError(t, err)
	assert.NoError(t, agent.ObserveFirst(timestep.New(timestep.Mid, 1, nil,
		0, 0.9, 4)))
}

func TestSplitSeed(t *testing.T) {
	seeds := SplitSeed(7, 3)
	require.Len(t, seeds, 3)
	assert.Equal(t, seeds, SplitSeed(7, 3), "deterministic")
	assert.NotEqual(t, seeds[0], seeds[1])
	assert.NotEqual(t, seeds[1], seeds[2])
	assert.NotEqual(t, seeds[0], seeds[2])
	assert.NotEqual(t, seeds, SplitSeed(8, 3))

	// The exploration stream differs from the noise stream
	noise := rand.New(rand.NewSource(seeds[0]))
	explore := rand.New(rand.NewSource(seeds[2]))
	assert.NotEqual(t, noise.Float64(), explore.Float64())
}
