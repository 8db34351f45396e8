// Package experiment implements functionality for running transfer
// experiments with successor feature agents on gridworlds
package experiment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samuelfneumann/sflearn/agent/sfql"
	"github.com/samuelfneumann/sflearn/environment/gridworld"
	"gopkg.in/yaml.v3"
)

// GridConfig configures the GridWorld of an experiment
type GridConfig struct {
	Rows int `yaml:"rows" json:"rows" mapstructure:"rows"`
	Cols int `yaml:"cols" json:"cols" mapstructure:"cols"`

	// Starts holds the starting positions. With more than one position
	// the start is chosen uniformly at random on each episode.
	Starts []gridworld.State `yaml:"starts" json:"starts" mapstructure:"starts"`

	Objects  []gridworld.Object `yaml:"objects" json:"objects" mapstructure:"objects"`
	Types    int                `yaml:"types" json:"types" mapstructure:"types"`
	Discount float64            `yaml:"discount" json:"discount" mapstructure:"discount"`
	MaxSteps int                `yaml:"max_steps" json:"max_steps" mapstructure:"max_steps"`
}

// Config represents a configuration of an experiment. Tasks are given
// as reward weights, one weight per object type, and are trained on
// in order. If Database is set, every finished episode is also recorded
// in the SQLite database at that path.
type Config struct {
	Seed            uint64      `yaml:"seed" json:"seed" mapstructure:"seed"`
	Out             string      `yaml:"out" json:"out" mapstructure:"out"`
	Database        string      `yaml:"database,omitempty" json:"database,omitempty" mapstructure:"database"`
	EpisodesPerTask int         `yaml:"episodes_per_task" json:"episodes_per_task" mapstructure:"episodes_per_task"`
	Tasks           [][]float64 `yaml:"tasks" json:"tasks" mapstructure:"tasks"`
	Grid            GridConfig  `yaml:"grid" json:"grid" mapstructure:"grid"`
	Agent           sfql.Config `yaml:"agent" json:"agent" mapstructure:"agent"`
}

// Default returns a Config with three tasks on a 5 x 5 GridWorld with
// an object of each type in three corners
func Default() Config {
	return Config{
		Seed:            1,
		Out:             ".",
		EpisodesPerTask: 200,
		Tasks: [][]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
		Grid: GridConfig{
			Rows:   5,
			Cols:   5,
			Starts: []gridworld.State{{X: 2, Y: 2}},
			Objects: []gridworld.Object{
				{X: 4, Y: 4, Type: 0},
				{X: 0, Y: 0, Type: 1},
				{X: 4, Y: 0, Type: 2},
			},
			Types:    3,
			Discount: 0.95,
			MaxSteps: 100,
		},
		Agent: sfql.DefaultConfig(),
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Grid.Rows < 1 || c.Grid.Cols < 1 {
		return fmt.Errorf("grid must have at least 1 row and column, "+
			"have (%d, %d)", c.Grid.Rows, c.Grid.Cols)
	}
	if len(c.Grid.Starts) == 0 {
		return fmt.Errorf("grid needs at least 1 starting position")
	}
	if c.Grid.Types < 1 {
		return fmt.Errorf("grid needs at least 1 object type")
	}
	if c.Grid.MaxSteps < 1 {
		return fmt.Errorf("grid needs a step limit of at least 1, have %d",
			c.Grid.MaxSteps)
	}
	if c.Grid.Discount < 0 || c.Grid.Discount > 1 {
		return fmt.Errorf("discount must be in [0, 1], have %v",
			c.Grid.Discount)
	}
	if c.EpisodesPerTask < 1 {
		return fmt.Errorf("need at least 1 episode per task, have %d",
			c.EpisodesPerTask)
	}
	if len(c.Tasks) == 0 {
		return fmt.Errorf("need at least 1 task")
	}
	for i, w := range c.Tasks {
		if len(w) != c.Grid.Types {
			return fmt.Errorf("task %d has %d weights for %d object types",
				i, len(w), c.Grid.Types)
		}
	}
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	return nil
}

// LoadConfig reads a YAML Config from path. Fields missing from the
// file keep their values from Default().
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML Config. Fields missing from data keep
// their values from Default().
func ParseConfig(data []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parseConfig: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("parseConfig: %w", err)
	}
	return c, nil
}

// Marshal encodes the Config as YAML
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
