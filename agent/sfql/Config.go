package sfql

import (
	"fmt"

	"github.com/samuelfneumann/sflearn/buffer/expreplay"
	"github.com/samuelfneumann/sflearn/successor"
)

// Config represents a configuration for the SFQL agent
type Config struct {
	Epsilon      float64 `yaml:"epsilon" json:"epsilon" mapstructure:"epsilon"`
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate" mapstructure:"learning_rate"`

	// Bounds of the uniform noise used to initialize successor features
	NoiseLow  float64 `yaml:"noise_low" json:"noise_low" mapstructure:"noise_low"`
	NoiseHigh float64 `yaml:"noise_high" json:"noise_high" mapstructure:"noise_high"`

	// Transfer determines whether the successor features of a new task
	// are copied from those of the previous task
	Transfer bool `yaml:"transfer" json:"transfer" mapstructure:"transfer"`

	// LearnWeights determines whether reward weights are learned from
	// observed rewards rather than given
	LearnWeights       bool    `yaml:"learn_weights" json:"learn_weights" mapstructure:"learn_weights"`
	WeightLearningRate float64 `yaml:"weight_learning_rate" json:"weight_learning_rate" mapstructure:"weight_learning_rate"`

	Replay expreplay.Config `yaml:"replay" json:"replay" mapstructure:"replay"`
}

// DefaultConfig returns a Config for online learning with transfer
func DefaultConfig() Config {
	return Config{
		Epsilon:            0.1,
		LearningRate:       0.5,
		NoiseLow:           successor.DefaultNoiseLow,
		NoiseHigh:          successor.DefaultNoiseHigh,
		Transfer:           true,
		WeightLearningRate: 0.5,
		Replay: expreplay.Config{
			Sampler:           expreplay.Recent,
			SampleSize:        1,
			MinReplayCapacity: 1,
			MaxReplayCapacity: 1,
		},
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0, 1], have %v", c.Epsilon)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, have %v",
			c.LearningRate)
	}
	if c.NoiseHigh < c.NoiseLow {
		return fmt.Errorf("noise high (%v) must be >= noise low (%v)",
			c.NoiseHigh, c.NoiseLow)
	}
	if c.LearnWeights && c.WeightLearningRate <= 0 {
		return fmt.Errorf("weight learning rate must be positive, have %v",
			c.WeightLearningRate)
	}
	return nil
}
