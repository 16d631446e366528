package qlearning

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/pyramid/agent"
	"github.com/samuelfneumann/pyramid/agent/tabular/qtable"
)

// Config represents a configuration for the QLearning agent
type Config struct {
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
	Discount     float64 `json:"discount" yaml:"discount"`

	// ε-greedy behaviour policy
	Epsilon    float64 `json:"epsilon" yaml:"epsilon"`
	MinEpsilon float64 `json:"min_epsilon" yaml:"min_epsilon"`
	Decay      float64 `json:"decay" yaml:"decay"`
}

// DefaultConfig returns the hyperparameters used to train the tower
// stacking agent
func DefaultConfig() Config {
	return Config{
		LearningRate: 0.2,
		Discount:     0.95,
		Epsilon:      1.0,
		MinEpsilon:   0.1,
		Decay:        0.9999,
	}
}

var _ agent.Config = Config{}

// CreateAgent creates a QLearning agent from the Config which learns
// the values in table
func (c Config) CreateAgent(table *qtable.Table,
	source rand.Source) (agent.Agent, error) {
	if table == nil {
		return nil, fmt.Errorf("createAgent: nil table")
	}
	return New(table, c, source)
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("learning rate must be in (0, 1], got %v",
			c.LearningRate)
	}
	if c.Discount <= 0 || c.Discount >= 1 {
		return fmt.Errorf("discount must be in (0, 1), got %v", c.Discount)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0, 1], got %v", c.Epsilon)
	}
	if c.MinEpsilon < 0 || c.MinEpsilon > c.Epsilon {
		return fmt.Errorf("minimum epsilon must be in [0, epsilon], got %v",
			c.MinEpsilon)
	}
	if c.Decay <= 0 || c.Decay > 1 {
		return fmt.Errorf("epsilon decay must be in (0, 1], got %v", c.Decay)
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.EGreedyQLearningTabular
}
