package agent

import (
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/pyramid/agent/tabular/qtable"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes. The
	// agent learns the action values in table, which may already hold
	// previously learned values, and draws all randomness from source.
	CreateAgent(table *qtable.Table, source rand.Source) (Agent, error)

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of agent the Config creates
	Type() Type
}

// Type represents a specific type of an agent Config
type Type string

const (
	EGreedyQLearningTabular Type = "EGreedyQLearning-Tabular"
)
