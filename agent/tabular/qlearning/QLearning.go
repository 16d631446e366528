// Package qlearning implements the tabular Q-Learning algorithm.
//
// The behaviour policy is ε-greedy with multiplicative ε decay at the
// end of every episode. The policy and learner share a single
// qtable.Table.
package qlearning

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/pyramid/agent/tabular/policy"
	"github.com/samuelfneumann/pyramid/agent/tabular/qtable"
)

// QLearning implements the Q-Learning algorithm
type QLearning struct {
	*QLearner
	*policy.EGreedy
	table *qtable.Table
}

// New creates a new QLearning agent which learns the values in table.
// All randomness used by the agent is drawn from source.
func New(table *qtable.Table, c Config, source rand.Source) (*QLearning,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	behaviour, err := policy.NewEGreedy(table, c.Epsilon, c.MinEpsilon,
		c.Decay, source)
	if err != nil {
		return nil, fmt.Errorf("new: could not create policy: %w", err)
	}

	learner, err := NewQLearner(table, c.LearningRate, c.Discount)
	if err != nil {
		return nil, fmt.Errorf("new: could not create learner: %w", err)
	}

	return &QLearning{learner, behaviour, table}, nil
}

// Table returns the action values learned by the agent
func (q *QLearning) Table() *qtable.Table {
	return q.table
}

// EndEpisode decays the exploration rate of the behaviour policy. In
// evaluation mode the exploration rate is left untouched.
func (q *QLearning) EndEpisode() {
	q.QLearner.EndEpisode()
	if !q.IsEval() {
		q.Decay()
	}
}
