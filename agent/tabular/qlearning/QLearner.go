package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/pyramid/agent/tabular/qtable"
	"github.com/samuelfneumann/pyramid/agent/tabular/state"
)

// QLearner implements the update functionality for the tabular
// Q-Learning algorithm. Each transition is applied exactly once, at the
// moment it is observed: there are no eligibility traces or replay.
type QLearner struct {
	table        *qtable.Table
	learningRate float64
	discount     float64
}

// NewQLearner creates a new QLearner which updates the values stored
// in table
func NewQLearner(table *qtable.Table, learningRate,
	discount float64) (*QLearner, error) {
	if learningRate <= 0 || learningRate > 1 {
		return nil, fmt.Errorf("newQLearner: learning rate must be in "+
			"(0, 1], got %v", learningRate)
	}
	if discount <= 0 || discount >= 1 {
		return nil, fmt.Errorf("newQLearner: discount must be in (0, 1), "+
			"got %v", discount)
	}
	return &QLearner{table, learningRate, discount}, nil
}

// target returns the Q-Learning update target and the current estimate
// of the action taken in prev
func (q *QLearner) target(prev state.State, action int, reward float64,
	next state.State) (target, estimate float64) {
	// Both states are materialized before reading
	estimate = q.table.At(prev, action)
	target = reward + q.discount*q.table.Max(next)
	return
}

// Learn performs the one-step Q-Learning update:
//
//	Q(s, a) += α * (r + γ max_a' Q(s', a') - Q(s, a))
func (q *QLearner) Learn(prev state.State, action int, reward float64,
	next state.State) {
	target, estimate := q.target(prev, action, reward, next)
	q.table.Set(prev, action, estimate+q.learningRate*(target-estimate))
}

// TdError returns the TD error of a transition without updating the
// table. Unseen states are still added to the table.
func (q *QLearner) TdError(prev state.State, action int, reward float64,
	next state.State) float64 {
	target, estimate := q.target(prev, action, reward, next)
	return target - estimate
}

// EndEpisode performs cleanup at the end of an episode
func (q *QLearner) EndEpisode() {}
