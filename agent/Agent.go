// Package agent defines the interfaces implemented by tabular agents
package agent

import (
	"github.com/samuelfneumann/pyramid/agent/tabular/state"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns action values, and a
// Policy which chooses actions in each state. The Policy chooses which
// actions are taken, and the Learner uses these actions to update the
// values that the Policy acts on.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how action
// values are updated.
type Learner interface {
	// Learn updates the learner on the transition from prev to next
	// after taking action and receiving reward
	Learn(prev state.State, action int, reward float64, next state.State)

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// TdErrorer is a Learner that can return the TD error of some
// transition without learning from it
type TdErrorer interface {
	Learner

	// TdError returns the TD error on a transition
	TdError(prev state.State, action int, reward float64,
		next state.State) float64
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. For a given agent, the
// Policy and Learner should share the same action values so that any
// changes the learner makes are reflected in the actions the Policy
// chooses.
type Policy interface {
	SelectAction(s state.State) int
	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}

// EGreedyPolicy is a Policy which explores uniformly at random with
// probability Epsilon()
type EGreedyPolicy interface {
	Policy
	SetEpsilon(float64)
	Epsilon() float64
}
