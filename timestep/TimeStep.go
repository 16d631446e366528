// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"github.com/samuelfneumann/pyramid/agent/tabular/state"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType denotes why an episode ended
type EndType int

const (
	Unfinished EndType = iota
	MaxBlocks          // The block budget was used up
	FellOff            // Some block fell off the board
	InvalidPlacement   // A block landed too far from the stack
)

func (e EndType) String() string {
	switch e {
	case MaxBlocks:
		return "MaxBlocks"
	case FellOff:
		return "FellOff"
	case InvalidPlacement:
		return "InvalidPlacement"
	default:
		return "Unfinished"
	}
}

// TimeStep packages together a single timestep in an episode. A Mid
// TimeStep is produced for each dropped block and a Last TimeStep when
// the episode ends.
type TimeStep struct {
	StepType
	EndType
	Reward      float64
	Observation state.State
	Number      int // Index of the step in its episode
	Blocks      int // Blocks placed so far in the episode
}

// New returns a new TimeStep
func New(t StepType, r float64, o state.State, n, blocks int) TimeStep {
	return TimeStep{StepType: t, Reward: r, Observation: o, Number: n,
		Blocks: blocks}
}

// First returns whether a TimeStep is the first in an episode
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd sets the reason for the episode ending
func (t *TimeStep) SetEnd(e EndType) {
	t.EndType = e
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Blocks: %v  |  " +
		"Step Number:  %v"
	if t.Last() {
		str += fmt.Sprintf("  |  End: %v", t.EndType)
	}

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Blocks, t.Number)
}
