// Package policy implements policies which act on tabular action
// values
package policy

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/pyramid/agent/tabular/qtable"
	"github.com/samuelfneumann/pyramid/agent/tabular/state"
	"github.com/samuelfneumann/pyramid/utils/floatutils"
)

// EGreedy implements an ε-greedy policy over a qtable.Table
//
// With probability ε an action is chosen uniformly at random, otherwise
// the greedy action is taken. Ties between greedy actions are broken by
// choosing the lowest action index. ε decays multiplicatively by calling
// Decay, but never falls below a minimum value.
type EGreedy struct {
	table *qtable.Table

	epsilon    float64
	minEpsilon float64
	decay      float64

	rng    *rand.Rand
	sample distuv.Uniform

	eval bool
}

// NewEGreedy constructs a new EGreedy policy acting on table. The
// argument e is the initial probability with which a random action is
// selected, minE the smallest value e can decay to and decay the
// multiplicative decay factor applied by Decay. All randomness is drawn
// from source.
func NewEGreedy(table *qtable.Table, e, minE, decay float64,
	source rand.Source) (*EGreedy, error) {
	if e < 0 || e > 1 {
		return nil, fmt.Errorf("newEGreedy: epsilon must be in [0, 1], "+
			"got %v", e)
	}
	if minE < 0 || minE > e {
		return nil, fmt.Errorf("newEGreedy: minimum epsilon must be in "+
			"[0, %v], got %v", e, minE)
	}
	if decay <= 0 || decay > 1 {
		return nil, fmt.Errorf("newEGreedy: decay must be in (0, 1], "+
			"got %v", decay)
	}
	if source == nil {
		return nil, fmt.Errorf("newEGreedy: nil random source")
	}

	return &EGreedy{
		table:      table,
		epsilon:    e,
		minEpsilon: minE,
		decay:      decay,
		rng:        rand.New(source),
		sample:     distuv.Uniform{Min: 0.0, Max: 1.0, Src: source},
	}, nil
}

// NewGreedy creates a new policy which always acts greedily
func NewGreedy(table *qtable.Table, source rand.Source) (*EGreedy, error) {
	return NewEGreedy(table, 0.0, 0.0, 1.0, source)
}

// SelectAction selects an action in state s. If the greedy action is
// taken and s has never been seen before, s is added to the table.
func (p *EGreedy) SelectAction(s state.State) int {
	if !p.eval && p.sample.Rand() < p.epsilon {
		return p.rng.Intn(p.table.Actions())
	}
	return p.table.Greedy(s)
}

// Epsilon returns the current probability of acting randomly
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SetEpsilon sets ε, clipped to lie between the minimum ε and 1
func (p *EGreedy) SetEpsilon(e float64) {
	p.epsilon = floatutils.ClipInterval(e, r1.Interval{
		Min: p.minEpsilon,
		Max: 1.0,
	})
}

// Decay decays ε by the decay factor. ε never decays below the minimum
// ε.
func (p *EGreedy) Decay() {
	p.epsilon = floatutils.Max(p.minEpsilon, p.epsilon*p.decay)
}

// Eval sets the policy to evaluation mode, where it always acts
// greedily
func (p *EGreedy) Eval() { p.eval = true }

// Train sets the policy to training mode
func (p *EGreedy) Train() { p.eval = false }

// IsEval returns whether the policy is in evaluation mode
func (p *EGreedy) IsEval() bool { return p.eval }
