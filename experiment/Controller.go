package experiment

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/samuelfneumann/pyramid/agent"
	"github.com/samuelfneumann/pyramid/agent/tabular/state"
	"github.com/samuelfneumann/pyramid/environment"
	"github.com/samuelfneumann/pyramid/environment/tower"
	ts "github.com/samuelfneumann/pyramid/timestep"
)

// noAction marks that no block has been dropped in the current episode
const noAction = -1

// Controller drives a single tower-stacking episode. Update must be
// called once per simulation frame. Every DropInterval frames the agent
// chooses where to drop the next block, the block is dropped and left
// to settle, and the agent learns from the resulting reward.
//
// The episode finishes when the block budget is used up, when some block
// falls off the board or when a block lands too far from the stack. A
// finished Controller ignores Update until Reset is called.
type Controller struct {
	cfg     tower.Config
	physics environment.Physics
	agent   agent.Agent
	task    *tower.Task
	encoder *state.Encoder
	actions []float64

	blocks   []environment.Block
	timer    int
	placed   int
	finished bool
	closed   bool
	end      ts.EndType

	// Pending (state, action) pair awaiting the terminal update
	prevState  state.State
	prevAction int

	number int
	ret    float64
}

// NewController returns a new Controller for the board described by c.
// The physics simulation must be empty.
func NewController(c tower.Config, physics environment.Physics,
	a agent.Agent, task *tower.Task) (*Controller, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newController: %w", err)
	}
	encoder, err := c.Encoder()
	if err != nil {
		return nil, fmt.Errorf("newController: %w", err)
	}

	ctrl := &Controller{
		cfg:     c,
		physics: physics,
		agent:   a,
		task:    task,
		encoder: encoder,
		actions: c.Actions(),
	}
	ctrl.Reset()
	return ctrl, nil
}

// Blocks returns the blocks placed in the current episode, in placement
// order
func (c *Controller) Blocks() []environment.Block {
	return c.blocks
}

// Placed returns the number of blocks placed in the current episode
func (c *Controller) Placed() int {
	return c.placed
}

// Finished returns whether the current episode has ended
func (c *Controller) Finished() bool {
	return c.finished
}

// EndType returns why the episode ended
func (c *Controller) EndType() ts.EndType {
	return c.end
}

// Return returns the sum of rewards seen so far in the episode
func (c *Controller) Return() float64 {
	return c.ret
}

// State returns the encoding of the current stack
func (c *Controller) State() state.State {
	return c.encoder.Encode(c.blocks)
}

// Update advances the episode by one frame. If a block was dropped
// during the frame, the resulting TimeStep is returned along with true.
func (c *Controller) Update() (ts.TimeStep, bool) {
	if c.finished {
		return ts.TimeStep{}, false
	}

	var step ts.TimeStep
	dropped := false

	c.timer++
	if c.timer >= c.cfg.DropInterval {
		c.timer = 0
		if c.placed < c.cfg.MaxBlocks {
			step = c.drop()
			dropped = true
		} else {
			c.finish(ts.MaxBlocks)
		}
	}

	if !c.finished && c.task.Rules().AnyFellOff(c.blocks) {
		c.finish(ts.FellOff)
	}

	return step, dropped
}

// drop lets the agent drop a single block and learn from the outcome
func (c *Controller) drop() ts.TimeStep {
	prev := c.encoder.Encode(c.blocks)
	action := c.agent.SelectAction(prev)
	if action < 0 || action >= len(c.actions) {
		panic(fmt.Sprintf("drop: agent selected illegal action %v", action))
	}

	b := c.physics.PlaceBlock(c.actions[action], c.cfg.SpawnY)
	for i := 0; i < c.cfg.SettleSteps; i++ {
		c.physics.Step(c.cfg.Dt())
	}

	rules := c.task.Rules()
	if rules.FellOff(b) {
		c.finish(ts.FellOff)
	} else if rules.Invalid(c.blocks, b) {
		c.finish(ts.InvalidPlacement)
	}

	// An invalid block stays in the episode so that it is penalized
	c.blocks = append(c.blocks, b)
	c.placed++

	next := c.encoder.Encode(c.blocks)
	reward := c.task.Reward(c.blocks)
	c.learn(prev, action, reward, next)

	c.prevState, c.prevAction = prev, action
	c.number++
	c.ret += reward

	return ts.New(ts.Mid, reward, next, c.number, c.placed)
}

// learn updates the agent unless it is being evaluated. At debug level
// the TD error of the transition is logged before the update.
func (c *Controller) learn(prev state.State, action int, reward float64,
	next state.State) {
	if c.agent.IsEval() {
		return
	}

	if e := log.Debug(); e.Enabled() {
		if td, ok := c.agent.(agent.TdErrorer); ok {
			e.Str("state", prev.String()).
				Int("action", action).
				Float64("reward", reward).
				Float64("td_error", td.TdError(prev, action, reward, next)).
				Msg("learn")
		} else {
			e.Discard()
		}
	}

	c.agent.Learn(prev, action, reward, next)
}

func (c *Controller) finish(end ts.EndType) {
	c.finished = true
	c.end = end
}

// Finish closes a finished episode and returns its last TimeStep. The
// stack is scored once more and the agent learns from that terminal
// reward on the last (state, action) pair it chose. Finish panics if the
// episode has not finished or was already closed.
func (c *Controller) Finish() ts.TimeStep {
	if !c.finished {
		panic("finish: episode has not finished")
	}
	if c.closed {
		panic("finish: episode already closed")
	}
	c.closed = true

	reward := c.task.Reward(c.blocks)
	next := c.encoder.Encode(c.blocks)
	if c.prevAction != noAction {
		c.learn(c.prevState, c.prevAction, reward, next)
	}

	c.number++
	c.ret += reward

	step := ts.New(ts.Last, reward, next, c.number, c.placed)
	step.SetEnd(c.end)
	return step
}

// Reset removes all blocks from the simulation and starts a new
// episode, returning its first TimeStep
func (c *Controller) Reset() ts.TimeStep {
	for _, b := range c.blocks {
		c.physics.Remove(b)
	}
	c.blocks = c.blocks[:0]
	c.timer = 0
	c.placed = 0
	c.finished = false
	c.closed = false
	c.end = ts.Unfinished
	c.prevState = state.Empty(c.encoder.Columns())
	c.prevAction = noAction
	c.number = 0
	c.ret = 0

	return ts.New(ts.First, 0, c.prevState, 0, 0)
}
