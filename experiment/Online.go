package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/samuelfneumann/pyramid/agent"
	"github.com/samuelfneumann/pyramid/environment"
	"github.com/samuelfneumann/pyramid/experiment/checkpointer"
	"github.com/samuelfneumann/pyramid/experiment/trackers"
	ts "github.com/samuelfneumann/pyramid/timestep"
	"github.com/samuelfneumann/pyramid/utils/progressbar"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed. Each episode the physics simulation is
// stepped one frame at a time and the Controller decides when blocks
// are dropped.
type Online struct {
	ctrl    *Controller
	physics environment.Physics
	agent   agent.Agent
	dt      float64

	maxEpisodes int
	episodes    int
	best        int

	trackers      []trackers.Tracker
	checkpointers []checkpointer.Checkpointer

	renderEvery int
	renderer    environment.Renderer
	frames      func() string

	progress *progressbar.ManualProgressBar
}

// NewOnline creates and returns a new online experiment. The episodes
// parameter determines how many episodes the experiment is run for, with
// 0 meaning that episodes are run until the experiment is cancelled.
// The t parameter is a slice of trackers.Tracker which determine what
// data is saved.
func NewOnline(ctrl *Controller, physics environment.Physics, a agent.Agent,
	episodes int, t ...trackers.Tracker) *Online {
	return &Online{
		ctrl:        ctrl,
		physics:     physics,
		agent:       a,
		dt:          ctrl.cfg.Dt(),
		maxEpisodes: episodes,
		trackers:    t,
	}
}

// Register registers a trackers.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RegisterCheckpointer registers a checkpointer which is called at the
// end of every episode
func (o *Online) RegisterCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// RenderEvery renders the final frame of every n-th episode to the
// file returned by filename
func (o *Online) RenderEvery(n int, r environment.Renderer,
	filename func() string) error {
	if n <= 0 {
		return fmt.Errorf("renderEvery: interval must be positive, got %v", n)
	}
	o.renderEvery = n
	o.renderer = r
	o.frames = filename
	return nil
}

// SetProgressBar displays p after every episode. Only experiments with
// an episode limit can display progress.
func (o *Online) SetProgressBar(p *progressbar.ManualProgressBar) {
	o.progress = p
}

// Episodes returns the number of finished episodes
func (o *Online) Episodes() int {
	return o.episodes
}

// Best returns the largest number of blocks placed in a single episode
func (o *Online) Best() int {
	return o.best
}

// RunEpisode runs a single episode of the experiment. If ctx is
// cancelled before the episode finishes, the episode is abandoned and
// the context's error is returned.
func (o *Online) RunEpisode(ctx context.Context) (ts.TimeStep, error) {
	step := o.ctrl.Reset()
	o.track(step)

	for !o.ctrl.Finished() {
		if err := ctx.Err(); err != nil {
			return step, err
		}

		if s, dropped := o.ctrl.Update(); dropped {
			step = s
			o.track(step)
		}
		o.physics.Step(o.dt)
	}

	step = o.ctrl.Finish()
	o.track(step)
	o.agent.EndEpisode()
	o.episodes++

	if step.Blocks > o.best {
		o.best = step.Blocks
		log.Info().Msgf("episode %v: new best of %v blocks", o.episodes,
			o.best)
	}

	if err := o.endEpisode(); err != nil {
		return step, err
	}

	log.Debug().
		Int("episode", o.episodes).
		Float64("return", o.ctrl.Return()).
		Float64("final_reward", step.Reward).
		Int("blocks", step.Blocks).
		Stringer("end", step.EndType).
		Msg("episode finished")

	return step, nil
}

// endEpisode renders, checkpoints and reports progress after an episode
func (o *Online) endEpisode() error {
	if o.renderer != nil && o.episodes%o.renderEvery == 0 {
		filename := o.frames()
		if err := o.renderer.Render(filename); err != nil {
			return fmt.Errorf("runEpisode: %w", err)
		}
		log.Info().Msgf("episode %v: rendered %v", o.episodes, filename)
	}

	for _, c := range o.checkpointers {
		if err := c.Checkpoint(o.episodes); err != nil {
			return fmt.Errorf("runEpisode: checkpoint: %w", err)
		}
	}

	if o.progress != nil {
		o.progress.Increment()
		status := fmt.Sprintf("best %v", o.best)
		if p, ok := o.agent.(agent.EGreedyPolicy); ok {
			status += fmt.Sprintf(" | ε %.4f", p.Epsilon())
		}
		o.progress.SetStatus("%v", status)
		o.progress.Display()
	}
	return nil
}

// Run runs the experiment until the episode limit is reached or ctx is
// cancelled. Cancellation is a clean stop and is not reported as an
// error.
func (o *Online) Run(ctx context.Context) error {
	for o.maxEpisodes == 0 || o.episodes < o.maxEpisodes {
		_, err := o.RunEpisode(ctx)
		if errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			log.Info().Msgf("stopping after %v episodes", o.episodes)
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Save saves the data cached by the Trackers to disk. All Trackers are
// saved, and the first error encountered is returned.
func (o *Online) Save() error {
	var first error
	for _, t := range o.trackers {
		if err := t.Save(); err != nil && first == nil {
			first = fmt.Errorf("save: %w", err)
		}
	}
	return first
}

// track sends a TimeStep to each Tracker
func (o *Online) track(step ts.TimeStep) {
	for _, t := range o.trackers {
		t.Track(step)
	}
}
