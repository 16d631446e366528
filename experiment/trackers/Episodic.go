package trackers

import (
	"fmt"

	ts "github.com/samuelfneumann/pyramid/timestep"
)

// Episodic tracks a single value of the last TimeStep of each episode,
// such as the number of blocks placed or the final reward.
//
// Note that an episode must finish for this Tracker to save its data.
type Episodic struct {
	name     string
	value    func(ts.TimeStep) float64
	data     []float64
	filename string
}

// NewBlocks returns a new Tracker which records the number of blocks
// placed in each episode
func NewBlocks(filename string) *Episodic {
	return &Episodic{
		name:     "Blocks",
		value:    func(t ts.TimeStep) float64 { return float64(t.Blocks) },
		filename: filename,
	}
}

// NewFinalReward returns a new Tracker which records the reward of the
// final stack of each episode
func NewFinalReward(filename string) *Episodic {
	return &Episodic{
		name:     "Final reward",
		value:    func(t ts.TimeStep) float64 { return t.Reward },
		filename: filename,
	}
}

// Track caches the tracked value if t is the last TimeStep of an
// episode. All other TimeSteps are ignored.
func (e *Episodic) Track(t ts.TimeStep) {
	if t.Last() {
		e.data = append(e.data, e.value(t))
	}
}

// Data returns the value of every finished episode
func (e *Episodic) Data() []float64 {
	return e.data
}

// Series implements the Seriesable interface
func (e *Episodic) Series() Series {
	return Series{Name: e.name, Values: e.data}
}

// Save saves the tracked data to disk
func (e *Episodic) Save() error {
	if err := saveData(e.filename, e.data); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
