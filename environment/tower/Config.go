// Package tower implements the rules and reward schemes of the
// pyramid-stacking task, in which square blocks are dropped onto a
// board one at a time and should settle into a centred pyramid.
package tower

import (
	"fmt"

	"github.com/samuelfneumann/pyramid/agent/tabular/state"
)

// TaskName names a reward shaping scheme
type TaskName string

// Tasks available for configuration
const (
	Taper    TaskName = "taper"
	Symmetry TaskName = "symmetry"
	Centroid TaskName = "centroid"
	Hybrid   TaskName = "hybrid"
)

// Config describes the geometry of the board, the timing of block
// drops and the reward scheme. All lengths are in screen pixels.
// Configurations are JSON and YAML serializable.
type Config struct {
	BoardWidth  float64 `json:"board_width" yaml:"board_width"`
	BoardHeight float64 `json:"board_height" yaml:"board_height"`
	BlockSize   float64 `json:"block_size" yaml:"block_size"`

	MaxBlocks    int     `json:"max_blocks" yaml:"max_blocks"`
	DropInterval int     `json:"drop_interval" yaml:"drop_interval"` // frames
	SettleSteps  int     `json:"settle_steps" yaml:"settle_steps"`
	FPS          float64 `json:"fps" yaml:"fps"`
	SpawnY       float64 `json:"spawn_y" yaml:"spawn_y"`
	Gravity      float64 `json:"gravity" yaml:"gravity"` // px/s²

	Task          TaskName `json:"task" yaml:"task"`
	Penalty       float64  `json:"penalty" yaml:"penalty"`
	HeightWeight  float64  `json:"height_weight" yaml:"height_weight"`
	CenterWeight  float64  `json:"center_weight" yaml:"center_weight"`
	SymmetryBonus float64  `json:"symmetry_bonus" yaml:"symmetry_bonus"`
}

// DefaultConfig returns the default board: a 900x900 board with 125px
// blocks, 30 blocks per episode and the column-taper reward
func DefaultConfig() Config {
	return Config{
		BoardWidth:    900,
		BoardHeight:   900,
		BlockSize:     125,
		MaxBlocks:     30,
		DropInterval:  60,
		SettleSteps:   70,
		FPS:           150,
		SpawnY:        30,
		Gravity:       8000,
		Task:          Taper,
		Penalty:       15,
		HeightWeight:  1,
		CenterWeight:  1,
		SymmetryBonus: 10,
	}
}

// Columns returns the number of playable columns on the board
func (c Config) Columns() int {
	return int(c.BoardWidth / c.BlockSize)
}

// Dt returns the duration of a single simulation frame in seconds
func (c Config) Dt() float64 {
	return 1.0 / c.FPS
}

// Actions returns the horizontal drop coordinates available to agents:
// the centre of each playable column, from left to right. Action i
// drops a block at Actions()[i]. A partial column left over at the
// right edge of the board is not playable.
func (c Config) Actions() []float64 {
	actions := make([]float64, c.Columns())
	for i := range actions {
		actions[i] = c.BlockSize/2 + float64(i)*c.BlockSize
	}
	return actions
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.BoardWidth <= 0 || c.BoardHeight <= 0 {
		return fmt.Errorf("board dimensions must be positive, got %vx%v",
			c.BoardWidth, c.BoardHeight)
	}
	if c.BlockSize <= 0 || c.BlockSize > c.BoardWidth {
		return fmt.Errorf("block size must be in (0, %v], got %v",
			c.BoardWidth, c.BlockSize)
	}
	if c.MaxBlocks <= 0 {
		return fmt.Errorf("max blocks must be positive, got %v", c.MaxBlocks)
	}
	if c.DropInterval <= 0 {
		return fmt.Errorf("drop interval must be positive, got %v",
			c.DropInterval)
	}
	if c.SettleSteps < 0 {
		return fmt.Errorf("settle steps cannot be negative, got %v",
			c.SettleSteps)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v", c.FPS)
	}
	if c.SpawnY >= c.BoardHeight {
		return fmt.Errorf("spawn height %v is below the board", c.SpawnY)
	}
	if c.Penalty <= 0 {
		return fmt.Errorf("terminal penalty magnitude must be positive, "+
			"got %v", c.Penalty)
	}
	if _, err := c.Shaping(); err != nil {
		return err
	}
	return nil
}

// Encoder returns the state encoder for the board
func (c Config) Encoder() (*state.Encoder, error) {
	return state.NewEncoder(c.Columns(), c.BlockSize, c.BoardHeight)
}

// Rules returns the placement rules of the board
func (c Config) Rules() Rules {
	return NewRules(c.BlockSize, c.BoardHeight)
}

// Shaping returns the reward shaping scheme named by the Config
func (c Config) Shaping() (Shaping, error) {
	symmetry := SymmetryShaping{
		HeightWeight: c.HeightWeight,
		CenterWeight: c.CenterWeight,
	}
	taper := TaperShaping{Bonus: c.SymmetryBonus}

	switch c.Task {
	case Taper:
		return taper, nil

	case Symmetry:
		return symmetry, nil

	case Centroid:
		return CentroidShaping{
			HeightWeight: c.HeightWeight,
			CenterWeight: c.CenterWeight,
			BoardWidth:   c.BoardWidth,
		}, nil

	case Hybrid:
		return HybridShaping{symmetry, taper}, nil
	}

	return nil, fmt.Errorf("no such task %q", c.Task)
}

// NewTask returns the Task described by the Config
func (c Config) NewTask() (*Task, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newTask: %w", err)
	}

	encoder, err := c.Encoder()
	if err != nil {
		return nil, fmt.Errorf("newTask: %w", err)
	}

	shaping, err := c.Shaping()
	if err != nil {
		return nil, fmt.Errorf("newTask: %w", err)
	}

	return NewTask(c.Rules(), encoder, shaping, c.Penalty), nil
}
