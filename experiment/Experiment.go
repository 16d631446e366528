// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"

	"github.com/samuelfneumann/pyramid/agent"
	"github.com/samuelfneumann/pyramid/agent/tabular/qlearning"
	"github.com/samuelfneumann/pyramid/agent/tabular/qtable"
	"github.com/samuelfneumann/pyramid/environment"
	"github.com/samuelfneumann/pyramid/environment/tower"
	"github.com/samuelfneumann/pyramid/experiment/checkpointer"
	"github.com/samuelfneumann/pyramid/experiment/trackers"
	ts "github.com/samuelfneumann/pyramid/timestep"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments send each TimeStep to their Trackers, which cache data
// in RAM to be later saved to disk. The Save() function will then
// flush all cached data to disk. This is usually performed after an
// experiment has been run, or when it is interrupted. The Run() method
// runs all episodes until the episode limit is reached or the context
// is cancelled. The RunEpisode() function runs a single episode.
type Experiment interface {
	Run(ctx context.Context) error
	RunEpisode(ctx context.Context) (ts.TimeStep, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new trackers.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t trackers.Tracker)
}

// Config represents a configuration of an experiment. Configs can be
// read from JSON or YAML files with LoadConfig.
type Config struct {
	Tower tower.Config     `json:"tower" yaml:"tower"`
	Agent qlearning.Config `json:"agent" yaml:"agent"`

	Episodes int    `json:"episodes" yaml:"episodes"` // 0 runs until cancelled
	Seed     uint64 `json:"seed" yaml:"seed"`

	// Eval runs the greedy policy without learning. The table is never
	// written in evaluation mode.
	Eval bool `json:"eval" yaml:"eval"`

	TablePath       string `json:"table_path" yaml:"table_path"`
	CheckpointEvery int    `json:"checkpoint_every" yaml:"checkpoint_every"` // 0 disables
	RenderEvery     int    `json:"render_every" yaml:"render_every"`         // 0 disables
	OutputDir       string `json:"output_dir" yaml:"output_dir"`
	DBPath          string `json:"db_path" yaml:"db_path"` // empty disables
}

// DefaultConfig returns the default experiment configuration
func DefaultConfig() Config {
	return Config{
		Tower:           tower.DefaultConfig(),
		Agent:           qlearning.DefaultConfig(),
		Episodes:        0,
		Seed:            0,
		TablePath:       "q_table.gob",
		CheckpointEvery: 100,
		RenderEvery:     0,
		OutputDir:       "output",
		DBPath:          "",
	}
}

// LoadConfig reads a Config from a JSON or YAML file, chosen by the
// file's extension. Fields missing from the file keep their default
// values.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	default:
		return Config{}, fmt.Errorf("loadConfig: unknown config format %q",
			ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode %v: %w",
			path, err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	return c, nil
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if err := c.Tower.Validate(); err != nil {
		return fmt.Errorf("tower: %w", err)
	}
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if c.Episodes < 0 {
		return fmt.Errorf("episodes cannot be negative, got %v", c.Episodes)
	}
	if c.TablePath == "" {
		return fmt.Errorf("table path must be set")
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("checkpoint interval cannot be negative, got %v",
			c.CheckpointEvery)
	}
	if c.RenderEvery < 0 {
		return fmt.Errorf("render interval cannot be negative, got %v",
			c.RenderEvery)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must be set")
	}
	return nil
}

// CreateExp creates an online experiment which trains the action values
// in table on the physics simulation. If table is nil, learning starts
// from an empty table. Unless the Config is in evaluation mode, the
// table is checkpointed to the Config's TablePath every CheckpointEvery
// episodes.
func (c Config) CreateExp(table *qtable.Table, physics environment.Physics,
	t ...trackers.Tracker) (*Online, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	numActions := len(c.Tower.Actions())
	if table == nil {
		table = qtable.New(numActions)
	}

	var agentConf agent.Config = c.Agent
	a, err := agentConf.CreateAgent(table, rand.NewSource(c.Seed))
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %w", err)
	}
	if c.Eval {
		a.Eval()
	}
	log.Info().Msgf("created %v agent with %v known states",
		agentConf.Type(), table.Len())

	task, err := c.Tower.NewTask()
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	ctrl, err := NewController(c.Tower, physics, a, task)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	exp := NewOnline(ctrl, physics, a, c.Episodes, t...)

	if c.CheckpointEvery > 0 && !c.Eval {
		check, err := checkpointer.NewNEpisode(c.CheckpointEvery, table,
			checkpointer.Filename(c.TablePath))
		if err != nil {
			return nil, fmt.Errorf("createExp: %w", err)
		}
		exp.RegisterCheckpointer(check)
	}

	if c.RenderEvery > 0 {
		renderer, ok := physics.(environment.Renderer)
		if !ok {
			return nil, fmt.Errorf("createExp: physics %T cannot render",
				physics)
		}
		if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("createExp: %w", err)
		}
		frames := checkpointer.Enumerate(c.OutputDir, "episode", ".png")
		if err := exp.RenderEvery(c.RenderEvery, renderer, frames); err != nil {
			return nil, fmt.Errorf("createExp: %w", err)
		}
	}

	return exp, nil
}
