package experiment

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/pyramid/agent/tabular/qtable"
	"github.com/samuelfneumann/pyramid/environment/box2d/world"
	"github.com/samuelfneumann/pyramid/experiment/checkpointer"
	"github.com/samuelfneumann/pyramid/experiment/trackers"
	ts "github.com/samuelfneumann/pyramid/timestep"
	"github.com/stretchr/testify/require"
)

type countingCheckpointer struct {
	episodes []int
}

func (c *countingCheckpointer) Checkpoint(episode int) error {
	c.episodes = append(c.episodes, episode)
	return nil
}

func newOnline(t *testing.T, episodes int, actions ...int) (*Online,
	*fakePhysics, *scriptedAgent) {
	t.Helper()
	ctrl, physics, a := newController(t, testConfig(), actions...)
	return NewOnline(ctrl, physics, a, episodes), physics, a
}

func TestRunEpisode(t *testing.T) {
	o, _, a := newOnline(t, 0, 3)
	ret := trackers.NewReturn(filepath.Join(t.TempDir(), "return.bin"))
	o.Register(ret)

	last, err := o.RunEpisode(context.Background())
	require.NoError(t, err)
	require.True(t, last.Last())
	require.Equal(t, ts.MaxBlocks, last.EndType)
	require.Equal(t, 2, last.Blocks)

	require.Equal(t, 1, o.Episodes())
	require.Equal(t, 2, o.Best())
	require.Equal(t, 1, a.episodes)
	require.Len(t, ret.Data(), 1)
	require.InDelta(t, o.ctrl.Return(), ret.Data()[0], 1e-12)
}

func TestRunStopsAtEpisodeLimit(t *testing.T) {
	o, physics, a := newOnline(t, 3, 3, 4)
	blocks := trackers.NewBlocks(filepath.Join(t.TempDir(), "blocks.bin"))
	o.Register(blocks)

	check := &countingCheckpointer{}
	o.RegisterCheckpointer(check)
	require.NoError(t, o.RenderEvery(2, physics,
		checkpointer.Enumerate("", "frame", ".png")))

	require.NoError(t, o.Run(context.Background()))
	require.Equal(t, 3, o.Episodes())
	require.Equal(t, 3, a.episodes)
	require.Equal(t, []float64{2, 2, 2}, blocks.Data())
	require.Equal(t, []int{1, 2, 3}, check.episodes)
	require.Equal(t, []string{"frame0001.png"}, physics.rendered)

	require.NoError(t, o.Save())
}

func TestRunCancelled(t *testing.T) {
	o, _, a := newOnline(t, 0, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, o.Run(ctx))
	require.Equal(t, 0, o.Episodes())
	require.Equal(t, 0, a.episodes)

	_, err := o.RunEpisode(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResumeAfterCancelledEpisode(t *testing.T) {
	o, _, a := newOnline(t, 0, 3)
	ret := trackers.NewReturn(filepath.Join(t.TempDir(), "return.bin"))
	o.Register(ret)

	ctx, cancel := context.WithCancel(context.Background())
	a.onSelect = cancel

	_, err := o.RunEpisode(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, o.Episodes())
	require.Empty(t, ret.Data())

	a.onSelect = nil
	var last ts.TimeStep
	require.NotPanics(t, func() {
		last, err = o.RunEpisode(context.Background())
	})
	require.NoError(t, err)
	require.True(t, last.Last())
	require.Equal(t, 1, o.Episodes())
	require.Len(t, ret.Data(), 1)
	require.InDelta(t, o.ctrl.Return(), ret.Data()[0], 1e-12)
}

func TestRenderEveryValidates(t *testing.T) {
	o, physics, _ := newOnline(t, 1, 3)
	require.Error(t, o.RenderEvery(0, physics, checkpointer.Filename("x")))
}

func TestEvalNeverWritesTable(t *testing.T) {
	c := DefaultConfig()
	c.Tower = testConfig()
	c.Episodes = 3
	c.Eval = true
	c.CheckpointEvery = 1
	c.TablePath = filepath.Join(t.TempDir(), "q_table.gob")

	physics := newFakePhysics(c.Tower.BoardHeight, c.Tower.BlockSize)
	table := qtable.New(len(c.Tower.Actions()))
	exp, err := c.CreateExp(table, physics)
	require.NoError(t, err)
	require.True(t, exp.agent.IsEval())
	require.Empty(t, exp.checkpointers)

	require.NoError(t, exp.Run(context.Background()))
	require.Equal(t, 3, exp.Episodes())

	_, err = os.Stat(c.TablePath)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCreateExpTrainsOnBox2D(t *testing.T) {
	dir := t.TempDir()

	c := DefaultConfig()
	c.Tower.MaxBlocks = 2
	c.Episodes = 2
	c.Seed = 7
	c.TablePath = filepath.Join(dir, "q_table.gob")
	c.CheckpointEvery = 1
	c.RenderEvery = 1
	c.OutputDir = filepath.Join(dir, "frames")

	physics, err := world.New(c.Tower)
	require.NoError(t, err)

	table := qtable.New(len(c.Tower.Actions()))
	ret := trackers.NewReturn(filepath.Join(dir, "return.bin"))
	exp, err := c.CreateExp(table, physics, ret)
	require.NoError(t, err)

	require.NoError(t, exp.Run(context.Background()))
	require.Equal(t, 2, exp.Episodes())
	require.Len(t, ret.Data(), 2)
	require.Greater(t, table.Len(), 0)
	require.Equal(t, 0, physics.Len()-exp.ctrl.Placed())

	loaded, err := qtable.Load(c.TablePath, table.Actions())
	require.NoError(t, err)
	require.Equal(t, table.Len(), loaded.Len())

	for _, frame := range []string{"episode0001.png", "episode0002.png"} {
		_, err := os.Stat(filepath.Join(c.OutputDir, frame))
		require.NoError(t, err)
	}
}
