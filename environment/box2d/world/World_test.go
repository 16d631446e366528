package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/pyramid/agent/tabular/state"
	"github.com/samuelfneumann/pyramid/environment"
	"github.com/samuelfneumann/pyramid/environment/tower"
	"github.com/stretchr/testify/require"
)

// Enough frames for a block spawned at the top of the board to land
// and come to rest
const settleFrames = 300

func newWorld(t *testing.T) (*World, tower.Config) {
	t.Helper()
	c := tower.DefaultConfig()
	w, err := New(c)
	require.NoError(t, err)
	return w, c
}

func settle(w *World, c tower.Config) {
	for i := 0; i < settleFrames; i++ {
		w.Step(c.Dt())
	}
}

func TestBlockLandsOnFloor(t *testing.T) {
	w, c := newWorld(t)

	b := w.PlaceBlock(450, c.SpawnY)
	require.InDelta(t, 450, b.Position().X, 1e-9)
	require.InDelta(t, c.SpawnY, b.Position().Y, 1e-9)

	settle(w, c)

	floorY := c.BoardHeight - c.BlockSize/2
	require.InDelta(t, 450, b.Position().X, 1.0)
	require.InDelta(t, floorY, b.Position().Y, 3.0)

	e, err := c.Encoder()
	require.NoError(t, err)
	s := e.Encode([]environment.Block{b})
	require.Equal(t, state.New([]int{0, 0, 0, 1, 0, 0, 0}, false), s)
}

func TestBlocksStack(t *testing.T) {
	w, c := newWorld(t)

	lower := w.PlaceBlock(450, c.SpawnY)
	settle(w, c)
	upper := w.PlaceBlock(450, c.SpawnY)
	settle(w, c)

	floorY := c.BoardHeight - c.BlockSize/2
	require.InDelta(t, floorY, lower.Position().Y, 3.0)
	require.InDelta(t, floorY-c.BlockSize, upper.Position().Y, 5.0)

	rules := c.Rules()
	require.False(t, rules.AnyFellOff([]environment.Block{lower, upper}))
}

func TestRemove(t *testing.T) {
	w, c := newWorld(t)

	a := w.PlaceBlock(200, c.SpawnY)
	b := w.PlaceBlock(600, c.SpawnY)
	require.Equal(t, 2, w.Len())

	w.Remove(a)
	require.Equal(t, 1, w.Len())
	w.Remove(a)
	require.Equal(t, 1, w.Len())
	w.Remove(environment.NewStaticBlock(0, 0))
	require.Equal(t, 1, w.Len())

	settle(w, c)
	require.InDelta(t, 600, b.Position().X, 1.0)
}

func TestRender(t *testing.T) {
	w, c := newWorld(t)
	w.PlaceBlock(450, c.SpawnY)
	settle(w, c)

	filename := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, w.Render(filename))

	info, err := os.Stat(filename)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestNewValidates(t *testing.T) {
	c := tower.DefaultConfig()
	c.BlockSize = 0
	_, err := New(c)
	require.Error(t, err)
}
