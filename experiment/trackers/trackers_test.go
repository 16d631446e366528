package trackers

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/samuelfneumann/pyramid/agent/tabular/state"
	ts "github.com/samuelfneumann/pyramid/timestep"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// episode returns the TimeSteps of an episode with the given per-drop
// rewards and final reward
func episode(rewards []float64, final float64, end ts.EndType) []ts.TimeStep {
	s := state.Empty(3)
	steps := []ts.TimeStep{ts.New(ts.First, 0, s, 0, 0)}
	for i, r := range rewards {
		steps = append(steps, ts.New(ts.Mid, r, s, i+1, i+1))
	}
	last := ts.New(ts.Last, final, s, len(rewards)+1, len(rewards))
	last.SetEnd(end)
	return append(steps, last)
}

func trackAll(t Tracker, steps ...[]ts.TimeStep) {
	for _, ep := range steps {
		for _, s := range ep {
			t.Track(s)
		}
	}
}

func TestReturn(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "return.bin")
	r := NewReturn(filename)

	trackAll(r,
		episode([]float64{1, 2}, 3, ts.MaxBlocks),
		episode([]float64{-15}, -15, ts.InvalidPlacement),
	)
	require.Equal(t, []float64{6, -30}, r.Data())

	require.NoError(t, r.Save())
	data, err := LoadData(filename)
	require.NoError(t, err)
	require.Equal(t, []float64{6, -30}, data)
}

func TestReturnDiscardsAbandonedEpisode(t *testing.T) {
	r := NewReturn(filepath.Join(t.TempDir(), "return.bin"))
	s := state.Empty(3)

	// Episode stopped after a single drop
	r.Track(ts.New(ts.First, 0, s, 0, 0))
	r.Track(ts.New(ts.Mid, 4, s, 1, 1))

	require.NotPanics(t, func() {
		trackAll(r, episode([]float64{1}, 2, ts.MaxBlocks))
	})
	require.Equal(t, []float64{3}, r.Data())
}

func TestReturnPanicsOnGap(t *testing.T) {
	r := NewReturn(filepath.Join(t.TempDir(), "return.bin"))
	s := state.Empty(3)
	r.Track(ts.New(ts.First, 0, s, 0, 0))
	require.Panics(t, func() { r.Track(ts.New(ts.Mid, 0, s, 2, 1)) })
}

func TestEpisodic(t *testing.T) {
	dir := t.TempDir()
	blocks := NewBlocks(filepath.Join(dir, "blocks.bin"))
	final := NewFinalReward(filepath.Join(dir, "final.bin"))

	for _, tr := range []Tracker{blocks, final} {
		trackAll(tr,
			episode([]float64{1, 2, 4}, 5, ts.MaxBlocks),
			episode([]float64{1}, -15, ts.FellOff),
		)
		require.NoError(t, tr.Save())
	}

	require.Equal(t, []float64{3, 1}, blocks.Data())
	require.Equal(t, []float64{5, -15}, final.Data())
	require.Equal(t, "Blocks", blocks.Series().Name)

	data, err := LoadData(filepath.Join(dir, "final.bin"))
	require.NoError(t, err)
	require.Equal(t, []float64{5, -15}, data)
}

func TestLoadDataMissing(t *testing.T) {
	_, err := LoadData(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
}

func TestSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	run := uuid.NewString()
	s, err := NewSQLite(db, run)
	require.NoError(t, err)

	trackAll(s,
		episode([]float64{1, 2}, 3, ts.MaxBlocks),
		episode([]float64{-15}, -15, ts.InvalidPlacement),
	)
	require.NoError(t, s.Save())

	episodes, err := s.Episodes()
	require.NoError(t, err)
	require.Equal(t, []Episode{
		{Episode: 1, Return: 6, FinalReward: 3, Blocks: 2, EndType: "MaxBlocks"},
		{Episode: 2, Return: -30, FinalReward: -15, Blocks: 1,
			EndType: "InvalidPlacement"},
	}, episodes)

	// Runs are kept apart
	other, err := NewSQLite(db, uuid.NewString())
	require.NoError(t, err)
	episodes, err = other.Episodes()
	require.NoError(t, err)
	require.Empty(t, episodes)
}

func TestWriteChart(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "chart.html")
	r := NewReturn(filepath.Join(t.TempDir(), "return.bin"))
	trackAll(r, episode([]float64{1}, 2, ts.MaxBlocks))

	blocks := NewBlocks(filepath.Join(t.TempDir(), "blocks.bin"))
	trackAll(blocks, episode([]float64{1}, 2, ts.MaxBlocks))

	err := WriteChart(filename, "Training", r, blocks)
	require.NoError(t, err)

	raw, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(raw), "Blocks"))
}
