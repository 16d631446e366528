package policy

import (
	"testing"

	"github.com/samuelfneumann/pyramid/agent/tabular/qtable"
	"github.com/samuelfneumann/pyramid/agent/tabular/state"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

const numActions = 7

func TestGreedyMaterializesState(t *testing.T) {
	table := qtable.New(numActions)
	p, err := NewGreedy(table, rand.NewSource(1))
	require.NoError(t, err)

	s := state.New([]int{0, 0, 1, 0, 0, 0, 0}, false)
	require.Equal(t, 0, p.SelectAction(s), "all-zero values break ties low")
	require.True(t, table.Contains(s))
	require.Len(t, table.Values(s), numActions)

	table.Set(s, 4, 2.0)
	table.Set(s, 5, 2.0)
	require.Equal(t, 4, p.SelectAction(s))
}

func TestFullExplorationCoversActions(t *testing.T) {
	table := qtable.New(numActions)
	p, err := NewEGreedy(table, 1.0, 0.1, 0.999, rand.NewSource(42))
	require.NoError(t, err)

	s := state.Empty(numActions)
	table.Set(s, 3, 100)

	seen := make(map[int]int)
	for i := 0; i < 2000; i++ {
		a := p.SelectAction(s)
		require.GreaterOrEqual(t, a, 0)
		require.Less(t, a, numActions)
		seen[a]++
	}
	require.Len(t, seen, numActions)
}

func TestSeededPoliciesAgree(t *testing.T) {
	s := state.Empty(numActions)
	p1, err := NewEGreedy(qtable.New(numActions), 0.5, 0.1, 0.99,
		rand.NewSource(7))
	require.NoError(t, err)
	p2, err := NewEGreedy(qtable.New(numActions), 0.5, 0.1, 0.99,
		rand.NewSource(7))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.Equal(t, p1.SelectAction(s), p2.SelectAction(s))
	}
}

func TestEvalIsGreedy(t *testing.T) {
	table := qtable.New(numActions)
	p, err := NewEGreedy(table, 1.0, 0.5, 0.9, rand.NewSource(3))
	require.NoError(t, err)

	s := state.Empty(numActions)
	table.Set(s, 6, 1)

	p.Eval()
	require.True(t, p.IsEval())
	for i := 0; i < 100; i++ {
		require.Equal(t, 6, p.SelectAction(s))
	}

	p.Train()
	require.False(t, p.IsEval())
}

func TestDecayFloor(t *testing.T) {
	p, err := NewEGreedy(qtable.New(numActions), 1.0, 0.05, 0.9,
		rand.NewSource(1))
	require.NoError(t, err)

	prev := p.Epsilon()
	for i := 0; i < 500; i++ {
		p.Decay()
		require.LessOrEqual(t, p.Epsilon(), prev)
		require.GreaterOrEqual(t, p.Epsilon(), 0.05)
		prev = p.Epsilon()
	}
	require.Equal(t, 0.05, p.Epsilon())

	p.SetEpsilon(0.0)
	require.Equal(t, 0.05, p.Epsilon(), "SetEpsilon respects the floor")
	p.SetEpsilon(2.0)
	require.Equal(t, 1.0, p.Epsilon())
}

func TestDecayOnce(t *testing.T) {
	p, err := NewEGreedy(qtable.New(numActions), 0.5, 0.1, 0.999,
		rand.NewSource(1))
	require.NoError(t, err)

	p.Decay()
	require.InDelta(t, 0.4995, p.Epsilon(), 1e-12)
}

func TestNewEGreedyValidates(t *testing.T) {
	table := qtable.New(numActions)
	src := rand.NewSource(1)

	_, err := NewEGreedy(table, 1.5, 0.1, 0.9, src)
	require.Error(t, err)

	_, err = NewEGreedy(table, 0.5, 0.6, 0.9, src)
	require.Error(t, err)

	_, err = NewEGreedy(table, 0.5, 0.1, 1.5, src)
	require.Error(t, err)

	_, err = NewEGreedy(table, 0.5, 0.1, 0.9, nil)
	require.Error(t, err)
}
