package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	s := New([]int{0, 3, 200, 1}, true)

	require.Equal(t, []int{0, 3, 200, 1, 1}, s.Slots())
	require.Equal(t, []int{0, 3, 200, 1}, s.Heights())
	require.True(t, s.Overflow())
	require.Equal(t, "(0, 3, 200, 1, 1)", s.String())

	from, err := FromSlots(s.Slots())
	require.NoError(t, err)
	require.Equal(t, s, from)
}

func TestFromSlotsRejectsMalformed(t *testing.T) {
	_, err := FromSlots(nil)
	require.Error(t, err)

	_, err = FromSlots([]int{1, 2, 3})
	require.Error(t, err, "overflow slot must be a flag")

	_, err = FromSlots([]int{1, -2, 0})
	require.Error(t, err)
}

func TestTallest(t *testing.T) {
	col, h := New([]int{1, 3, 2, 3}, false).Tallest()
	require.Equal(t, 1, col)
	require.Equal(t, 3, h)

	col, h = Empty(5).Tallest()
	require.Equal(t, 0, col)
	require.Equal(t, 0, h)
}

func TestNewPanicsOnNegativeHeight(t *testing.T) {
	require.Panics(t, func() { New([]int{-1}, false) })
}
