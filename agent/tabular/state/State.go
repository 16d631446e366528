// Package state implements the discrete states observed by tabular
// agents: a column-height profile of the tower plus an overflow flag.
package state

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// State is an immutable column-height profile. The last slot is the
// overflow flag, which is 1 if some block landed outside the playable
// columns.
//
// States are comparable with == and can be used directly as map keys:
// two States built from the same heights are equal.
type State struct {
	key string
}

// New returns the State with the given column heights and overflow
// flag. New panics if any height is negative.
func New(heights []int, overflow bool) State {
	buf := make([]byte, 0, len(heights)+1)
	for _, h := range heights {
		if h < 0 {
			panic(fmt.Sprintf("new: negative column height %v", h))
		}
		buf = binary.AppendUvarint(buf, uint64(h))
	}

	var flag uint64
	if overflow {
		flag = 1
	}
	buf = binary.AppendUvarint(buf, flag)

	return State{string(buf)}
}

// FromSlots returns the State described by the full tuple, including
// the trailing overflow slot.
func FromSlots(slots []int) (State, error) {
	if len(slots) == 0 {
		return State{}, fmt.Errorf("fromSlots: state must have at least " +
			"the overflow slot")
	}

	last := slots[len(slots)-1]
	if last != 0 && last != 1 {
		return State{}, fmt.Errorf("fromSlots: overflow slot must be 0 or "+
			"1, got %v", last)
	}
	for _, h := range slots[:len(slots)-1] {
		if h < 0 {
			return State{}, fmt.Errorf("fromSlots: negative column "+
				"height %v", h)
		}
	}

	return New(slots[:len(slots)-1], last == 1), nil
}

// Empty returns the canonical empty-board state for the given number
// of columns
func Empty(columns int) State {
	return New(make([]int, columns), false)
}

// Slots returns the full tuple: column heights followed by the
// overflow flag
func (s State) Slots() []int {
	slots := make([]int, 0, len(s.key))
	buf := []byte(s.key)
	for len(buf) > 0 {
		v, n := binary.Uvarint(buf)
		if n <= 0 {
			panic("slots: corrupt state key")
		}
		slots = append(slots, int(v))
		buf = buf[n:]
	}
	return slots
}

// Heights returns the column heights, without the overflow flag
func (s State) Heights() []int {
	slots := s.Slots()
	if len(slots) == 0 {
		return nil
	}
	return slots[:len(slots)-1]
}

// Overflow returns whether some block fell outside the playable columns
func (s State) Overflow() bool {
	slots := s.Slots()
	return len(slots) > 0 && slots[len(slots)-1] == 1
}

// Len returns the length of the tuple, including the overflow slot
func (s State) Len() int {
	return len(s.Slots())
}

// Tallest returns the index and height of the tallest column. Ties are
// broken in favour of the leftmost column.
func (s State) Tallest() (column, height int) {
	for i, h := range s.Heights() {
		if h > height {
			column, height = i, h
		}
	}
	return
}

func (s State) String() string {
	var b strings.Builder
	b.WriteString("(")
	for i, v := range s.Slots() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteString(")")
	return b.String()
}
