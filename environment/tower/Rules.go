package tower

import (
	"github.com/samuelfneumann/pyramid/environment"
	"github.com/samuelfneumann/pyramid/utils/floatutils"
)

// MaxReach is the furthest, in block widths, that a block may land
// from the horizontal span of the existing stack
const MaxReach = 3.0

// Rules decides whether block placements are legal
type Rules struct {
	blockSize   float64
	boardHeight float64
}

// NewRules returns new placement rules for blocks of size blockSize on
// a board of height boardHeight
func NewRules(blockSize, boardHeight float64) Rules {
	return Rules{blockSize, boardHeight}
}

// FellOff returns whether a block has dropped below the bottom edge of
// the board
func (r Rules) FellOff(b environment.Block) bool {
	return b.Position().Y > r.boardHeight
}

// AnyFellOff returns whether any of the blocks fell off the board
func (r Rules) AnyFellOff(blocks []environment.Block) bool {
	for _, b := range blocks {
		if r.FellOff(b) {
			return true
		}
	}
	return false
}

// Invalid returns whether block b is an illegal addition to stack. A
// placement is illegal if b fell off the board, or if b lies more than
// MaxReach block widths to either side of the horizontal span of stack.
// Any placement onto an empty stack which stays on the board is legal.
func (r Rules) Invalid(stack []environment.Block, b environment.Block) bool {
	if r.FellOff(b) {
		return true
	}
	if len(stack) == 0 {
		return false
	}

	xs := make([]float64, len(stack))
	for i, s := range stack {
		xs[i] = s.Position().X
	}
	span := floatutils.Span(xs...)

	x := b.Position().X
	reach := MaxReach * r.blockSize
	return x-span.Max > reach || span.Min-x > reach
}
