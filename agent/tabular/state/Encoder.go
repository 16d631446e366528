package state

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/pyramid/environment"
)

// Encoder discretises a list of blocks into a State. The board is cut
// into Columns vertical strips, each ColumnWidth wide, and the height
// of a strip is the rank of its tallest occupant counted in block units
// from the board's bottom edge.
type Encoder struct {
	columns     int
	columnWidth float64
	boardHeight float64
}

// NewEncoder returns a new Encoder
func NewEncoder(columns int, columnWidth, boardHeight float64) (*Encoder,
	error) {
	if columns <= 0 {
		return nil, fmt.Errorf("newEncoder: columns must be positive, "+
			"got %v", columns)
	}
	if columnWidth <= 0 {
		return nil, fmt.Errorf("newEncoder: column width must be "+
			"positive, got %v", columnWidth)
	}
	if boardHeight <= 0 {
		return nil, fmt.Errorf("newEncoder: board height must be "+
			"positive, got %v", boardHeight)
	}
	return &Encoder{columns, columnWidth, boardHeight}, nil
}

// Columns returns the number of playable columns
func (e *Encoder) Columns() int {
	return e.columns
}

// Column returns the column index that the horizontal coordinate x
// falls into. The index may lie outside [0, Columns()).
func (e *Encoder) Column(x float64) int {
	return int(math.Floor(x / e.columnWidth))
}

// Encode returns the State of the argument blocks. Encode is a pure
// function of the block positions and does not depend on their order.
func (e *Encoder) Encode(blocks []environment.Block) State {
	if len(blocks) == 0 {
		return Empty(e.columns)
	}

	heights := make([]int, e.columns)
	overflow := false
	for _, b := range blocks {
		pos := b.Position()

		col := e.Column(pos.X)
		if col < 0 || col > e.columns-1 {
			overflow = true
			continue
		}

		rank := int(math.Floor((e.boardHeight-pos.Y)/e.columnWidth)) + 1
		if rank > heights[col] {
			heights[col] = rank
		}
	}

	return New(heights, overflow)
}
