package environment

import "gonum.org/v1/gonum/spatial/r2"

// StaticBlock is a Block which never moves. It is useful for scoring
// recorded tower layouts without running a simulation.
type StaticBlock struct {
	pos r2.Vec
}

// NewStaticBlock returns a new StaticBlock centred at (x, y)
func NewStaticBlock(x, y float64) *StaticBlock {
	return &StaticBlock{r2.Vec{X: x, Y: y}}
}

// Position returns the position of the block
func (s *StaticBlock) Position() r2.Vec {
	return s.pos
}

// StaticBlocks returns a StaticBlock at each of the argument positions
func StaticBlocks(positions ...r2.Vec) []Block {
	blocks := make([]Block, len(positions))
	for i, p := range positions {
		blocks[i] = NewStaticBlock(p.X, p.Y)
	}
	return blocks
}
