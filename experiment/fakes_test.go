package experiment

import (
	"github.com/samuelfneumann/pyramid/agent/tabular/state"
	"github.com/samuelfneumann/pyramid/environment"
	"gonum.org/v1/gonum/spatial/r2"
)

// fakeBlock is a block whose position is set directly by tests
type fakeBlock struct {
	pos r2.Vec
}

func (b *fakeBlock) Position() r2.Vec { return b.pos }

// fakePhysics stacks each block directly on top of the blocks dropped
// at the same x coordinate, without simulating the fall
type fakePhysics struct {
	height    float64
	blockSize float64

	blocks   []*fakeBlock
	steps    int
	removed  int
	rendered []string
}

func newFakePhysics(height, blockSize float64) *fakePhysics {
	return &fakePhysics{height: height, blockSize: blockSize}
}

func (f *fakePhysics) PlaceBlock(x, _ float64) environment.Block {
	below := 0
	for _, b := range f.blocks {
		if b.pos.X == x {
			below++
		}
	}
	y := f.height - f.blockSize/2 - float64(below)*f.blockSize
	b := &fakeBlock{r2.Vec{X: x, Y: y}}
	f.blocks = append(f.blocks, b)
	return b
}

func (f *fakePhysics) Step(float64) { f.steps++ }

func (f *fakePhysics) Remove(b environment.Block) {
	for i := range f.blocks {
		if f.blocks[i] == b {
			f.blocks = append(f.blocks[:i], f.blocks[i+1:]...)
			f.removed++
			return
		}
	}
}

func (f *fakePhysics) Render(filename string) error {
	f.rendered = append(f.rendered, filename)
	return nil
}

type transition struct {
	prev   state.State
	action int
	reward float64
	next   state.State
}

// scriptedAgent plays a fixed, repeating sequence of actions and
// records everything it learns from
type scriptedAgent struct {
	actions []int
	i       int
	eval    bool

	// Called after every action selection, if set
	onSelect func()

	learned  []transition
	episodes int
}

func (s *scriptedAgent) SelectAction(state.State) int {
	a := s.actions[s.i%len(s.actions)]
	s.i++
	if s.onSelect != nil {
		s.onSelect()
	}
	return a
}

func (s *scriptedAgent) Learn(prev state.State, action int, reward float64,
	next state.State) {
	s.learned = append(s.learned, transition{prev, action, reward, next})
}

func (s *scriptedAgent) EndEpisode() { s.episodes++ }
func (s *scriptedAgent) Eval()       { s.eval = true }
func (s *scriptedAgent) Train()      { s.eval = false }
func (s *scriptedAgent) IsEval() bool {
	return s.eval
}
