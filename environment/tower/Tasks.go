package tower

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/pyramid/agent/tabular/state"
	"github.com/samuelfneumann/pyramid/environment"
	"github.com/samuelfneumann/pyramid/utils/floatutils"
)

// Shaping scores the shape of a legal stack of blocks. The state s is
// the encoding of blocks.
type Shaping interface {
	Score(blocks []environment.Block, s state.State) float64
}

// Task implements the reward scheme of the pyramid-stacking task.
//
// If there are no blocks, or the most recently placed block is an
// illegal addition to the blocks placed before it, the reward is the
// fixed terminal penalty. Otherwise the reward is computed by the
// Task's Shaping.
type Task struct {
	rules   Rules
	encoder *state.Encoder
	shaping Shaping
	penalty float64
}

// NewTask returns a new Task. The penalty is the magnitude of the
// terminal penalty, the reward for a failed placement is -penalty.
func NewTask(rules Rules, encoder *state.Encoder, shaping Shaping,
	penalty float64) *Task {
	return &Task{
		rules:   rules,
		encoder: encoder,
		shaping: shaping,
		penalty: math.Abs(penalty),
	}
}

// Penalty returns the reward given for failed placements
func (t *Task) Penalty() float64 {
	return -t.penalty
}

// Rules returns the placement rules of the task
func (t *Task) Rules() Rules {
	return t.rules
}

// Reward returns the reward for the current stack of blocks. The last
// block in the slice is taken to be the most recently placed one.
func (t *Task) Reward(blocks []environment.Block) float64 {
	if len(blocks) == 0 {
		return t.Penalty()
	}

	last := len(blocks) - 1
	if t.rules.Invalid(blocks[:last], blocks[last]) {
		return t.Penalty()
	}

	return t.shaping.Score(blocks, t.encoder.Encode(blocks))
}

// Imbalance returns how far the mean horizontal position of the blocks
// lies from the midpoint of their horizontal span, normalized by half
// the width of the span. The result is in [-1, 1]: 0 is perfectly
// centred, negative values lean left and positive values lean right.
// If all blocks share a single x coordinate the imbalance is 0.
func Imbalance(blocks []environment.Block) float64 {
	if len(blocks) == 0 {
		return 0
	}

	xs := make([]float64, len(blocks))
	for i, b := range blocks {
		xs[i] = b.Position().X
	}
	span := floatutils.Span(xs...)

	halfWidth := (span.Max - span.Min) / 2
	if halfWidth == 0 {
		return 0
	}
	mid := (span.Max + span.Min) / 2

	return (stat.Mean(xs, nil) - mid) / halfWidth
}

// SymmetryShaping rewards tall stacks whose mass is centred over their
// footprint
type SymmetryShaping struct {
	HeightWeight float64
	CenterWeight float64
}

// Score implements the Shaping interface
func (s SymmetryShaping) Score(blocks []environment.Block,
	st state.State) float64 {
	_, height := st.Tallest()
	return s.HeightWeight*float64(height) -
		s.CenterWeight*math.Abs(Imbalance(blocks))
}

// CentroidShaping rewards tall stacks whose centroid lies at the
// horizontal centre of the board
type CentroidShaping struct {
	HeightWeight float64
	CenterWeight float64
	BoardWidth   float64
}

// Score implements the Shaping interface
func (c CentroidShaping) Score(blocks []environment.Block,
	st state.State) float64 {
	xs := make([]float64, len(blocks))
	for i, b := range blocks {
		xs[i] = b.Position().X
	}

	half := c.BoardWidth / 2
	offset := (stat.Mean(xs, nil) - half) / half

	_, height := st.Tallest()
	return c.HeightWeight*float64(height) - c.CenterWeight*math.Abs(offset)
}

// TaperShaping rewards column-height profiles which strictly decrease
// away from the tallest column on both sides.
//
// Walking outward from the tallest column, each column whose outer
// neighbour is strictly lower adds its height to the score, and every
// other column subtracts its height. If every step of the walk tapers,
// the score is multiplied by Bonus.
type TaperShaping struct {
	Bonus float64
}

// Score implements the Shaping interface
func (t TaperShaping) Score(_ []environment.Block, st state.State) float64 {
	return TaperScore(st.Heights(), t.Bonus)
}

// TaperScore computes the taper score of column heights h. See
// TaperShaping.
func TaperScore(h []int, bonus float64) float64 {
	if len(h) == 0 {
		return 0
	}

	peak := 0
	for i := range h {
		if h[i] > h[peak] {
			peak = i
		}
	}

	score := 0.0
	tapered := true
	step := func(i, outer int) {
		if h[outer] < h[i] {
			score += float64(h[i])
		} else {
			tapered = false
			score -= float64(h[i])
		}
	}

	for i := peak; i > 0; i-- {
		step(i, i-1)
	}
	for i := peak; i < len(h)-1; i++ {
		step(i, i+1)
	}

	if tapered {
		score *= bonus
	}
	return score
}

// HybridShaping adds the symmetry and taper scores
type HybridShaping struct {
	SymmetryShaping
	TaperShaping
}

// Score implements the Shaping interface
func (h HybridShaping) Score(blocks []environment.Block,
	st state.State) float64 {
	return h.SymmetryShaping.Score(blocks, st) +
		h.TaperShaping.Score(blocks, st)
}
