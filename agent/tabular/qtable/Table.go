// Package qtable implements a sparse table of action values for
// tabular agents
package qtable

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/samuelfneumann/pyramid/agent/tabular/state"
	"gonum.org/v1/gonum/floats"
)

// Table maps states to a vector of action values, one per action.
//
// Entries are created lazily: the first time a state is queried or
// updated its action values are initialized to zero. Every entry has
// exactly Actions() values. The table only ever grows.
type Table struct {
	actions int
	values  map[state.State][]float64
}

// New returns a new, empty Table for an environment with the given
// number of actions
func New(actions int) *Table {
	if actions <= 0 {
		panic(fmt.Sprintf("new: number of actions must be positive, got %v",
			actions))
	}
	return &Table{
		actions: actions,
		values:  make(map[state.State][]float64),
	}
}

// Actions returns the number of actions per state
func (t *Table) Actions() int {
	return t.actions
}

// Len returns the number of states stored in the table
func (t *Table) Len() int {
	return len(t.values)
}

// Contains returns whether s has an entry in the table. Contains never
// creates an entry.
func (t *Table) Contains(s state.State) bool {
	_, ok := t.values[s]
	return ok
}

// Values returns the action values of state s, creating a zero entry
// if s has never been seen. The returned slice aliases the table, so
// writes to it update the table.
func (t *Table) Values(s state.State) []float64 {
	v, ok := t.values[s]
	if !ok {
		v = make([]float64, t.actions)
		t.values[s] = v
	}
	return v
}

// At returns the value of taking action a in state s
func (t *Table) At(s state.State, a int) float64 {
	return t.Values(s)[t.checkAction(a)]
}

// Set sets the value of taking action a in state s
func (t *Table) Set(s state.State, a int, value float64) {
	t.Values(s)[t.checkAction(a)] = value
}

// Max returns the largest action value in state s
func (t *Table) Max(s state.State) float64 {
	return floats.Max(t.Values(s))
}

// Greedy returns the action with the largest value in state s. Ties
// are broken by taking the lowest action index.
func (t *Table) Greedy(s state.State) int {
	return floats.MaxIdx(t.Values(s))
}

func (t *Table) checkAction(a int) int {
	if a < 0 || a >= t.actions {
		panic(fmt.Sprintf("action %v out of range [0, %v)", a, t.actions))
	}
	return a
}

// tableData is the serialized form of a Table
type tableData struct {
	Actions int
	States  [][]int
	Values  [][]float64
}

// GobEncode implements the gob.GobEncoder interface
func (t *Table) GobEncode() ([]byte, error) {
	data := tableData{
		Actions: t.actions,
		States:  make([][]int, 0, len(t.values)),
		Values:  make([][]float64, 0, len(t.values)),
	}
	for s, v := range t.values {
		data.States = append(data.States, s.Slots())
		data.Values = append(data.Values, v)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. Decoding fails if
// any entry does not hold exactly one value per action, so that a
// corrupt file never yields a partially valid table.
func (t *Table) GobDecode(in []byte) error {
	var data tableData
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&data); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	if data.Actions <= 0 {
		return fmt.Errorf("gobDecode: invalid number of actions %v",
			data.Actions)
	}
	if len(data.States) != len(data.Values) {
		return fmt.Errorf("gobDecode: %v states but %v value vectors",
			len(data.States), len(data.Values))
	}

	values := make(map[state.State][]float64, len(data.States))
	for i, slots := range data.States {
		s, err := state.FromSlots(slots)
		if err != nil {
			return fmt.Errorf("gobDecode: entry %v: %w", i, err)
		}
		if len(data.Values[i]) != data.Actions {
			return fmt.Errorf("gobDecode: entry %v has %v values, want %v",
				i, len(data.Values[i]), data.Actions)
		}
		if _, ok := values[s]; ok {
			return fmt.Errorf("gobDecode: duplicate state %v", s)
		}
		values[s] = data.Values[i]
	}

	t.actions = data.Actions
	t.values = values
	return nil
}

// Save writes the table to filename
func (t *Table) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not create file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(t); err != nil {
		return fmt.Errorf("save: could not encode table: %w", err)
	}
	return file.Close()
}

// Load reads a table previously written by Save. If filename does not
// exist, an empty table is returned. It is an error for the stored
// table to have a number of actions different from actions.
func Load(filename string, actions int) (*Table, error) {
	file, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return New(actions), nil
	} else if err != nil {
		return nil, fmt.Errorf("load: could not open file: %w", err)
	}
	defer file.Close()

	t := &Table{}
	if err := gob.NewDecoder(file).Decode(t); err != nil {
		return nil, fmt.Errorf("load: could not decode %v: %w", filename, err)
	}

	if t.actions != actions {
		return nil, fmt.Errorf("load: table in %v has %v actions, want %v",
			filename, t.actions, actions)
	}
	return t, nil
}
