package automaton

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// DFA is a deterministic finite automaton over named states.
//
// The transition function may be partial; missing entries are DeadState.
// ToComplete returns a total version.
type DFA struct {
	names    []string
	index    map[string]State
	alphabet []rune
	symbols  map[rune]int
	// delta[state][symbol index] = next state
	delta [][]State
	start State
	final *bitset.BitSet
}

// NewDFA builds a DFA from its normalized definition.
func NewDFA(def DFADefinition) (*DFA, error) {
	alphabet, err := ParseAlphabet(def.InputSymbols)
	if err != nil {
		return nil, err
	}
	index, err := stateIndex(def.States)
	if err != nil {
		return nil, err
	}
	d := newDFA(def.States, alphabet)
	d.index = index

	if d.start, err = lookupState(index, def.InitialState); err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}
	for _, name := range def.FinalStates {
		s, err := lookupState(index, name)
		if err != nil {
			return nil, fmt.Errorf("final state: %w", err)
		}
		d.final.Set(uint(s))
	}
	for from, row := range def.Transitions {
		s, err := lookupState(index, from)
		if err != nil {
			return nil, fmt.Errorf("transition source: %w", err)
		}
		for sym, to := range row {
			r, err := ParseSymbol(sym)
			if err != nil {
				return nil, err
			}
			idx, ok := d.symbols[r]
			if !ok {
				return nil, fmt.Errorf("%w: %q is not in the alphabet", ErrInvalidSymbol, sym)
			}
			t, err := lookupState(index, to)
			if err != nil {
				return nil, fmt.Errorf("transition target: %w", err)
			}
			d.delta[s][idx] = t
		}
	}
	return d, nil
}

// newDFA allocates a DFA with no transitions and no final states.
// names must be unique.
func newDFA(names []string, alphabet []rune) *DFA {
	d := &DFA{
		names:    append([]string(nil), names...),
		index:    make(map[string]State, len(names)),
		alphabet: append([]rune(nil), alphabet...),
		symbols:  make(map[rune]int, len(alphabet)),
		delta:    make([][]State, len(names)),
		final:    bitset.New(uint(len(names))),
	}
	for i, name := range names {
		d.index[name] = State(i)
	}
	for i, r := range alphabet {
		d.symbols[r] = i
	}
	for i := range d.delta {
		d.delta[i] = newRow(len(alphabet))
	}
	return d
}

func newRow(n int) []State {
	row := make([]State, n)
	for i := range row {
		row[i] = DeadState
	}
	return row
}

func (d *DFA) Kind() Kind { return KindDFA }

func (d *DFA) sealed() {}

func (d *DFA) Alphabet() []rune { return append([]rune(nil), d.alphabet...) }

func (d *DFA) States() []string { return append([]string(nil), d.names...) }

// NumStates returns the number of states.
func (d *DFA) NumStates() int { return len(d.names) }

// Name returns the name of state s.
func (d *DFA) Name(s State) string { return d.names[s] }

// Lookup returns the state with the given name.
func (d *DFA) Lookup(name string) (State, bool) {
	s, ok := d.index[name]
	return s, ok
}

// Start returns the initial state.
func (d *DFA) Start() State { return d.start }

// Step returns the next state for the given symbol.
// Returns DeadState if no transition exists.
func (d *DFA) Step(s State, r rune) State {
	if s == DeadState {
		return DeadState
	}
	idx, ok := d.symbols[r]
	if !ok {
		return DeadState
	}
	return d.delta[s][idx]
}

// IsAccept returns true if s is a final state.
func (d *DFA) IsAccept(s State) bool {
	return s != DeadState && d.final.Test(uint(s))
}

// FinalStates returns the names of the final states in index order.
func (d *DFA) FinalStates() []string {
	out := make([]string, 0, d.final.Count())
	for i, ok := d.final.NextSet(0); ok; i, ok = d.final.NextSet(i + 1) {
		out = append(out, d.names[i])
	}
	return out
}

// IsComplete reports whether every state has a transition on every symbol.
func (d *DFA) IsComplete() bool {
	for _, row := range d.delta {
		for _, t := range row {
			if t == DeadState {
				return false
			}
		}
	}
	return true
}

func (d *DFA) Accepts(word string) bool {
	s := d.start
	for _, r := range word {
		s = d.Step(s, r)
		if s == DeadState {
			return false
		}
	}
	return d.IsAccept(s)
}

// Determinize returns d itself; a DFA is already deterministic.
func (d *DFA) Determinize() *DFA { return d }

func (d *DFA) ReachableStates() []string {
	seen := d.reachable()
	out := make([]string, 0, seen.Count())
	for i, ok := seen.NextSet(0); ok; i, ok = seen.NextSet(i + 1) {
		out = append(out, d.names[i])
	}
	return out
}

func (d *DFA) reachable() *bitset.BitSet {
	seen := bitset.New(uint(len(d.names)))
	seen.Set(uint(d.start))
	queue := []State{d.start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, t := range d.delta[s] {
			if t != DeadState && !seen.Test(uint(t)) {
				seen.Set(uint(t))
				queue = append(queue, t)
			}
		}
	}
	return seen
}

// ToComplete returns a DFA with a total transition function. Missing
// transitions are redirected to a fresh non-accepting sink. If d is already
// complete it is returned unchanged.
func (d *DFA) ToComplete() *DFA {
	if d.IsComplete() {
		return d
	}
	sinkName := FreshName("sink", d.names)
	c := newDFA(append(d.States(), sinkName), d.alphabet)
	sink := State(len(d.names))
	c.start = d.start
	c.final = d.final.Clone()
	for s, row := range d.delta {
		for i, t := range row {
			if t == DeadState {
				t = sink
			}
			c.delta[s][i] = t
		}
	}
	for i := range c.delta[sink] {
		c.delta[sink][i] = sink
	}
	return c
}

// Definition exports d in its normalized serializable form.
func (d *DFA) Definition() DFADefinition {
	def := DFADefinition{
		States:       d.States(),
		InputSymbols: SymbolStrings(d.alphabet),
		Transitions:  make(map[string]map[string]string, len(d.names)),
		InitialState: d.names[d.start],
		FinalStates:  d.FinalStates(),
	}
	for s, row := range d.delta {
		out := make(map[string]string, len(row))
		for i, t := range row {
			if t != DeadState {
				out[string(d.alphabet[i])] = d.names[t]
			}
		}
		def.Transitions[d.names[s]] = out
	}
	return def
}
