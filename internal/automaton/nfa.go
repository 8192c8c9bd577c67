package automaton

import (
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// NFA is a nondeterministic finite automaton with epsilon moves and a single
// initial state. Multiple declared start states are compressed into one
// before construction.
type NFA struct {
	names    []string
	index    map[string]State
	alphabet []rune
	symbols  map[rune]int
	// delta[state][symbol index] = sorted set of next states
	delta   [][][]State
	epsilon [][]State
	start   State
	final   *bitset.BitSet
}

// NewNFA builds an NFA from its normalized definition.
func NewNFA(def NFADefinition) (*NFA, error) {
	alphabet, err := ParseAlphabet(def.InputSymbols)
	if err != nil {
		return nil, err
	}
	index, err := stateIndex(def.States)
	if err != nil {
		return nil, err
	}
	n := newNFA(def.States, alphabet)
	n.index = index

	if n.start, err = lookupState(index, def.InitialState); err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}
	for _, name := range def.FinalStates {
		s, err := lookupState(index, name)
		if err != nil {
			return nil, fmt.Errorf("final state: %w", err)
		}
		n.final.Set(uint(s))
	}
	for from, row := range def.Transitions {
		s, err := lookupState(index, from)
		if err != nil {
			return nil, fmt.Errorf("transition source: %w", err)
		}
		for sym, targets := range row {
			dests := make([]State, 0, len(targets))
			for _, to := range targets {
				t, err := lookupState(index, to)
				if err != nil {
					return nil, fmt.Errorf("transition target: %w", err)
				}
				dests = append(dests, t)
			}
			if sym == EpsilonKey {
				n.epsilon[s] = mergeStates(n.epsilon[s], dests)
				continue
			}
			r, err := ParseSymbol(sym)
			if err != nil {
				return nil, err
			}
			idx, ok := n.symbols[r]
			if !ok {
				return nil, fmt.Errorf("%w: %q is not in the alphabet", ErrInvalidSymbol, sym)
			}
			n.delta[s][idx] = mergeStates(n.delta[s][idx], dests)
		}
	}
	return n, nil
}

func newNFA(names []string, alphabet []rune) *NFA {
	n := &NFA{
		names:    append([]string(nil), names...),
		index:    make(map[string]State, len(names)),
		alphabet: append([]rune(nil), alphabet...),
		symbols:  make(map[rune]int, len(alphabet)),
		delta:    make([][][]State, len(names)),
		epsilon:  make([][]State, len(names)),
		final:    bitset.New(uint(len(names))),
	}
	for i, name := range names {
		n.index[name] = State(i)
	}
	for i, r := range alphabet {
		n.symbols[r] = i
	}
	for i := range n.delta {
		n.delta[i] = make([][]State, len(alphabet))
	}
	return n
}

// mergeStates returns the sorted union of a and b without duplicates.
func mergeStates(a, b []State) []State {
	out := append(append([]State(nil), a...), b...)
	slices.Sort(out)
	return slices.Compact(out)
}

func (n *NFA) Kind() Kind { return KindNFA }

func (n *NFA) sealed() {}

func (n *NFA) Alphabet() []rune { return append([]rune(nil), n.alphabet...) }

func (n *NFA) States() []string { return append([]string(nil), n.names...) }

// NumStates returns the number of states.
func (n *NFA) NumStates() int { return len(n.names) }

// Name returns the name of state s.
func (n *NFA) Name(s State) string { return n.names[s] }

// InitialState returns the name of the single initial state.
func (n *NFA) InitialState() string { return n.names[n.start] }

// EpsilonTargets returns the names of the states reachable from name by one
// epsilon move.
func (n *NFA) EpsilonTargets(name string) []string {
	s, ok := n.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(n.epsilon[s]))
	for i, t := range n.epsilon[s] {
		out[i] = n.names[t]
	}
	return out
}

// FinalStates returns the names of the final states in index order.
func (n *NFA) FinalStates() []string {
	out := make([]string, 0, n.final.Count())
	for i, ok := n.final.NextSet(0); ok; i, ok = n.final.NextSet(i + 1) {
		out = append(out, n.names[i])
	}
	return out
}

// closure extends set in place with every state reachable by epsilon moves.
func (n *NFA) closure(set *bitset.BitSet) *bitset.BitSet {
	stack := make([]State, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		stack = append(stack, State(i))
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range n.epsilon[s] {
			if !set.Test(uint(t)) {
				set.Set(uint(t))
				stack = append(stack, t)
			}
		}
	}
	return set
}

// move returns the states reachable from set on symbol index idx, without
// taking epsilon moves.
func (n *NFA) move(set *bitset.BitSet, idx int) *bitset.BitSet {
	next := bitset.New(uint(len(n.names)))
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		for _, t := range n.delta[i][idx] {
			next.Set(uint(t))
		}
	}
	return next
}

func (n *NFA) startSet() *bitset.BitSet {
	set := bitset.New(uint(len(n.names)))
	set.Set(uint(n.start))
	return n.closure(set)
}

func (n *NFA) Accepts(word string) bool {
	current := n.startSet()
	for _, r := range word {
		idx, ok := n.symbols[r]
		if !ok {
			return false
		}
		current = n.closure(n.move(current, idx))
		if current.None() {
			return false
		}
	}
	return current.IntersectionCardinality(n.final) > 0
}

func (n *NFA) ReachableStates() []string {
	seen := bitset.New(uint(len(n.names)))
	seen.Set(uint(n.start))
	queue := []State{n.start}
	visit := func(t State) {
		if !seen.Test(uint(t)) {
			seen.Set(uint(t))
			queue = append(queue, t)
		}
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, t := range n.epsilon[s] {
			visit(t)
		}
		for _, dests := range n.delta[s] {
			for _, t := range dests {
				visit(t)
			}
		}
	}
	out := make([]string, 0, seen.Count())
	for i, ok := seen.NextSet(0); ok; i, ok = seen.NextSet(i + 1) {
		out = append(out, n.names[i])
	}
	return out
}

// Definition exports n in its normalized serializable form.
func (n *NFA) Definition() NFADefinition {
	def := NFADefinition{
		States:       n.States(),
		InputSymbols: SymbolStrings(n.alphabet),
		Transitions:  make(map[string]map[string][]string, len(n.names)),
		InitialState: n.names[n.start],
		FinalStates:  n.FinalStates(),
	}
	names := func(states []State) []string {
		out := make([]string, len(states))
		for i, s := range states {
			out[i] = n.names[s]
		}
		return out
	}
	for s := range n.names {
		row := make(map[string][]string)
		if len(n.epsilon[s]) > 0 {
			row[EpsilonKey] = names(n.epsilon[s])
		}
		for i, dests := range n.delta[s] {
			if len(dests) > 0 {
				row[string(n.alphabet[i])] = names(dests)
			}
		}
		def.Transitions[n.names[s]] = row
	}
	return def
}
