package automaton

import (
	"strconv"
	"strings"
)

// Minimize returns the canonical minimal complete DFA for d's language.
//
// Unreachable states are dropped, the remaining states are merged by
// partition refinement, and the blocks are renumbered in breadth-first order
// from the start state (symbols in alphabet order). Two DFAs accept the same
// language iff their minimized forms are isomorphic under this numbering.
// Each merged state keeps the name of its lowest-indexed member.
func (d *DFA) Minimize() *DFA {
	c := d.ToComplete()
	reach := c.reachable()

	live := make([]State, 0, reach.Count())
	for i, ok := reach.NextSet(0); ok; i, ok = reach.NextSet(i + 1) {
		live = append(live, State(i))
	}

	block := make([]int, len(c.names))
	for _, s := range live {
		if c.IsAccept(s) {
			block[s] = 1
		}
	}
	count := 0
	for {
		ids := make(map[string]int)
		next := make([]int, len(c.names))
		for _, s := range live {
			key := signature(block, s, c.delta[s])
			id, ok := ids[key]
			if !ok {
				id = len(ids)
				ids[key] = id
			}
			next[s] = id
		}
		block = next
		if len(ids) == count {
			break
		}
		count = len(ids)
	}

	// Renumber blocks breadth-first from the start block.
	order := map[int]State{block[c.start]: 0}
	rep := []State{c.start}
	for i := 0; i < len(rep); i++ {
		for _, t := range c.delta[rep[i]] {
			if _, seen := order[block[t]]; !seen {
				order[block[t]] = State(len(rep))
				rep = append(rep, t)
			}
		}
	}

	names := make([]string, len(rep))
	lowest := make([]State, len(rep))
	for i := range lowest {
		lowest[i] = DeadState
	}
	for _, s := range live {
		id := order[block[s]]
		if lowest[id] == DeadState || s < lowest[id] {
			lowest[id] = s
		}
	}
	for i, s := range lowest {
		names[i] = c.names[s]
	}

	m := newDFA(names, c.alphabet)
	m.start = 0
	for i, s := range rep {
		for idx, t := range c.delta[s] {
			m.delta[i][idx] = order[block[t]]
		}
		if c.IsAccept(s) {
			m.final.Set(uint(i))
		}
	}
	return m
}

// signature encodes a state's current block and the blocks of its successors.
func signature(block []int, s State, row []State) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(block[s]))
	for _, t := range row {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(block[t]))
	}
	return b.String()
}

// isomorphic compares two canonical minimal DFAs state by state.
func (d *DFA) isomorphic(o *DFA) bool {
	if len(d.names) != len(o.names) || !sameAlphabet(d.alphabet, o.alphabet) || d.start != o.start {
		return false
	}
	for s := range d.delta {
		if d.IsAccept(State(s)) != o.IsAccept(State(s)) {
			return false
		}
		for i, t := range d.delta[s] {
			if o.delta[s][i] != t {
				return false
			}
		}
	}
	return true
}
