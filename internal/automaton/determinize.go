package automaton

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Determinize converts n to an equivalent complete DFA using the subset
// construction over epsilon-closures. Each DFA state is named after the set
// of NFA states it stands for, e.g. "{q0,q2}". The empty set becomes the
// non-accepting sink "{}".
func (n *NFA) Determinize() *DFA {
	type subset struct {
		set *bitset.BitSet
		id  State
	}

	startSet := n.startSet()
	setToID := map[string]State{startSet.String(): 0}
	sets := []*bitset.BitSet{startSet}
	var rows [][]State

	queue := []subset{{set: startSet, id: 0}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		row := newRow(len(n.alphabet))
		for idx := range n.alphabet {
			next := n.closure(n.move(current.set, idx))
			key := next.String()
			id, exists := setToID[key]
			if !exists {
				id = State(len(sets))
				setToID[key] = id
				sets = append(sets, next)
				queue = append(queue, subset{set: next, id: id})
			}
			row[idx] = id
		}
		for int(current.id) >= len(rows) {
			rows = append(rows, nil)
		}
		rows[current.id] = row
	}

	names := make([]string, len(sets))
	taken := NewNameSet(nil)
	for i, set := range sets {
		names[i] = taken.Fresh(n.subsetName(set))
	}

	d := newDFA(names, n.alphabet)
	d.start = 0
	for i, set := range sets {
		copy(d.delta[i], rows[i])
		if set.IntersectionCardinality(n.final) > 0 {
			d.final.Set(uint(i))
		}
	}
	return d
}

func (n *NFA) subsetName(set *bitset.BitSet) string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(n.names[i])
	}
	b.WriteByte('}')
	return b.String()
}
