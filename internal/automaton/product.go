package automaton

import "fmt"

// Union returns a DFA accepting words accepted by a or b.
func Union(a, b Automaton) (*DFA, error) {
	return product(a, b, func(x, y bool) bool { return x || y })
}

// Intersection returns a DFA accepting words accepted by both a and b.
func Intersection(a, b Automaton) (*DFA, error) {
	return product(a, b, func(x, y bool) bool { return x && y })
}

// Difference returns a DFA accepting words accepted by a but not by b.
func Difference(a, b Automaton) (*DFA, error) {
	return product(a, b, func(x, y bool) bool { return x && !y })
}

// SymmetricDifference returns a DFA accepting words accepted by exactly one
// of a and b.
func SymmetricDifference(a, b Automaton) (*DFA, error) {
	return product(a, b, func(x, y bool) bool { return x != y })
}

// Complement returns a complete DFA accepting exactly the words d rejects.
func (d *DFA) Complement() *DFA {
	c := d.ToComplete()
	out := newDFA(c.names, c.alphabet)
	out.start = c.start
	for s, row := range c.delta {
		copy(out.delta[s], row)
		if !c.final.Test(uint(s)) {
			out.final.Set(uint(s))
		}
	}
	return out
}

// product runs the pair construction over the reachable part of a × b.
// Both operands are determinized and completed first.
func product(a, b Automaton, accept func(x, y bool) bool) (*DFA, error) {
	if !sameAlphabet(a.Alphabet(), b.Alphabet()) {
		return nil, fmt.Errorf("%w: %q vs %q", ErrAlphabetMismatch, string(a.Alphabet()), string(b.Alphabet()))
	}
	da := a.Determinize().ToComplete()
	db := b.Determinize().ToComplete()

	type pair struct{ p, q State }
	start := pair{da.start, db.start}
	ids := map[pair]State{start: 0}
	pairs := []pair{start}
	var rows [][]State

	for i := 0; i < len(pairs); i++ {
		cur := pairs[i]
		row := newRow(len(da.alphabet))
		for idx := range da.alphabet {
			next := pair{da.delta[cur.p][idx], db.delta[cur.q][idx]}
			id, ok := ids[next]
			if !ok {
				id = State(len(pairs))
				ids[next] = id
				pairs = append(pairs, next)
			}
			row[idx] = id
		}
		rows = append(rows, row)
	}

	names := make([]string, len(pairs))
	taken := NewNameSet(nil)
	for i, p := range pairs {
		names[i] = taken.Fresh("(" + da.names[p.p] + "," + db.names[p.q] + ")")
	}
	d := newDFA(names, da.alphabet)
	d.start = 0
	for i, p := range pairs {
		copy(d.delta[i], rows[i])
		if accept(da.IsAccept(p.p), db.IsAccept(p.q)) {
			d.final.Set(uint(i))
		}
	}
	return d, nil
}

// Equal reports whether a and b accept the same language. The comparison is
// made between canonical minimal DFAs.
func Equal(a, b Automaton) (bool, error) {
	if !sameAlphabet(a.Alphabet(), b.Alphabet()) {
		return false, fmt.Errorf("%w: %q vs %q", ErrAlphabetMismatch, string(a.Alphabet()), string(b.Alphabet()))
	}
	return a.Determinize().Minimize().isomorphic(b.Determinize().Minimize()), nil
}

// IsSubset reports whether every word accepted by a is accepted by b.
func IsSubset(a, b Automaton) (bool, error) {
	diff, err := Difference(a, b)
	if err != nil {
		return false, err
	}
	return diff.IsEmpty(), nil
}

// IsSuperset reports whether every word accepted by b is accepted by a.
func IsSuperset(a, b Automaton) (bool, error) {
	return IsSubset(b, a)
}
