package validate

import (
	"slices"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
)

// flattenTransitions lists every (from, symbol, to) triple of a transitions
// map. Sources follow the declared state order, undeclared sources come
// last in sorted order, symbols are sorted, and destinations keep their
// listed order including repeats.
func flattenTransitions(states []string, raw map[string]map[string][]string) []Transition {
	sources := make([]string, 0, len(raw))
	declared := make(map[string]struct{}, len(states))
	for _, s := range states {
		declared[s] = struct{}{}
		if _, ok := raw[s]; ok {
			sources = append(sources, s)
		}
	}
	var extra []string
	for s := range raw {
		if _, ok := declared[s]; !ok {
			extra = append(extra, s)
		}
	}
	slices.Sort(extra)
	sources = append(sources, extra...)

	var out []Transition
	for _, from := range sources {
		row := raw[from]
		symbols := make([]string, 0, len(row))
		for sym := range row {
			symbols = append(symbols, sym)
		}
		slices.Sort(symbols)
		for _, sym := range symbols {
			for _, to := range row[sym] {
				out = append(out, Transition{From: from, Symbol: sym, To: to})
			}
		}
	}
	return out
}

// ValidateTransitionAlphabet checks that every transition uses a symbol of
// the alphabet.
func ValidateTransitionAlphabet(ts []Transition, alphabet []string) error {
	allowed := make(map[string]struct{}, len(alphabet))
	for _, a := range alphabet {
		allowed[a] = struct{}{}
	}
	var bad []Transition
	for _, t := range ts {
		if _, ok := allowed[t.Symbol]; !ok {
			bad = append(bad, t)
		}
	}
	if len(bad) > 0 {
		return transitionsError(KindInvalidAlphabetTransitions, dedupeTransitions(bad),
			"These transitions use symbols outside the alphabet: %s.")
	}
	return nil
}

// ValidateNoDuplicateTransitions checks that each (state, symbol) pair has a
// single destination. Listing the same triple twice is tolerated.
func ValidateNoDuplicateTransitions(ts []Transition) error {
	type key struct{ from, symbol string }
	dests := make(map[key][]string)
	for _, t := range ts {
		k := key{t.From, t.Symbol}
		if !slices.Contains(dests[k], t.To) {
			dests[k] = append(dests[k], t.To)
		}
	}
	var bad []Transition
	for _, t := range dedupeTransitions(ts) {
		if len(dests[key{t.From, t.Symbol}]) > 1 {
			bad = append(bad, t)
		}
	}
	if len(bad) > 0 {
		return transitionsError(KindDuplicateTransitions, bad,
			"A DFA state may have only one transition per symbol. Conflicting transitions: %s.")
	}
	return nil
}

// ValidateNoRedundantTransitions checks that no triple is listed twice.
func ValidateNoRedundantTransitions(ts []Transition) error {
	count := make(map[Transition]int, len(ts))
	var bad []Transition
	for _, t := range ts {
		count[t]++
		if count[t] == 2 {
			bad = append(bad, t)
		}
	}
	if len(bad) > 0 {
		return transitionsError(KindRedundantTransitions, bad,
			"These transitions are listed more than once: %s.")
	}
	return nil
}

// Completion is the result of a completeness check. When DumpState is
// non-empty it names the sink that was added, and States and Transitions
// include it.
type Completion struct {
	States      []string
	Transitions []Transition
	DumpState   string
}

// ValidateTransitionCompleteness checks that every state has an outgoing
// transition on every symbol of the alphabet. The alphabet must not contain
// the epsilon symbol.
//
// Without includeDump a gap fails with MissingTransitions listing each
// (state, symbol) pair without a destination. With includeDump the gaps are
// redirected to a fresh non-accepting sink that loops on every symbol, and
// the check never fails. Inputs are not modified.
func ValidateTransitionCompleteness(states []string, ts []Transition, alphabet []string, includeDump bool) (Completion, error) {
	type key struct{ from, symbol string }
	covered := make(map[key]struct{}, len(ts))
	for _, t := range ts {
		covered[key{t.From, t.Symbol}] = struct{}{}
	}
	var missing []Transition
	for _, s := range states {
		for _, a := range alphabet {
			if _, ok := covered[key{s, a}]; !ok {
				missing = append(missing, Transition{From: s, Symbol: a})
			}
		}
	}

	c := Completion{
		States:      append([]string(nil), states...),
		Transitions: append([]Transition(nil), ts...),
	}
	if len(missing) == 0 {
		return c, nil
	}
	if !includeDump {
		return Completion{}, transitionsError(KindMissingTransitions, missing,
			"Every state needs a transition on every symbol. Missing: %s.")
	}

	c.DumpState = automaton.FreshName("dump", states)
	c.States = append(c.States, c.DumpState)
	for _, m := range missing {
		m.To = c.DumpState
		c.Transitions = append(c.Transitions, m)
	}
	for _, a := range alphabet {
		c.Transitions = append(c.Transitions, Transition{From: c.DumpState, Symbol: a, To: c.DumpState})
	}
	return c, nil
}

// dedupeTransitions drops repeated triples, keeping first occurrences.
func dedupeTransitions(ts []Transition) []Transition {
	seen := make(map[Transition]struct{}, len(ts))
	out := make([]Transition, 0, len(ts))
	for _, t := range ts {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
