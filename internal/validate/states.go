package validate

import (
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
)

// dedupe returns names without repeats, keeping first occurrences in order.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ValidateStates checks that every state has a non-empty, unique name and
// returns a copy of the list.
func ValidateStates(states []string) ([]string, error) {
	for _, s := range states {
		if s == "" {
			return nil, &Error{Kind: KindEmptyStateName, Message: "Every state must have a name."}
		}
	}
	seen := make(map[string]int, len(states))
	var dups []string
	for _, s := range states {
		seen[s]++
		if seen[s] == 2 {
			dups = append(dups, s)
		}
	}
	if len(dups) > 0 {
		return nil, statesError(KindDuplicateStates, dups, "State names must be unique. Repeated names: %s.")
	}
	return append([]string(nil), states...), nil
}

// ValidateInitialState deduplicates the declared start states and checks
// their count. A DFA must have exactly one; an NFA may have several.
func ValidateInitialState(initial []string, isNFA bool) ([]string, error) {
	initial = dedupe(initial)
	if len(initial) == 0 {
		return nil, &Error{Kind: KindNoStartState, Message: "The automaton must have a start state."}
	}
	if !isNFA && len(initial) > 1 {
		ts := make([]Transition, len(initial))
		for i, s := range initial {
			ts[i] = Transition{To: s}
		}
		err := transitionsError(KindMultipleStartStates, ts, "A DFA must have exactly one start state. Found: %s.")
		return nil, err
	}
	return initial, nil
}

// CompressMultipleStartStates returns the single initial state of an NFA.
// With one start state it is returned as is. Otherwise a fresh state is
// added with an epsilon move to each original start state; it becomes the
// new initial state. The returned states slice is a new slice.
func CompressMultipleStartStates(states, initial []string) ([]string, string, []Transition) {
	out := append([]string(nil), states...)
	if len(initial) == 1 {
		return out, initial[0], nil
	}
	start := automaton.FreshName("", states)
	out = append(out, start)
	moves := make([]Transition, len(initial))
	for i, s := range initial {
		moves[i] = Transition{From: start, Symbol: automaton.EpsilonKey, To: s}
	}
	return out, start, moves
}

// ValidateFinalStates checks that at least one state accepts and returns the
// deduplicated list.
func ValidateFinalStates(final []string) ([]string, error) {
	final = dedupe(final)
	if len(final) == 0 {
		return nil, &Error{Kind: KindNoAcceptStates, Message: "The automaton must have at least one accepting state."}
	}
	return final, nil
}

// ValidateKnownStates checks that every state named by the start states,
// final states and transitions is declared.
func ValidateKnownStates(states, initial, final []string, ts []Transition) error {
	declared := make(map[string]struct{}, len(states))
	for _, s := range states {
		declared[s] = struct{}{}
	}
	var unknown []string
	check := func(name string) {
		if _, ok := declared[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	for _, s := range initial {
		check(s)
	}
	for _, s := range final {
		check(s)
	}
	for _, t := range ts {
		check(t.From)
		check(t.To)
	}
	if unknown = dedupe(unknown); len(unknown) > 0 {
		return statesError(KindUnknownStates, unknown, "These states are used but never declared: %s.")
	}
	return nil
}

// ValidateReachability checks that every state except dumpState is
// reachable from the initial state. Pass an empty dumpState when no dump
// state was added.
func ValidateReachability(a automaton.Automaton, dumpState string) error {
	reached := make(map[string]struct{})
	for _, s := range a.ReachableStates() {
		reached[s] = struct{}{}
	}
	var unreached []string
	for _, s := range a.States() {
		if _, ok := reached[s]; ok {
			continue
		}
		if dumpState != "" && s == dumpState {
			continue
		}
		unreached = append(unreached, s)
	}
	if len(unreached) > 0 {
		return statesError(KindUnreachableStates, unreached, "These states cannot be reached from the start state: %s.")
	}
	return nil
}
