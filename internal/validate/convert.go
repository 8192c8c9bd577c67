package validate

import (
	"fmt"
	"slices"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
)

// Options relaxes individual checks of the conversion pipelines.
type Options struct {
	// AllowNoAcceptStates accepts automata whose language is empty because
	// no state accepts.
	AllowNoAcceptStates bool
}

// alphabetOf parses the declared input symbols, dropping the epsilon symbol
// when one is set.
func alphabetOf(sub Submission) ([]string, error) {
	symbols, err := automaton.ParseAlphabet(sub.InputSymbols)
	if err != nil {
		return nil, fmt.Errorf("input symbols: %w", err)
	}
	out := automaton.SymbolStrings(symbols)
	if sub.EpsilonSymbol != "" {
		if _, err := automaton.ParseSymbol(sub.EpsilonSymbol); err != nil {
			return nil, fmt.Errorf("epsilon symbol: %w", err)
		}
		out = slices.DeleteFunc(out, func(s string) bool { return s == sub.EpsilonSymbol })
	}
	return out, nil
}

// checkStates runs the checks shared by both pipelines and returns the
// flattened transitions.
func checkStates(sub Submission, isNFA bool, opts Options) ([]string, []string, []string, []Transition, error) {
	states, err := ValidateStates(sub.States)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	initial, err := ValidateInitialState(sub.InitialState, isNFA)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	final := dedupe(sub.FinalStates)
	if !opts.AllowNoAcceptStates {
		if final, err = ValidateFinalStates(sub.FinalStates); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	ts := flattenTransitions(states, sub.Transitions)
	if err := ValidateKnownStates(states, initial, final, ts); err != nil {
		return nil, nil, nil, nil, err
	}
	return states, initial, final, ts, nil
}

// ConvertDFA validates a raw submission as a DFA and returns its normalized
// definition. The epsilon symbol is ignored.
func ConvertDFA(sub Submission, opts Options) (automaton.DFADefinition, error) {
	alphabet, err := alphabetOf(Submission{InputSymbols: sub.InputSymbols})
	if err != nil {
		return automaton.DFADefinition{}, err
	}
	states, initial, final, ts, err := checkStates(sub, false, opts)
	if err != nil {
		return automaton.DFADefinition{}, err
	}
	if err := ValidateTransitionAlphabet(ts, alphabet); err != nil {
		return automaton.DFADefinition{}, err
	}
	if err := ValidateNoDuplicateTransitions(ts); err != nil {
		return automaton.DFADefinition{}, err
	}
	c, err := ValidateTransitionCompleteness(states, dedupeTransitions(ts), alphabet, sub.IncludeDumpState)
	if err != nil {
		return automaton.DFADefinition{}, err
	}

	def := automaton.DFADefinition{
		States:       c.States,
		InputSymbols: alphabet,
		Transitions:  make(map[string]map[string]string, len(c.States)),
		InitialState: initial[0],
		FinalStates:  final,
	}
	for _, s := range c.States {
		def.Transitions[s] = make(map[string]string, len(alphabet))
	}
	for _, t := range c.Transitions {
		def.Transitions[t.From][t.Symbol] = t.To
	}

	dfa, err := automaton.NewDFA(def)
	if err != nil {
		return automaton.DFADefinition{}, fmt.Errorf("build dfa: %w", err)
	}
	if err := ValidateReachability(dfa, c.DumpState); err != nil {
		return automaton.DFADefinition{}, err
	}
	return def, nil
}

// ConvertNFA validates a raw submission as an NFA and returns its normalized
// definition. Transitions on the epsilon symbol are moved to the
// automaton.EpsilonKey key, the epsilon symbol is removed from the
// alphabet, and multiple start states are compressed into one. Missing
// transitions are allowed unless a dump state is requested, in which case
// the gaps are filled.
func ConvertNFA(sub Submission, opts Options) (automaton.NFADefinition, error) {
	alphabet, err := alphabetOf(sub)
	if err != nil {
		return automaton.NFADefinition{}, err
	}
	states, initial, final, ts, err := checkStates(sub, true, opts)
	if err != nil {
		return automaton.NFADefinition{}, err
	}
	allowed := alphabet
	if sub.EpsilonSymbol != "" {
		allowed = append(slices.Clone(alphabet), sub.EpsilonSymbol)
	}
	if err := ValidateTransitionAlphabet(ts, allowed); err != nil {
		return automaton.NFADefinition{}, err
	}
	if err := ValidateNoRedundantTransitions(ts); err != nil {
		return automaton.NFADefinition{}, err
	}

	renamed := make([]Transition, len(ts))
	for i, t := range ts {
		if sub.EpsilonSymbol != "" && t.Symbol == sub.EpsilonSymbol {
			t.Symbol = automaton.EpsilonKey
		}
		renamed[i] = t
	}
	c := Completion{States: states, Transitions: renamed}
	if sub.IncludeDumpState {
		if c, err = ValidateTransitionCompleteness(states, renamed, alphabet, true); err != nil {
			return automaton.NFADefinition{}, err
		}
	}
	allStates, start, moves := CompressMultipleStartStates(c.States, initial)
	edges := append(c.Transitions, moves...)

	def := automaton.NFADefinition{
		States:       allStates,
		InputSymbols: alphabet,
		Transitions:  make(map[string]map[string][]string, len(allStates)),
		InitialState: start,
		FinalStates:  final,
	}
	for _, s := range allStates {
		def.Transitions[s] = make(map[string][]string)
	}
	for _, t := range edges {
		row := def.Transitions[t.From]
		if !slices.Contains(row[t.Symbol], t.To) {
			row[t.Symbol] = append(row[t.Symbol], t.To)
		}
	}

	nfa, err := automaton.NewNFA(def)
	if err != nil {
		return automaton.NFADefinition{}, fmt.Errorf("build nfa: %w", err)
	}
	if err := ValidateReachability(nfa, c.DumpState); err != nil {
		return automaton.NFADefinition{}, err
	}
	return def, nil
}

// BuildDFA validates a submission and constructs the DFA.
func BuildDFA(sub Submission, opts Options) (*automaton.DFA, error) {
	def, err := ConvertDFA(sub, opts)
	if err != nil {
		return nil, err
	}
	return automaton.NewDFA(def)
}

// BuildNFA validates a submission and constructs the NFA.
func BuildNFA(sub Submission, opts Options) (*automaton.NFA, error) {
	def, err := ConvertNFA(sub, opts)
	if err != nil {
		return nil, err
	}
	return automaton.NewNFA(def)
}

// Build dispatches to BuildDFA or BuildNFA.
func Build(kind automaton.Kind, sub Submission, opts Options) (automaton.Automaton, error) {
	var (
		a   automaton.Automaton
		err error
	)
	switch kind {
	case automaton.KindDFA:
		a, err = BuildDFA(sub, opts)
	case automaton.KindNFA:
		a, err = BuildNFA(sub, opts)
	default:
		return nil, fmt.Errorf("unknown automaton kind %v", kind)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// SubmissionFromDFA renders a normalized DFA back into the raw submission
// shape.
func SubmissionFromDFA(def automaton.DFADefinition) Submission {
	sub := Submission{
		States:       slices.Clone(def.States),
		InputSymbols: slices.Clone(def.InputSymbols),
		Transitions:  make(map[string]map[string][]string, len(def.Transitions)),
		InitialState: []string{def.InitialState},
		FinalStates:  slices.Clone(def.FinalStates),
	}
	for from, row := range def.Transitions {
		out := make(map[string][]string, len(row))
		for sym, to := range row {
			out[sym] = []string{to}
		}
		sub.Transitions[from] = out
	}
	return sub
}

// SubmissionFromNFA renders a normalized NFA back into the raw submission
// shape, writing epsilon moves under the given epsilon symbol. The unnamed
// start state added by CompressMultipleStartStates is expanded back into
// the list of start states it stands for, so the result converts again.
func SubmissionFromNFA(def automaton.NFADefinition, epsilon string) Submission {
	sub := Submission{
		States:        make([]string, 0, len(def.States)),
		InputSymbols:  slices.Clone(def.InputSymbols),
		Transitions:   make(map[string]map[string][]string, len(def.Transitions)),
		InitialState:  []string{def.InitialState},
		FinalStates:   slices.Clone(def.FinalStates),
		EpsilonSymbol: epsilon,
	}
	synthetic := def.InitialState == ""
	if synthetic {
		sub.InitialState = slices.Clone(def.Transitions[""][automaton.EpsilonKey])
	}
	for _, s := range def.States {
		if !(synthetic && s == "") {
			sub.States = append(sub.States, s)
		}
	}
	if epsilon != "" {
		sub.InputSymbols = append(sub.InputSymbols, epsilon)
	}
	for from, row := range def.Transitions {
		if synthetic && from == "" {
			continue
		}
		out := make(map[string][]string, len(row))
		for sym, to := range row {
			if sym == automaton.EpsilonKey {
				sym = epsilon
			}
			out[sym] = slices.Clone(to)
		}
		sub.Transitions[from] = out
	}
	return sub
}
