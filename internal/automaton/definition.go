package automaton

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"
)

// ErrDuplicateState is returned when a definition declares a state twice.
var ErrDuplicateState = errors.New("state declared more than once")

// DFADefinition is the normalized, serializable form of a DFA.
type DFADefinition struct {
	States       []string                     `json:"states" yaml:"states"`
	InputSymbols []string                     `json:"input_symbols" yaml:"input_symbols"`
	Transitions  map[string]map[string]string `json:"transitions" yaml:"transitions"`
	InitialState string                       `json:"initial_state" yaml:"initial_state"`
	FinalStates  []string                     `json:"final_states" yaml:"final_states"`
}

// NFADefinition is the normalized, serializable form of an NFA.
// Epsilon moves are listed under the EpsilonKey symbol.
type NFADefinition struct {
	States       []string                       `json:"states" yaml:"states"`
	InputSymbols []string                       `json:"input_symbols" yaml:"input_symbols"`
	Transitions  map[string]map[string][]string `json:"transitions" yaml:"transitions"`
	InitialState string                         `json:"initial_state" yaml:"initial_state"`
	FinalStates  []string                       `json:"final_states" yaml:"final_states"`
}

// EpsilonKey is the transition key used for epsilon moves in NFADefinition.
const EpsilonKey = ""

// ParseSymbol converts a one-character string to its rune.
func ParseSymbol(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
	}
	return r, nil
}

// ParseAlphabet converts symbol strings into a sorted, deduplicated alphabet.
func ParseAlphabet(symbols []string) ([]rune, error) {
	out := make([]rune, 0, len(symbols))
	for _, s := range symbols {
		r, err := ParseSymbol(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// AlphabetFromString returns the sorted, deduplicated runes of s.
func AlphabetFromString(s string) []rune {
	out := []rune(s)
	slices.Sort(out)
	return slices.Compact(out)
}

// SymbolStrings renders an alphabet as one-character strings.
func SymbolStrings(alphabet []rune) []string {
	out := make([]string, len(alphabet))
	for i, r := range alphabet {
		out[i] = string(r)
	}
	return out
}

// stateIndex maps names to indices, rejecting duplicates.
func stateIndex(names []string) (map[string]State, error) {
	index := make(map[string]State, len(names))
	for i, name := range names {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateState, name)
		}
		index[name] = State(i)
	}
	return index, nil
}

func lookupState(index map[string]State, name string) (State, error) {
	s, ok := index[name]
	if !ok {
		return DeadState, fmt.Errorf("%w: %q", ErrUnknownState, name)
	}
	return s, nil
}
