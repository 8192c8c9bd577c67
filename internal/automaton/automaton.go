package automaton

import "errors"

// State identifies a state by its index within one automaton.
type State int

// DeadState is returned by Step when no transition exists.
const DeadState State = -1

// Kind distinguishes the two automaton variants.
type Kind int

const (
	KindDFA Kind = iota + 1
	KindNFA
)

func (k Kind) String() string {
	switch k {
	case KindDFA:
		return "dfa"
	case KindNFA:
		return "nfa"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownState     = errors.New("state is not declared")
	ErrInvalidSymbol    = errors.New("input symbol must be a single character")
	ErrAlphabetMismatch = errors.New("automata have different input symbols")
	ErrEmptyLanguage    = errors.New("automaton accepts no words")
	ErrNoWordOfLength   = errors.New("automaton accepts no word of the requested length")
	ErrNegativeLength   = errors.New("word length must not be negative")
)

// Automaton is implemented by *DFA and *NFA only.
//
// Properties:
//   - Immutable after construction
//   - Symbols are single runes; words are strings over the alphabet
//   - Callers dispatch on the concrete type with a type switch
type Automaton interface {
	// Kind reports which variant this is.
	Kind() Kind

	// Alphabet returns the sorted input symbols. Epsilon is never included.
	Alphabet() []rune

	// States returns the state names in index order.
	States() []string

	// Accepts reports whether word is in the language.
	Accepts(word string) bool

	// Trace returns a run of the automaton on word, preferring an accepting one.
	Trace(word string) Path

	// ReachableStates returns the names of states reachable from the initial state.
	ReachableStates() []string

	// Determinize returns an equivalent DFA. For an NFA the result is
	// complete; a DFA returns itself and may be partial. Call ToComplete
	// when a total transition function is needed.
	Determinize() *DFA

	sealed()
}

// sameAlphabet reports whether two sorted alphabets are identical.
func sameAlphabet(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
