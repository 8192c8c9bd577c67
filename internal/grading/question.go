package grading

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/regex"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/validate"
)

// Question kinds.
const (
	KindDFA   = "dfa"
	KindNFA   = "nfa"
	KindRegex = "regex"
)

// MaxCheckLength caps MaxLengthToCheck; the scan examines |alphabet|^n words
// at length n.
const MaxCheckLength = 16

var questionValidate *validator.Validate

func init() {
	questionValidate = validator.New()
	_ = questionValidate.RegisterValidation("symbolset", validateSymbolSet)
}

// validateSymbolSet checks that a string lists each symbol at most once.
func validateSymbolSet(fl validator.FieldLevel) bool {
	seen := map[rune]bool{}
	for _, r := range fl.Field().String() {
		if seen[r] {
			return false
		}
		seen[r] = true
	}
	return true
}

// Reference is the correct answer of a question, either an automaton or a
// regular expression over the question's alphabet.
type Reference struct {
	// Kind is "dfa" or "nfa" for automaton references. Empty means "nfa".
	Kind      string               `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=dfa nfa"`
	Automaton *validate.Submission `json:"automaton,omitempty" yaml:"automaton,omitempty" validate:"required_without=Regex"`
	Regex     string               `json:"regex,omitempty" yaml:"regex,omitempty" validate:"required_without=Automaton"`
}

// Question is the per-instance grading configuration.
type Question struct {
	ID                   string    `json:"id" yaml:"id"`
	Kind                 string    `json:"kind" yaml:"kind" validate:"required,oneof=dfa nfa regex"`
	Alphabet             string    `json:"alphabet" yaml:"alphabet" validate:"required,symbolset"`
	EpsilonSymbol        string    `json:"epsilon_symbol,omitempty" yaml:"epsilon_symbol,omitempty" validate:"omitempty,len=1"`
	MaxLengthToCheck     int       `json:"max_length_to_check" yaml:"max_length_to_check" validate:"min=1,max=16"`
	MaxCounterexamples   int       `json:"max_counterexamples" yaml:"max_counterexamples" validate:"gte=0"`
	MaxStates            int       `json:"max_states,omitempty" yaml:"max_states,omitempty" validate:"gte=0"`
	MaxStateScoreScaling float64   `json:"max_state_score_scaling,omitempty" yaml:"max_state_score_scaling,omitempty" validate:"gte=0,lte=1"`
	Weight               int       `json:"weight" yaml:"weight" validate:"gte=0"`
	WordLimit            int       `json:"word_limit,omitempty" yaml:"word_limit,omitempty" validate:"gte=0,lte=32"`
	IncludeDumpState     bool      `json:"include_dump_state,omitempty" yaml:"include_dump_state,omitempty"`
	AllowNoAcceptStates  bool      `json:"allow_no_accept_states,omitempty" yaml:"allow_no_accept_states,omitempty"`
	ShowPathTaken        bool      `json:"show_path_taken,omitempty" yaml:"show_path_taken,omitempty"`
	FeedbackFormat       string    `json:"feedback_format,omitempty" yaml:"feedback_format,omitempty" validate:"omitempty,oneof=html text"`
	Reference            Reference `json:"reference" yaml:"reference"`
}

// EnsureDefaults fills optional fields left at their zero value.
func (q *Question) EnsureDefaults() {
	if q.MaxLengthToCheck == 0 {
		q.MaxLengthToCheck = 10
	}
	if q.MaxCounterexamples == 0 {
		q.MaxCounterexamples = 3
	}
	if q.Weight == 0 {
		q.Weight = 1
	}
	if q.FeedbackFormat == "" {
		q.FeedbackFormat = "html"
	}
}

// Validate checks the question's fields.
func (q *Question) Validate() error {
	if err := questionValidate.Struct(q); err != nil {
		return err
	}
	if q.EpsilonSymbol != "" && containsRune(q.Alphabet, q.EpsilonSymbol) {
		return fmt.Errorf("epsilon symbol %q is also an input symbol", q.EpsilonSymbol)
	}
	return nil
}

func containsRune(s, sym string) bool {
	for _, r := range s {
		if string(r) == sym {
			return true
		}
	}
	return false
}

// symbols lists the question's input symbols as raw submission symbols,
// including the epsilon symbol when withEpsilon is set.
func (q *Question) symbols(withEpsilon bool) []string {
	out := automaton.SymbolStrings(automaton.AlphabetFromString(q.Alphabet))
	if withEpsilon && q.EpsilonSymbol != "" {
		out = append(out, q.EpsilonSymbol)
	}
	return out
}

// Compiled is a validated question with its reference automaton built. It
// is immutable and safe to share between requests.
type Compiled struct {
	Question  Question
	Reference automaton.Automaton
}

// ErrInvalidReference is returned when a question's reference answer does not
// validate.
var ErrInvalidReference = errors.New("invalid reference answer")

// Compile fills defaults, validates q and builds its reference automaton.
func Compile(q Question) (*Compiled, error) {
	q.EnsureDefaults()
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("question %q: %w", q.ID, err)
	}
	ref, err := q.buildReference()
	if err != nil {
		return nil, fmt.Errorf("question %q: %w: %w", q.ID, ErrInvalidReference, err)
	}
	return &Compiled{Question: q, Reference: ref}, nil
}

func (q *Question) buildReference() (automaton.Automaton, error) {
	r := q.Reference
	if r.Automaton == nil {
		n, err := regex.Compile(r.Regex, automaton.AlphabetFromString(q.Alphabet), q.EpsilonSymbol)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	kind := automaton.KindNFA
	if r.Kind == KindDFA {
		kind = automaton.KindDFA
	}
	sub := *r.Automaton
	sub.InputSymbols = q.symbols(kind == automaton.KindNFA)
	if kind == automaton.KindNFA {
		sub.EpsilonSymbol = q.EpsilonSymbol
	} else {
		sub.EpsilonSymbol = ""
	}
	return validate.Build(kind, sub, validate.Options{AllowNoAcceptStates: true})
}
