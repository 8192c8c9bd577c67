// Package validate turns untrusted automaton submissions into normalized
// DFA and NFA definitions.
//
// Every structural problem is reported as an *Error whose Kind names the
// failure category and whose States or Transitions identify the diagram
// elements to highlight.
package validate

import (
	"fmt"
	"strings"
)

// Kind tags a validation failure category.
type Kind int

const (
	KindDuplicateStates Kind = iota + 1
	KindEmptyStateName
	KindNoStartState
	KindMultipleStartStates
	KindNoAcceptStates
	KindUnknownStates
	KindInvalidAlphabetTransitions
	KindMissingTransitions
	KindDuplicateTransitions
	KindRedundantTransitions
	KindUnreachableStates
)

var kindNames = map[Kind]string{
	KindDuplicateStates:            "DuplicateStates",
	KindEmptyStateName:             "EmptyStateName",
	KindNoStartState:               "NoStartState",
	KindMultipleStartStates:        "MultipleStartStates",
	KindNoAcceptStates:             "NoAcceptStates",
	KindUnknownStates:              "UnknownStates",
	KindInvalidAlphabetTransitions: "InvalidAlphabetTransitions",
	KindMissingTransitions:         "MissingTransitions",
	KindDuplicateTransitions:       "DuplicateTransitions",
	KindRedundantTransitions:       "RedundantTransitions",
	KindUnreachableStates:          "UnreachableStates",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Transition is one (from, symbol, to) triple. An empty field stands for
// "none": a missing destination, or the source and symbol of a start arrow.
type Transition struct {
	From   string `json:"from"`
	Symbol string `json:"symbol"`
	To     string `json:"to"`
}

func (t Transition) String() string {
	switch {
	case t.From == "" && t.Symbol == "":
		return "start --> " + t.To
	case t.To == "":
		return fmt.Sprintf("%s on %s", t.From, t.Symbol)
	default:
		return fmt.Sprintf("%s --%s--> %s", t.From, t.Symbol, t.To)
	}
}

// Error is a structural problem with a submission. At most one of States and
// Transitions is normally set; renderers prefer Transitions when both are.
type Error struct {
	Kind        Kind
	States      []string
	Transitions []Transition
	Message     string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same Kind, so the package sentinels work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is matching.
var (
	ErrDuplicateStates            = &Error{Kind: KindDuplicateStates, Message: "duplicate state names"}
	ErrEmptyStateName             = &Error{Kind: KindEmptyStateName, Message: "empty state name"}
	ErrNoStartState               = &Error{Kind: KindNoStartState, Message: "no start state"}
	ErrMultipleStartStates        = &Error{Kind: KindMultipleStartStates, Message: "multiple start states"}
	ErrNoAcceptStates             = &Error{Kind: KindNoAcceptStates, Message: "no accept states"}
	ErrUnknownStates              = &Error{Kind: KindUnknownStates, Message: "undeclared states"}
	ErrInvalidAlphabetTransitions = &Error{Kind: KindInvalidAlphabetTransitions, Message: "transitions outside the alphabet"}
	ErrMissingTransitions         = &Error{Kind: KindMissingTransitions, Message: "missing transitions"}
	ErrDuplicateTransitions       = &Error{Kind: KindDuplicateTransitions, Message: "duplicate transitions"}
	ErrRedundantTransitions       = &Error{Kind: KindRedundantTransitions, Message: "redundant transitions"}
	ErrUnreachableStates          = &Error{Kind: KindUnreachableStates, Message: "unreachable states"}
)

func statesError(kind Kind, states []string, format string) *Error {
	return &Error{
		Kind:    kind,
		States:  states,
		Message: fmt.Sprintf(format, strings.Join(states, ", ")),
	}
}

func transitionsError(kind Kind, ts []Transition, format string) *Error {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return &Error{
		Kind:        kind,
		Transitions: ts,
		Message:     fmt.Sprintf(format, strings.Join(parts, "; ")),
	}
}
