package validate

import (
	"errors"
	"fmt"
	"strings"
)

// Submission is the raw automaton description sent by a client. None of its
// fields are trusted.
type Submission struct {
	States           []string                       `json:"states" yaml:"states"`
	InputSymbols     []string                       `json:"input_symbols" yaml:"input_symbols"`
	Transitions      map[string]map[string][]string `json:"transitions" yaml:"transitions"`
	InitialState     []string                       `json:"initial_state" yaml:"initial_state"`
	FinalStates      []string                       `json:"final_states" yaml:"final_states"`
	EpsilonSymbol    string                         `json:"epsilon_symbol,omitempty" yaml:"epsilon_symbol,omitempty"`
	IncludeDumpState bool                           `json:"include_dump_state,omitempty" yaml:"include_dump_state,omitempty"`
}

// Link types produced by the diagram editor.
const (
	LinkStart = "StartLink"
	LinkSelf  = "SelfLink"
	LinkEdge  = "Link"
)

// ErrMalformedGraph is returned when a diagram refers to nodes that do not
// exist or uses an unknown link type.
var ErrMalformedGraph = errors.New("malformed automaton diagram")

// Node is a state drawn in the diagram editor.
type Node struct {
	Text          string  `json:"text"`
	IsAcceptState bool    `json:"isAcceptState"`
	X             float64 `json:"x,omitempty"`
	Y             float64 `json:"y,omitempty"`
}

// Link is an arrow drawn in the diagram editor. StartLink and SelfLink use
// Node; Link uses NodeA and NodeB. Text holds comma-separated symbols.
type Link struct {
	Type  string `json:"type"`
	Node  int    `json:"node"`
	NodeA int    `json:"nodeA"`
	NodeB int    `json:"nodeB"`
	Text  string `json:"text"`
}

// Graph is the diagram editor's serialized state.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Submission converts the diagram into a raw submission. The conversion is
// lossy: layout is dropped and labels are split into individual symbols.
// Empty label pieces are kept so that validation reports them.
func (g Graph) Submission(alphabet []string, epsilon string, includeDump bool) (Submission, error) {
	sub := Submission{
		States:           make([]string, len(g.Nodes)),
		InputSymbols:     append([]string(nil), alphabet...),
		Transitions:      make(map[string]map[string][]string),
		EpsilonSymbol:    epsilon,
		IncludeDumpState: includeDump,
	}
	for i, n := range g.Nodes {
		name := strings.TrimSpace(n.Text)
		sub.States[i] = name
		if n.IsAcceptState {
			sub.FinalStates = append(sub.FinalStates, name)
		}
	}

	node := func(i int) (string, error) {
		if i < 0 || i >= len(sub.States) {
			return "", fmt.Errorf("%w: link refers to node %d of %d", ErrMalformedGraph, i, len(sub.States))
		}
		return sub.States[i], nil
	}
	addEdges := func(from, to, label string) {
		row := sub.Transitions[from]
		if row == nil {
			row = make(map[string][]string)
			sub.Transitions[from] = row
		}
		for _, sym := range strings.Split(label, ",") {
			sym = strings.TrimSpace(sym)
			row[sym] = append(row[sym], to)
		}
	}

	for _, l := range g.Links {
		switch l.Type {
		case LinkStart:
			name, err := node(l.Node)
			if err != nil {
				return Submission{}, err
			}
			sub.InitialState = append(sub.InitialState, name)
		case LinkSelf:
			name, err := node(l.Node)
			if err != nil {
				return Submission{}, err
			}
			addEdges(name, name, l.Text)
		case LinkEdge:
			from, err := node(l.NodeA)
			if err != nil {
				return Submission{}, err
			}
			to, err := node(l.NodeB)
			if err != nil {
				return Submission{}, err
			}
			addEdges(from, to, l.Text)
		default:
			return Submission{}, fmt.Errorf("%w: unknown link type %q", ErrMalformedGraph, l.Type)
		}
	}
	return sub, nil
}
