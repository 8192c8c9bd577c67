// Package regex compiles regular expressions over a finite alphabet into
// NFAs.
//
// The syntax is the one used in automata courses: single symbols, the
// epsilon symbol for the empty word, concatenation by juxtaposition, '|' for
// union, the postfix operators '*', '+' and '?', and parentheses. Spaces are
// ignored.
package regex

import (
	"fmt"
	"strconv"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
)

// SyntaxError reports a malformed expression. Pos is a rune offset into the
// pattern.
type SyntaxError struct {
	Pattern string
	Pos     int
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("regular expression %q: %s at position %d", e.Pattern, e.Msg, e.Pos)
}

// fragment is a partial NFA with one entry and one exit state.
type fragment struct {
	start, end int
}

type compiler struct {
	pattern  string
	input    []rune
	pos      int
	alphabet map[rune]bool
	epsilon  rune
	hasEps   bool

	numStates int
	edges     map[int]map[string][]int
}

// Compile parses pattern and builds an equivalent NFA over alphabet. epsilon
// is the one-character symbol standing for the empty word, or "" for none.
func Compile(pattern string, alphabet []rune, epsilon string) (*automaton.NFA, error) {
	c := &compiler{
		pattern:  pattern,
		input:    []rune(pattern),
		alphabet: make(map[rune]bool, len(alphabet)),
		edges:    make(map[int]map[string][]int),
	}
	for _, r := range alphabet {
		c.alphabet[r] = true
	}
	if epsilon != "" {
		r, err := automaton.ParseSymbol(epsilon)
		if err != nil {
			return nil, fmt.Errorf("epsilon symbol: %w", err)
		}
		c.epsilon, c.hasEps = r, true
	}

	f, err := c.parseUnion()
	if err != nil {
		return nil, err
	}
	if c.skipSpace(); c.pos < len(c.input) {
		if c.input[c.pos] == ')' {
			return nil, c.errorf("unmatched ')'")
		}
		return nil, c.errorf("unexpected %q", c.input[c.pos])
	}
	return automaton.NewNFA(c.definition(f, alphabet))
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string, alphabet []rune, epsilon string) *automaton.NFA {
	n, err := Compile(pattern, alphabet, epsilon)
	if err != nil {
		panic(err)
	}
	return n
}

func (c *compiler) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Pattern: c.pattern, Pos: c.pos, Msg: fmt.Sprintf(format, args...)}
}

func (c *compiler) skipSpace() {
	for c.pos < len(c.input) && c.input[c.pos] == ' ' {
		c.pos++
	}
}

func (c *compiler) peek() (rune, bool) {
	c.skipSpace()
	if c.pos >= len(c.input) {
		return 0, false
	}
	return c.input[c.pos], true
}

func (c *compiler) newState() int {
	c.numStates++
	return c.numStates - 1
}

func (c *compiler) edge(from int, symbol string, to int) {
	row := c.edges[from]
	if row == nil {
		row = make(map[string][]int)
		c.edges[from] = row
	}
	row[symbol] = append(row[symbol], to)
}

// parseUnion: concat ('|' concat)*
func (c *compiler) parseUnion() (fragment, error) {
	left, err := c.parseConcat()
	if err != nil {
		return fragment{}, err
	}
	for {
		r, ok := c.peek()
		if !ok || r != '|' {
			return left, nil
		}
		c.pos++
		right, err := c.parseConcat()
		if err != nil {
			return fragment{}, err
		}
		f := fragment{start: c.newState(), end: c.newState()}
		c.edge(f.start, automaton.EpsilonKey, left.start)
		c.edge(f.start, automaton.EpsilonKey, right.start)
		c.edge(left.end, automaton.EpsilonKey, f.end)
		c.edge(right.end, automaton.EpsilonKey, f.end)
		left = f
	}
}

// parseConcat: repeat+
func (c *compiler) parseConcat() (fragment, error) {
	var out *fragment
	for {
		r, ok := c.peek()
		if !ok || r == '|' || r == ')' {
			break
		}
		f, err := c.parseRepeat()
		if err != nil {
			return fragment{}, err
		}
		if out == nil {
			out = &f
			continue
		}
		c.edge(out.end, automaton.EpsilonKey, f.start)
		out.end = f.end
	}
	if out == nil {
		return fragment{}, c.errorf("missing operand")
	}
	return *out, nil
}

// parseRepeat: atom ('*' | '+' | '?')*
func (c *compiler) parseRepeat() (fragment, error) {
	f, err := c.parseAtom()
	if err != nil {
		return fragment{}, err
	}
	for {
		r, ok := c.peek()
		if !ok {
			return f, nil
		}
		switch r {
		case '*':
			g := fragment{start: c.newState(), end: c.newState()}
			c.edge(g.start, automaton.EpsilonKey, f.start)
			c.edge(g.start, automaton.EpsilonKey, g.end)
			c.edge(f.end, automaton.EpsilonKey, f.start)
			c.edge(f.end, automaton.EpsilonKey, g.end)
			f = g
		case '+':
			g := fragment{start: c.newState(), end: c.newState()}
			c.edge(g.start, automaton.EpsilonKey, f.start)
			c.edge(f.end, automaton.EpsilonKey, f.start)
			c.edge(f.end, automaton.EpsilonKey, g.end)
			f = g
		case '?':
			g := fragment{start: c.newState(), end: c.newState()}
			c.edge(g.start, automaton.EpsilonKey, f.start)
			c.edge(g.start, automaton.EpsilonKey, g.end)
			c.edge(f.end, automaton.EpsilonKey, g.end)
			f = g
		default:
			return f, nil
		}
		c.pos++
	}
}

// parseAtom: symbol | epsilon | '(' union ')'
func (c *compiler) parseAtom() (fragment, error) {
	r, _ := c.peek()
	switch {
	case r == '(':
		open := c.pos
		c.pos++
		f, err := c.parseUnion()
		if err != nil {
			return fragment{}, err
		}
		if r, ok := c.peek(); !ok || r != ')' {
			c.pos = open
			return fragment{}, c.errorf("unmatched '('")
		}
		c.pos++
		return f, nil
	case r == '*' || r == '+' || r == '?':
		return fragment{}, c.errorf("%q has nothing to repeat", r)
	case c.hasEps && r == c.epsilon:
		c.pos++
		f := fragment{start: c.newState(), end: c.newState()}
		c.edge(f.start, automaton.EpsilonKey, f.end)
		return f, nil
	case c.alphabet[r]:
		c.pos++
		f := fragment{start: c.newState(), end: c.newState()}
		c.edge(f.start, string(r), f.end)
		return f, nil
	default:
		return fragment{}, c.errorf("symbol %q is not in the alphabet", r)
	}
}

func (c *compiler) definition(f fragment, alphabet []rune) automaton.NFADefinition {
	name := func(i int) string { return "r" + strconv.Itoa(i) }
	def := automaton.NFADefinition{
		States:       make([]string, c.numStates),
		InputSymbols: automaton.SymbolStrings(alphabet),
		Transitions:  make(map[string]map[string][]string, c.numStates),
		InitialState: name(f.start),
		FinalStates:  []string{name(f.end)},
	}
	for i := range def.States {
		def.States[i] = name(i)
	}
	for from, row := range c.edges {
		out := make(map[string][]string, len(row))
		for sym, targets := range row {
			for _, t := range targets {
				out[sym] = append(out[sym], name(t))
			}
		}
		def.Transitions[name(from)] = out
	}
	return def
}
