package automaton

import "strings"

// Step is one move of a run. Symbol is empty for an epsilon move.
type Step struct {
	From   string `json:"from"`
	Symbol string `json:"symbol"`
	To     string `json:"to"`
}

// Path is a run of an automaton on one word.
type Path struct {
	Start    string `json:"start"`
	Steps    []Step `json:"steps"`
	Accepted bool   `json:"accepted"`
}

// Format renders the run as "q0 --a--> q1 --b--> q2", writing epsilon moves
// with the given token.
func (p Path) Format(epsilon string) string {
	var b strings.Builder
	b.WriteString(p.Start)
	for _, st := range p.Steps {
		sym := st.Symbol
		if sym == "" {
			sym = epsilon
		}
		b.WriteString(" --")
		b.WriteString(sym)
		b.WriteString("--> ")
		b.WriteString(st.To)
	}
	return b.String()
}

// Trace follows word through d. The run stops early if a transition is
// missing.
func (d *DFA) Trace(word string) Path {
	p := Path{Start: d.names[d.start]}
	s := d.start
	for _, r := range word {
		t := d.Step(s, r)
		if t == DeadState {
			return p
		}
		p.Steps = append(p.Steps, Step{From: d.names[s], Symbol: string(r), To: d.names[t]})
		s = t
	}
	p.Accepted = d.IsAccept(s)
	return p
}

// Trace searches for an accepting run of n on word, breadth-first over
// (state, position) configurations, so the run found has the fewest moves.
// If no accepting run exists the returned path has no steps.
func (n *NFA) Trace(word string) Path {
	type config struct {
		state State
		pos   int
	}
	type edge struct {
		prev   config
		symbol string
	}

	input := []rune(word)
	start := config{n.start, 0}
	parent := map[config]edge{}
	seen := map[config]bool{start: true}
	queue := []config{start}

	var goal *config
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.pos == len(input) && n.final.Test(uint(cur.state)) {
			goal = &cur
			break
		}
		visit := func(next config, symbol string) {
			if !seen[next] {
				seen[next] = true
				parent[next] = edge{prev: cur, symbol: symbol}
				queue = append(queue, next)
			}
		}
		for _, t := range n.epsilon[cur.state] {
			visit(config{t, cur.pos}, "")
		}
		if cur.pos < len(input) {
			if idx, ok := n.symbols[input[cur.pos]]; ok {
				for _, t := range n.delta[cur.state][idx] {
					visit(config{t, cur.pos + 1}, string(input[cur.pos]))
				}
			}
		}
	}

	p := Path{Start: n.names[n.start]}
	if goal == nil {
		return p
	}
	p.Accepted = true
	for cur := *goal; cur != start; {
		e := parent[cur]
		p.Steps = append(p.Steps, Step{From: n.names[e.prev.state], Symbol: e.symbol, To: n.names[cur.state]})
		cur = e.prev
	}
	for i, j := 0, len(p.Steps)-1; i < j; i, j = i+1, j-1 {
		p.Steps[i], p.Steps[j] = p.Steps[j], p.Steps[i]
	}
	return p
}
