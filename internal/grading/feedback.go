package grading

import (
	"html"
	"strings"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
)

// Format selects how feedback is rendered.
type Format int

const (
	FormatHTML Format = iota
	FormatText
)

// ParseFormat maps "html" and "text" to a Format. Anything else is HTML.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "text") {
		return FormatText
	}
	return FormatHTML
}

// DefaultEpsilon is the display token for the empty word.
const DefaultEpsilon = `$\varepsilon$`

// FeedbackOptions controls RenderFeedback.
type FeedbackOptions struct {
	MaxCount int
	Epsilon  string
	Format   Format
	// ShowPath adds the submission's accepting run on the first false
	// positive.
	ShowPath bool
}

const (
	falsePositiveHeader = "Here are some strings accepted by your automaton that should be rejected:"
	falseNegativeHeader = "Here are some strings rejected by your automaton that should be accepted:"
)

// RenderFeedback renders counterexamples for display. Each list is capped at
// opts.MaxCount and the empty word is shown as the epsilon token. submission
// may be nil, in which case no path is shown.
//
// RenderFeedback panics if both lists are empty; equivalent automata have no
// feedback.
func RenderFeedback(cx *Counterexamples, submission automaton.Automaton, opts FeedbackOptions) string {
	if cx.Empty() {
		panic("grading: RenderFeedback called without counterexamples")
	}
	if opts.Epsilon == "" {
		opts.Epsilon = DefaultEpsilon
	}
	r := renderer{opts: opts}

	fp := capList(cx.FalsePositives, opts.MaxCount)
	fn := capList(cx.FalseNegatives, opts.MaxCount)
	if len(fp) > 0 {
		r.list(falsePositiveHeader, fp)
		if opts.ShowPath && submission != nil {
			r.path(submission, fp[0])
		}
	}
	if len(fn) > 0 {
		r.list(falseNegativeHeader, fn)
	}
	return r.String()
}

func capList(words []string, n int) []string {
	if n > 0 && len(words) > n {
		return words[:n]
	}
	return words
}

type renderer struct {
	opts  FeedbackOptions
	parts []string
}

func (r *renderer) escape(s string) string {
	if r.opts.Format == FormatHTML {
		return html.EscapeString(s)
	}
	return s
}

func (r *renderer) word(w string) string {
	if w == "" {
		return r.opts.Epsilon
	}
	return r.escape(w)
}

// state renders a state name. The synthetic start state of an NFA with
// several start states has the empty name.
func (r *renderer) state(s string) string {
	if s == "" {
		return "(start)"
	}
	return r.escape(s)
}

func (r *renderer) list(header string, words []string) {
	if r.opts.Format == FormatText {
		lines := []string{header}
		for _, w := range words {
			lines = append(lines, "  "+r.word(w))
		}
		r.parts = append(r.parts, strings.Join(lines, "\n"))
		return
	}
	var b strings.Builder
	b.WriteString("<p>")
	b.WriteString(header)
	b.WriteString("</p><ul>")
	for _, w := range words {
		b.WriteString("<li>")
		b.WriteString(r.word(w))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	r.parts = append(r.parts, b.String())
}

func (r *renderer) path(a automaton.Automaton, word string) {
	p := a.Trace(word)
	var msg string
	switch {
	case !p.Accepted:
		return
	case len(p.Steps) == 0:
		msg = "Your automaton accepts " + r.word(word) + " because its start state " +
			r.state(p.Start) + " is an accepting state."
	default:
		steps := make([]automaton.Step, len(p.Steps))
		for i, st := range p.Steps {
			steps[i] = automaton.Step{From: r.state(st.From), Symbol: r.escape(st.Symbol), To: r.state(st.To)}
		}
		run := automaton.Path{Start: r.state(p.Start), Steps: steps}
		msg = "Path taken by your automaton on " + r.word(word) + ": " + run.Format(r.opts.Epsilon)
	}
	if r.opts.Format == FormatHTML {
		msg = "<p>" + msg + "</p>"
	}
	r.parts = append(r.parts, msg)
}

func (r *renderer) String() string {
	if r.opts.Format == FormatText {
		return strings.Join(r.parts, "\n")
	}
	return strings.Join(r.parts, "")
}
