package grading

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/testutil"
)

func TestRenderFeedback_HTML(t *testing.T) {
	cx := &Counterexamples{
		FalsePositives: []string{"", "a<b", "c", "d"},
		FalseNegatives: []string{"x"},
	}
	out := RenderFeedback(cx, nil, FeedbackOptions{MaxCount: 2})

	assert.Contains(t, out, falsePositiveHeader)
	assert.Contains(t, out, falseNegativeHeader)
	assert.Contains(t, out, "<li>"+DefaultEpsilon+"</li>")
	assert.Contains(t, out, "<li>a&lt;b</li>")
	assert.NotContains(t, out, "<li>c</li>", "list is capped at MaxCount")
	assert.Contains(t, out, "<li>x</li>")
}

func TestRenderFeedback_Text(t *testing.T) {
	cx := &Counterexamples{FalseNegatives: []string{"", "ab"}}
	out := RenderFeedback(cx, nil, FeedbackOptions{Format: FormatText, Epsilon: "eps"})

	assert.Equal(t, falseNegativeHeader+"\n  eps\n  ab", out)
	assert.NotContains(t, out, falsePositiveHeader)
}

func TestRenderFeedback_Path(t *testing.T) {
	d := testutil.MustDFA(t, testutil.ContainsDFA("01"))
	cx := &Counterexamples{FalsePositives: []string{"101"}}

	out := RenderFeedback(cx, d, FeedbackOptions{Format: FormatText, ShowPath: true})
	assert.Contains(t, out, "q0 --1--> q0 --0--> q1 --1--> q2")

	out = RenderFeedback(cx, d, FeedbackOptions{Format: FormatText})
	assert.NotContains(t, out, "-->")
}

func TestRenderFeedback_EmptyPath(t *testing.T) {
	sub := testutil.EvenZerosDFA()
	d := testutil.MustDFA(t, sub)
	cx := &Counterexamples{FalsePositives: []string{""}}

	out := RenderFeedback(cx, d, FeedbackOptions{ShowPath: true})
	assert.Contains(t, out, "start state even is an accepting state")
	assert.True(t, strings.HasPrefix(out, "<p>"))
}

func TestRenderFeedback_NFAPath(t *testing.T) {
	n := testutil.MustNFA(t, testutil.EndsWithABNFA())
	cx := &Counterexamples{FalsePositives: []string{"ab"}}

	out := RenderFeedback(cx, n, FeedbackOptions{Format: FormatText, Epsilon: "e", ShowPath: true})
	assert.Contains(t, out, "(start) --e--> loop --a--> x --b--> y")
}

func TestRenderFeedback_PanicsWithoutCounterexamples(t *testing.T) {
	assert.Panics(t, func() {
		RenderFeedback(&Counterexamples{}, nil, FeedbackOptions{})
	})
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("TEXT"))
	assert.Equal(t, FormatHTML, ParseFormat("html"))
	assert.Equal(t, FormatHTML, ParseFormat(""))
}
