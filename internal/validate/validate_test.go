package validate_test

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/testutil"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/validate"
)

func asValidationError(t *testing.T, err error) *validate.Error {
	t.Helper()
	var verr *validate.Error
	require.True(t, errors.As(err, &verr), "expected *validate.Error, got %v", err)
	return verr
}

func TestValidateStates(t *testing.T) {
	out, err := validate.ValidateStates([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)

	_, err = validate.ValidateStates([]string{"a", "b", "a", "c", "b", "a"})
	require.ErrorIs(t, err, validate.ErrDuplicateStates)
	assert.Equal(t, []string{"a", "b"}, asValidationError(t, err).States)

	_, err = validate.ValidateStates([]string{"a", "", "a"})
	assert.ErrorIs(t, err, validate.ErrEmptyStateName, "empty names are reported before duplicates")
}

func TestValidateInitialState(t *testing.T) {
	_, err := validate.ValidateInitialState(nil, false)
	assert.ErrorIs(t, err, validate.ErrNoStartState)

	out, err := validate.ValidateInitialState([]string{"q0", "q0"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"q0"}, out)

	_, err = validate.ValidateInitialState([]string{"q0", "q1"}, false)
	require.ErrorIs(t, err, validate.ErrMultipleStartStates)
	assert.Equal(t, []validate.Transition{{To: "q0"}, {To: "q1"}}, asValidationError(t, err).Transitions)
	assert.Contains(t, err.Error(), "start --> q0")

	out, err = validate.ValidateInitialState([]string{"q0", "q1"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"q0", "q1"}, out)
}

func TestCompressMultipleStartStates(t *testing.T) {
	states := []string{"q0", "q1"}

	out, start, moves := validate.CompressMultipleStartStates(states, []string{"q1"})
	assert.Equal(t, states, out)
	assert.Equal(t, "q1", start)
	assert.Empty(t, moves)

	out, start, moves = validate.CompressMultipleStartStates(states, []string{"q0", "q1"})
	assert.Equal(t, "", start)
	assert.Equal(t, []string{"q0", "q1", ""}, out)
	assert.Equal(t, []validate.Transition{
		{From: "", Symbol: automaton.EpsilonKey, To: "q0"},
		{From: "", Symbol: automaton.EpsilonKey, To: "q1"},
	}, moves)
	assert.Equal(t, []string{"q0", "q1"}, states, "input must not be modified")
}

func TestValidateFinalStates(t *testing.T) {
	_, err := validate.ValidateFinalStates(nil)
	assert.ErrorIs(t, err, validate.ErrNoAcceptStates)

	out, err := validate.ValidateFinalStates([]string{"f", "f"})
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, out)
}

func TestValidateKnownStates(t *testing.T) {
	err := validate.ValidateKnownStates(
		[]string{"a", "b"},
		[]string{"a"},
		[]string{"z"},
		[]validate.Transition{{From: "a", Symbol: "0", To: "y"}, {From: "x", Symbol: "0", To: "b"}},
	)
	require.ErrorIs(t, err, validate.ErrUnknownStates)
	assert.Equal(t, []string{"z", "y", "x"}, asValidationError(t, err).States)
}

func TestValidateTransitionAlphabet(t *testing.T) {
	ts := []validate.Transition{
		{From: "a", Symbol: "0", To: "a"},
		{From: "a", Symbol: "2", To: "b"},
		{From: "b", Symbol: "", To: "a"},
	}
	err := validate.ValidateTransitionAlphabet(ts, []string{"0", "1"})
	require.ErrorIs(t, err, validate.ErrInvalidAlphabetTransitions)
	assert.Equal(t, ts[1:], asValidationError(t, err).Transitions)

	assert.NoError(t, validate.ValidateTransitionAlphabet(ts[:1], []string{"0", "1"}))
}

func TestValidateNoDuplicateTransitions(t *testing.T) {
	repeated := []validate.Transition{
		{From: "a", Symbol: "0", To: "b"},
		{From: "a", Symbol: "0", To: "b"},
	}
	assert.NoError(t, validate.ValidateNoDuplicateTransitions(repeated))

	conflicting := append(repeated, validate.Transition{From: "a", Symbol: "0", To: "c"},
		validate.Transition{From: "a", Symbol: "1", To: "c"})
	err := validate.ValidateNoDuplicateTransitions(conflicting)
	require.ErrorIs(t, err, validate.ErrDuplicateTransitions)
	assert.Equal(t, []validate.Transition{
		{From: "a", Symbol: "0", To: "b"},
		{From: "a", Symbol: "0", To: "c"},
	}, asValidationError(t, err).Transitions)
}

func TestValidateNoRedundantTransitions(t *testing.T) {
	ts := []validate.Transition{
		{From: "a", Symbol: "0", To: "b"},
		{From: "a", Symbol: "0", To: "c"},
	}
	assert.NoError(t, validate.ValidateNoRedundantTransitions(ts))

	err := validate.ValidateNoRedundantTransitions(append(ts, ts[1], ts[1]))
	require.ErrorIs(t, err, validate.ErrRedundantTransitions)
	assert.Equal(t, ts[1:], asValidationError(t, err).Transitions)
}

func TestValidateTransitionCompleteness_Missing(t *testing.T) {
	states := []string{"a", "b"}
	ts := []validate.Transition{
		{From: "a", Symbol: "0", To: "b"},
		{From: "a", Symbol: "1", To: "a"},
		{From: "b", Symbol: "0", To: "a"},
	}
	_, err := validate.ValidateTransitionCompleteness(states, ts, []string{"0", "1"}, false)
	require.ErrorIs(t, err, validate.ErrMissingTransitions)
	assert.Equal(t, []validate.Transition{{From: "b", Symbol: "1"}}, asValidationError(t, err).Transitions)
}

func TestValidateTransitionCompleteness_MissingPayloadProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []string{"a", "b", "c"}
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(5)
		states := make([]string, n)
		for i := range states {
			states[i] = fmt.Sprintf("s%d", i)
		}
		var ts []validate.Transition
		incomplete := map[string]bool{}
		for _, s := range states {
			for _, a := range alphabet {
				if rng.Intn(4) == 0 {
					incomplete[s] = true
					continue
				}
				ts = append(ts, validate.Transition{From: s, Symbol: a, To: states[rng.Intn(n)]})
			}
		}

		_, err := validate.ValidateTransitionCompleteness(states, ts, alphabet, false)
		if len(incomplete) == 0 {
			assert.NoError(t, err)
			continue
		}
		require.ErrorIs(t, err, validate.ErrMissingTransitions)
		got := map[string]bool{}
		for _, m := range asValidationError(t, err).Transitions {
			assert.Empty(t, m.To)
			got[m.From] = true
		}
		assert.Equal(t, incomplete, got, "trial %d", trial)
	}
}

func TestValidateTransitionCompleteness_Dump(t *testing.T) {
	states := []string{"a", "dump"}
	ts := []validate.Transition{
		{From: "a", Symbol: "0", To: "dump"},
		{From: "dump", Symbol: "0", To: "a"},
		{From: "dump", Symbol: "1", To: "a"},
	}
	c, err := validate.ValidateTransitionCompleteness(states, ts, []string{"0", "1"}, true)
	require.NoError(t, err)
	assert.Equal(t, "dump_", c.DumpState)
	assert.Equal(t, []string{"a", "dump", "dump_"}, c.States)
	assert.Contains(t, c.Transitions, validate.Transition{From: "a", Symbol: "1", To: "dump_"})
	assert.Contains(t, c.Transitions, validate.Transition{From: "dump_", Symbol: "0", To: "dump_"})
	assert.Contains(t, c.Transitions, validate.Transition{From: "dump_", Symbol: "1", To: "dump_"})
	assert.Len(t, ts, 3, "input must not be modified")
}

func TestValidateTransitionCompleteness_NoDumpWhenComplete(t *testing.T) {
	ts := []validate.Transition{{From: "a", Symbol: "0", To: "a"}}
	c, err := validate.ValidateTransitionCompleteness([]string{"a"}, ts, []string{"0"}, true)
	require.NoError(t, err)
	assert.Empty(t, c.DumpState)
	assert.Equal(t, []string{"a"}, c.States)
}

func TestConvertDFA(t *testing.T) {
	def, err := validate.ConvertDFA(testutil.EvenZerosDFA(), validate.Options{})
	require.NoError(t, err)
	assert.Equal(t, "even", def.InitialState)
	assert.Equal(t, []string{"0", "1"}, def.InputSymbols)
	assert.Equal(t, "odd", def.Transitions["even"]["0"])

	d, err := automaton.NewDFA(def)
	require.NoError(t, err)
	assert.True(t, d.Accepts("1001"))
	assert.False(t, d.Accepts("10"))
}

func TestConvertDFA_Errors(t *testing.T) {
	base := testutil.EvenZerosDFA

	tests := []struct {
		name   string
		mutate func(*validate.Submission)
		want   error
	}{
		{"duplicate states", func(s *validate.Submission) { s.States = append(s.States, "odd") }, validate.ErrDuplicateStates},
		{"empty state", func(s *validate.Submission) { s.States = append(s.States, "") }, validate.ErrEmptyStateName},
		{"no start", func(s *validate.Submission) { s.InitialState = nil }, validate.ErrNoStartState},
		{"two starts", func(s *validate.Submission) { s.InitialState = []string{"even", "odd"} }, validate.ErrMultipleStartStates},
		{"no accept", func(s *validate.Submission) { s.FinalStates = nil }, validate.ErrNoAcceptStates},
		{"unknown", func(s *validate.Submission) { s.FinalStates = []string{"ghost"} }, validate.ErrUnknownStates},
		{"bad symbol", func(s *validate.Submission) { s.Transitions["odd"]["2"] = []string{"odd"} }, validate.ErrInvalidAlphabetTransitions},
		{"conflict", func(s *validate.Submission) { s.Transitions["odd"]["1"] = []string{"odd", "even"} }, validate.ErrDuplicateTransitions},
		{"missing", func(s *validate.Submission) { delete(s.Transitions["odd"], "1") }, validate.ErrMissingTransitions},
		{"unreachable", func(s *validate.Submission) {
			s.States = append(s.States, "island")
			s.Transitions["island"] = map[string][]string{"0": {"island"}, "1": {"even"}}
		}, validate.ErrUnreachableStates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := base()
			tt.mutate(&sub)
			_, err := validate.ConvertDFA(sub, validate.Options{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConvertDFA_AllowNoAcceptStates(t *testing.T) {
	sub := testutil.EvenZerosDFA()
	sub.FinalStates = nil
	def, err := validate.ConvertDFA(sub, validate.Options{AllowNoAcceptStates: true})
	require.NoError(t, err)
	assert.Empty(t, def.FinalStates)
}

func TestConvertDFA_DumpState(t *testing.T) {
	sub := validate.Submission{
		States:           []string{"q0", "q1"},
		InputSymbols:     []string{"a", "b"},
		Transitions:      map[string]map[string][]string{"q0": {"a": {"q1"}}},
		InitialState:     []string{"q0"},
		FinalStates:      []string{"q1"},
		IncludeDumpState: true,
	}
	def, err := validate.ConvertDFA(sub, validate.Options{})
	require.NoError(t, err)
	require.Len(t, def.States, 3)
	dump := def.States[2]
	for _, s := range def.States {
		assert.Len(t, def.Transitions[s], 2, "state %s should be complete", s)
	}
	assert.Equal(t, dump, def.Transitions[dump]["a"])
	assert.Equal(t, dump, def.Transitions[dump]["b"])

	d, err := automaton.NewDFA(def)
	require.NoError(t, err)
	assert.True(t, d.IsComplete())
	assert.True(t, d.Accepts("a"))
	assert.False(t, d.Accepts("ab"))

	assert.Empty(t, sub.Transitions["q1"], "submission must not be modified")
}

func TestConvertDFA_DumpStateNotReachedIsAllowed(t *testing.T) {
	sub := testutil.EvenZerosDFA()
	sub.IncludeDumpState = true
	def, err := validate.ConvertDFA(sub, validate.Options{})
	require.NoError(t, err)
	assert.Len(t, def.States, 2, "complete automata get no dump state")
}

func TestConvertDFA_RoundTrip(t *testing.T) {
	for _, pattern := range []string{"0", "000", "0110"} {
		def, err := validate.ConvertDFA(testutil.ContainsDFA(pattern), validate.Options{})
		require.NoError(t, err)

		again, err := validate.ConvertDFA(validate.SubmissionFromDFA(def), validate.Options{})
		require.NoError(t, err)
		assert.Equal(t, def, again, "pattern %q", pattern)
	}
}

func TestConvertNFA_CompressesStartStates(t *testing.T) {
	sub := testutil.EndsWithABNFA()
	def, err := validate.ConvertNFA(sub, validate.Options{})
	require.NoError(t, err)

	assert.Equal(t, "", def.InitialState)
	assert.ElementsMatch(t, []string{"s", "loop"}, def.Transitions[""][automaton.EpsilonKey])
	assert.Equal(t, []string{"a", "b"}, def.InputSymbols)
	assert.NotContains(t, def.Transitions["s"], "e")
	assert.Equal(t, []string{"loop"}, def.Transitions["s"][automaton.EpsilonKey])

	n, err := automaton.NewNFA(def)
	require.NoError(t, err)
	for _, w := range testutil.AllWords([]rune("ab"), 6) {
		want := len(w) >= 2 && w[len(w)-2:] == "ab"
		assert.Equal(t, want, n.Accepts(w), "word %q", w)
	}
	assert.Equal(t, []string{"s", "loop"}, sub.InitialState, "submission must not be modified")
}

func TestConvertNFA_SingleStartState(t *testing.T) {
	sub := testutil.EndsWithABNFA()
	sub.InitialState = []string{"s"}
	def, err := validate.ConvertNFA(sub, validate.Options{})
	require.NoError(t, err)
	assert.Equal(t, "s", def.InitialState)
	assert.NotContains(t, def.States, "")
}

func TestConvertNFA_Errors(t *testing.T) {
	sub := testutil.EndsWithABNFA()
	sub.Transitions["x"]["b"] = []string{"y", "y"}
	_, err := validate.ConvertNFA(sub, validate.Options{})
	assert.ErrorIs(t, err, validate.ErrRedundantTransitions)

	sub = testutil.EndsWithABNFA()
	sub.EpsilonSymbol = ""
	_, err = validate.ConvertNFA(sub, validate.Options{})
	assert.NoError(t, err, "without an epsilon symbol, e is an ordinary symbol")

	sub = testutil.EndsWithABNFA()
	sub.Transitions["x"][""] = []string{"y"}
	_, err = validate.ConvertNFA(sub, validate.Options{})
	assert.ErrorIs(t, err, validate.ErrInvalidAlphabetTransitions)

	sub = testutil.EndsWithABNFA()
	sub.States = append(sub.States, "z")
	_, err = validate.ConvertNFA(sub, validate.Options{})
	assert.ErrorIs(t, err, validate.ErrUnreachableStates)
}

func TestConvertNFA_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		initial []string
	}{
		{"single start", []string{"s"}},
		{"two starts", []string{"s", "loop"}},
		{"start without epsilon use", []string{"s", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := testutil.EndsWithABNFA()
			sub.InitialState = tt.initial
			def, err := validate.ConvertNFA(sub, validate.Options{})
			require.NoError(t, err)

			back := validate.SubmissionFromNFA(def, "e")
			assert.ElementsMatch(t, tt.initial, back.InitialState)
			assert.NotContains(t, back.States, "")

			again, err := validate.ConvertNFA(back, validate.Options{})
			require.NoError(t, err)
			assert.Equal(t, def.States, again.States)
			assert.Equal(t, def.InputSymbols, again.InputSymbols)
			assert.Equal(t, def.InitialState, again.InitialState)
			for _, s := range def.States {
				for sym, to := range def.Transitions[s] {
					assert.ElementsMatch(t, to, again.Transitions[s][sym])
				}
			}
		})
	}
}

func TestBuild(t *testing.T) {
	a, err := validate.Build(automaton.KindDFA, testutil.EvenZerosDFA(), validate.Options{})
	require.NoError(t, err)
	assert.Equal(t, automaton.KindDFA, a.Kind())

	a, err = validate.Build(automaton.KindNFA, testutil.EndsWithABNFA(), validate.Options{})
	require.NoError(t, err)
	assert.Equal(t, automaton.KindNFA, a.Kind())
	assert.True(t, a.Accepts("bab"))
}

func TestGraphSubmission(t *testing.T) {
	g := validate.Graph{
		Nodes: []validate.Node{{Text: " q0 "}, {Text: "q1", IsAcceptState: true}},
		Links: []validate.Link{
			{Type: validate.LinkStart, Node: 0},
			{Type: validate.LinkEdge, NodeA: 0, NodeB: 1, Text: "0, 1"},
			{Type: validate.LinkSelf, Node: 1, Text: "0,1"},
		},
	}
	sub, err := g.Submission([]string{"0", "1"}, "", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"q0", "q1"}, sub.States)
	assert.Equal(t, []string{"q0"}, sub.InitialState)
	assert.Equal(t, []string{"q1"}, sub.FinalStates)
	assert.Equal(t, []string{"q1"}, sub.Transitions["q0"]["1"])

	d, err := validate.BuildDFA(sub, validate.Options{})
	require.NoError(t, err)
	assert.True(t, d.Accepts("10"))
	assert.False(t, d.Accepts(""))
}

func TestGraphSubmission_Malformed(t *testing.T) {
	g := validate.Graph{
		Nodes: []validate.Node{{Text: "q0"}},
		Links: []validate.Link{{Type: validate.LinkEdge, NodeA: 0, NodeB: 3}},
	}
	_, err := g.Submission(nil, "", false)
	assert.ErrorIs(t, err, validate.ErrMalformedGraph)

	g.Links = []validate.Link{{Type: "Arc"}}
	_, err = g.Submission(nil, "", false)
	assert.ErrorIs(t, err, validate.ErrMalformedGraph)
}

func TestGraphSubmission_EmptyLabelPiece(t *testing.T) {
	g := validate.Graph{
		Nodes: []validate.Node{{Text: "q0", IsAcceptState: true}},
		Links: []validate.Link{
			{Type: validate.LinkStart, Node: 0},
			{Type: validate.LinkSelf, Node: 0, Text: "0,,1"},
		},
	}
	sub, err := g.Submission([]string{"0", "1"}, "", false)
	require.NoError(t, err)
	_, err = validate.ConvertDFA(sub, validate.Options{})
	require.ErrorIs(t, err, validate.ErrInvalidAlphabetTransitions)
	assert.True(t, slices.ContainsFunc(asValidationError(t, err).Transitions, func(tr validate.Transition) bool {
		return tr.Symbol == ""
	}))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "MissingTransitions", validate.KindMissingTransitions.String())
	assert.Equal(t, "Kind(99)", validate.Kind(99).String())
	assert.False(t, errors.Is(validate.ErrNoStartState, validate.ErrNoAcceptStates))
}
