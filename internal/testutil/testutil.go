// Package testutil holds automaton fixtures shared by tests across packages.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/validate"
)

// WithTempDir creates a temporary directory, calls fn with its path,
// and cleans up afterwards.
func WithTempDir(t *testing.T, fn func(dir string)) {
	t.Helper()
	dir := t.TempDir()
	fn(dir)
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	return path
}

// ContainsDFA returns a complete DFA submission over {0,1} accepting the
// binary strings that contain pattern. States are named q0..qN where qi
// means the last i symbols read match the first i of pattern.
func ContainsDFA(pattern string) validate.Submission {
	m := len(pattern)
	sub := validate.Submission{
		InputSymbols: []string{"0", "1"},
		Transitions:  make(map[string]map[string][]string),
		InitialState: []string{"q0"},
		FinalStates:  []string{fmt.Sprintf("q%d", m)},
	}
	for i := 0; i <= m; i++ {
		name := fmt.Sprintf("q%d", i)
		sub.States = append(sub.States, name)
		row := make(map[string][]string, 2)
		for _, c := range "01" {
			next := m
			if i < m {
				next = overlap(pattern, pattern[:i]+string(c))
			}
			row[string(c)] = []string{fmt.Sprintf("q%d", next)}
		}
		sub.Transitions[name] = row
	}
	return sub
}

// overlap returns the length of the longest prefix of pattern that is a
// suffix of s.
func overlap(pattern, s string) int {
	for k := min(len(pattern), len(s)); k > 0; k-- {
		if strings.HasSuffix(s, pattern[:k]) {
			return k
		}
	}
	return 0
}

// EvenZerosDFA accepts binary strings with an even number of zeros.
func EvenZerosDFA() validate.Submission {
	return validate.Submission{
		States:       []string{"even", "odd"},
		InputSymbols: []string{"0", "1"},
		Transitions: map[string]map[string][]string{
			"even": {"0": {"odd"}, "1": {"even"}},
			"odd":  {"0": {"even"}, "1": {"odd"}},
		},
		InitialState: []string{"even"},
		FinalStates:  []string{"even"},
	}
}

// EndsWithABNFA accepts words over {a,b} ending in "ab". It uses the
// epsilon symbol "e" and two start states.
func EndsWithABNFA() validate.Submission {
	return validate.Submission{
		States:       []string{"s", "loop", "x", "y"},
		InputSymbols: []string{"a", "b", "e"},
		Transitions: map[string]map[string][]string{
			"s":    {"e": {"loop"}},
			"loop": {"a": {"loop", "x"}, "b": {"loop"}},
			"x":    {"b": {"y"}},
		},
		InitialState:  []string{"s", "loop"},
		FinalStates:   []string{"y"},
		EpsilonSymbol: "e",
	}
}

// Rename returns a copy of sub whose states are renamed with prefix.
func Rename(sub validate.Submission, prefix string) validate.Submission {
	name := func(s string) string { return prefix + s }
	names := func(ss []string) []string {
		out := make([]string, len(ss))
		for i, s := range ss {
			out[i] = name(s)
		}
		return out
	}
	out := sub
	out.States = names(sub.States)
	out.InitialState = names(sub.InitialState)
	out.FinalStates = names(sub.FinalStates)
	out.Transitions = make(map[string]map[string][]string, len(sub.Transitions))
	for from, row := range sub.Transitions {
		r := make(map[string][]string, len(row))
		for sym, to := range row {
			r[sym] = names(to)
		}
		out.Transitions[name(from)] = r
	}
	return out
}

// MustDFA validates sub as a DFA and fails the test on error.
func MustDFA(t testing.TB, sub validate.Submission) *automaton.DFA {
	t.Helper()
	d, err := validate.BuildDFA(sub, validate.Options{})
	if err != nil {
		t.Fatalf("BuildDFA: %v", err)
	}
	return d
}

// MustNFA validates sub as an NFA and fails the test on error.
func MustNFA(t testing.TB, sub validate.Submission) *automaton.NFA {
	t.Helper()
	n, err := validate.BuildNFA(sub, validate.Options{})
	if err != nil {
		t.Fatalf("BuildNFA: %v", err)
	}
	return n
}

// AllWords lists every word over alphabet of length at most maxLen in
// shortlex order.
func AllWords(alphabet []rune, maxLen int) []string {
	words := []string{""}
	layer := []string{""}
	for n := 1; n <= maxLen; n++ {
		var next []string
		for _, w := range layer {
			for _, r := range alphabet {
				next = append(next, w+string(r))
			}
		}
		words = append(words, next...)
		layer = next
	}
	return words
}
