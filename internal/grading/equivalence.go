// Package grading decides whether a submitted automaton matches a reference,
// finds distinguishing words, scores near misses and renders feedback.
package grading

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
)

var (
	ErrInputSymbolMismatch = errors.New("submission and reference use different input symbols")
	ErrEquivalent          = errors.New("automata are equivalent")
)

// Counterexample is a single word on which two automata disagree.
// FalsePositive is true when the submission accepts the word and the
// reference rejects it.
type Counterexample struct {
	Word          string `json:"word"`
	FalsePositive bool   `json:"false_positive"`
}

// Counterexamples groups disagreeing words by direction. Within each list
// words are in shortlex order.
type Counterexamples struct {
	FalsePositives []string `json:"false_positives"`
	FalseNegatives []string `json:"false_negatives"`
	// Truncated is set when the scan stopped on its word budget.
	Truncated bool `json:"truncated,omitempty"`
}

// Empty reports whether neither list holds a word.
func (c *Counterexamples) Empty() bool {
	return c == nil || len(c.FalsePositives) == 0 && len(c.FalseNegatives) == 0
}

// Add files a single counterexample under its direction.
func (c *Counterexamples) Add(cx Counterexample) {
	if cx.FalsePositive {
		c.FalsePositives = append(c.FalsePositives, cx.Word)
	} else {
		c.FalseNegatives = append(c.FalseNegatives, cx.Word)
	}
}

// CheckOptions bounds the exhaustive scan.
type CheckOptions struct {
	// MaxLength is the longest word examined.
	MaxLength int
	// MaxCount caps each list. Zero or less means no cap.
	MaxCount int
	// MaxWordsScanned caps the total number of words examined; zero selects
	// DefaultMaxWordsScanned.
	MaxWordsScanned int
}

func checkAlphabets(a, b automaton.Automaton) error {
	if !slices.Equal(a.Alphabet(), b.Alphabet()) {
		return fmt.Errorf("%w: %q vs %q", ErrInputSymbolMismatch,
			string(a.Alphabet()), string(b.Alphabet()))
	}
	return nil
}

// CheckDFA compares submission and reference on every word of length at most
// opts.MaxLength, in shortlex order, and collects the words they disagree on.
//
// When no word up to that length distinguishes them, CheckDFA returns
// ErrEquivalent if the languages are equal, and empty lists otherwise.
// Running out of scan budget is not an error: the lists found so far are
// returned with Truncated set.
func CheckDFA(ctx context.Context, submission, reference automaton.Automaton, opts CheckOptions) (*Counterexamples, error) {
	if err := checkAlphabets(submission, reference); err != nil {
		return nil, err
	}
	sub := submission.Determinize().ToComplete()
	ref := reference.Determinize().ToComplete()
	alphabet := sub.Alphabet()

	budget := NewScanBudget(ctx, opts.MaxWordsScanned)
	out := &Counterexamples{}
	full := func() bool {
		return opts.MaxCount > 0 &&
			len(out.FalsePositives) >= opts.MaxCount &&
			len(out.FalseNegatives) >= opts.MaxCount
	}

	word := make([]rune, 0, max(opts.MaxLength, 0))
	var stop error
	// walk visits all words of exactly length n extending word, in
	// lexicographic order.
	var walk func(n int, s, r automaton.State) bool
	walk = func(n int, s, r automaton.State) bool {
		if len(word) == n {
			if stop = budget.Spend(); stop != nil {
				return false
			}
			sa, ra := sub.IsAccept(s), ref.IsAccept(r)
			switch {
			case sa && !ra && (opts.MaxCount <= 0 || len(out.FalsePositives) < opts.MaxCount):
				out.FalsePositives = append(out.FalsePositives, string(word))
			case ra && !sa && (opts.MaxCount <= 0 || len(out.FalseNegatives) < opts.MaxCount):
				out.FalseNegatives = append(out.FalseNegatives, string(word))
			}
			return !full()
		}
		for _, c := range alphabet {
			word = append(word, c)
			ok := walk(n, sub.Step(s, c), ref.Step(r, c))
			word = word[:len(word)-1]
			if !ok {
				return false
			}
		}
		return true
	}
	for n := 0; n <= opts.MaxLength; n++ {
		if !walk(n, sub.Start(), ref.Start()) {
			break
		}
	}

	switch {
	case errors.Is(stop, ErrScanBudgetExceeded):
		out.Truncated = true
	case stop != nil:
		return nil, stop
	}

	if out.Empty() && !out.Truncated {
		equal, err := automaton.Equal(sub, ref)
		if err != nil {
			return nil, err
		}
		if equal {
			return nil, ErrEquivalent
		}
	}
	return out, nil
}

// MinimumCounterexample returns a shortest word on which submission and
// reference disagree, or nil when their languages are equal.
//
// If the submission's language is a strict subset of the reference's the
// word is a false negative drawn from reference minus submission; otherwise
// it is a false positive drawn from submission minus reference. Among words
// of the minimum length the choice is uniform under rng.
func MinimumCounterexample(submission, reference automaton.Automaton, rng *rand.Rand) (*Counterexample, error) {
	if err := checkAlphabets(submission, reference); err != nil {
		return nil, err
	}
	equal, err := automaton.Equal(submission, reference)
	if err != nil {
		return nil, err
	}
	if equal {
		return nil, nil
	}

	subset, err := automaton.IsSubset(submission, reference)
	if err != nil {
		return nil, err
	}
	var diff *automaton.DFA
	if subset {
		diff, err = automaton.Difference(reference, submission)
	} else {
		diff, err = automaton.Difference(submission, reference)
	}
	if err != nil {
		return nil, err
	}

	n, err := diff.MinimumWordLength()
	if err != nil {
		return nil, fmt.Errorf("difference of unequal automata: %w", err)
	}
	word, err := diff.RandomWord(n, rng)
	if err != nil {
		return nil, err
	}
	return &Counterexample{Word: word, FalsePositive: !subset}, nil
}

// FindOptions configures FindCounterexamples.
type FindOptions struct {
	CheckOptions
	// Rand drives the choice among shortest counterexamples. Nil uses a
	// fixed seed.
	Rand *rand.Rand
}

// FindCounterexamples is the entry point for counterexample search. It runs
// the bounded exhaustive scan and, if that finds nothing, falls back to the
// minimum counterexample, so a witness is always returned for unequal
// automata. It returns ErrEquivalent when the languages are equal.
func FindCounterexamples(ctx context.Context, submission, reference automaton.Automaton, opts FindOptions) (*Counterexamples, error) {
	cx, err := CheckDFA(ctx, submission, reference, opts.CheckOptions)
	if err != nil {
		return nil, err
	}
	if !cx.Empty() {
		return cx, nil
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	one, err := MinimumCounterexample(submission, reference, rng)
	if err != nil {
		return nil, err
	}
	if one == nil {
		return nil, ErrEquivalent
	}
	cx.Add(*one)
	return cx, nil
}
