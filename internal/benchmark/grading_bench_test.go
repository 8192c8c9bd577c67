package benchmark

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/grading"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/testutil"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func BenchmarkCheckDFA_Length10(b *testing.B) {
	sub := testutil.MustDFA(b, testutil.ContainsDFA("001"))
	ref := testutil.MustDFA(b, testutil.ContainsDFA("000"))
	opts := grading.CheckOptions{MaxLength: 10, MaxCount: 3}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = grading.CheckDFA(context.Background(), sub, ref, opts)
	}
}

func BenchmarkCheckDFA_Equivalent(b *testing.B) {
	sub := testutil.MustDFA(b, testutil.ContainsDFA("0110"))
	ref := testutil.MustDFA(b, testutil.Rename(testutil.ContainsDFA("0110"), "p"))
	opts := grading.CheckOptions{MaxLength: 12, MaxCount: 3}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = grading.CheckDFA(context.Background(), sub, ref, opts)
	}
}

func BenchmarkPartialCredit(b *testing.B) {
	sub := testutil.MustDFA(b, testutil.ContainsDFA("0101"))
	ref := testutil.MustDFA(b, testutil.ContainsDFA("0110"))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = grading.PartialCredit(sub, ref)
	}
}

func BenchmarkGrade_Incorrect(b *testing.B) {
	ref := testutil.ContainsDFA("000")
	c, err := grading.Compile(grading.Question{
		ID:        "bench",
		Kind:      grading.KindDFA,
		Alphabet:  "01",
		Reference: grading.Reference{Kind: grading.KindDFA, Automaton: &ref},
	})
	if err != nil {
		b.Fatal(err)
	}
	sub := testutil.ContainsDFA("001")
	g := grading.NewGrader(grading.Config{Seed: 1}, quietLogger)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.Grade(context.Background(), c, grading.Answer{Submission: &sub}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGrade_Regex(b *testing.B) {
	c, err := grading.Compile(grading.Question{
		ID:        "bench-regex",
		Kind:      grading.KindRegex,
		Alphabet:  "ab",
		Reference: grading.Reference{Regex: "(a|b)*ab"},
	})
	if err != nil {
		b.Fatal(err)
	}
	answer := "(a|b)*a(b|a)"
	g := grading.NewGrader(grading.Config{Seed: 1}, quietLogger)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.Grade(context.Background(), c, grading.Answer{Regex: &answer}); err != nil {
			b.Fatal(err)
		}
	}
}
