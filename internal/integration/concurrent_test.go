package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/grading"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/server"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/testutil"
)

func TestConcurrentGrading(t *testing.T) {
	ref := testutil.ContainsDFA("010")
	bank := server.NewQuestionBank([]grading.Question{{
		ID:                 "contains-010",
		Kind:               grading.KindDFA,
		Alphabet:           "01",
		MaxLengthToCheck:   6,
		MaxCounterexamples: 2,
		Reference:          grading.Reference{Kind: grading.KindDFA, Automaton: &ref},
	}}, nil)
	grader := grading.NewGrader(grading.Config{Seed: 3}, nil)

	c, err := bank.Get("contains-010")
	require.NoError(t, err)

	want := map[string]bool{"010": true, "011": false, "000": false}
	var wg sync.WaitGroup
	errs := make(chan error, 60)

	// Graders share the compiled question; results must not depend on
	// interleaving.
	for i := 0; i < 60; i++ {
		pattern := []string{"010", "011", "000"}[i%3]
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := testutil.ContainsDFA(pattern)
			res, err := grader.Grade(context.Background(), c, grading.Answer{Submission: &sub})
			if err != nil {
				errs <- err
				return
			}
			if res.Correct != want[pattern] {
				t.Errorf("pattern %s: correct = %v, want %v", pattern, res.Correct, want[pattern])
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("grade error: %v", err)
	}
}

func TestConcurrentBankMutation(t *testing.T) {
	bank := server.NewQuestionBank(nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		id := string(rune('a' + i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref := testutil.ContainsDFA("1")
			_, err := bank.Create(grading.Question{
				ID:        id,
				Kind:      grading.KindDFA,
				Alphabet:  "01",
				Reference: grading.Reference{Kind: grading.KindDFA, Automaton: &ref},
			})
			assert.NoError(t, err)
			_ = bank.List()
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, bank.Len())
}
