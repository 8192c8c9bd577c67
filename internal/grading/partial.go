package grading

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
)

// MaxWordLimit is the longest word length the density estimator will count.
const MaxWordLimit = 32

var (
	ErrWordLimitTooHigh  = fmt.Errorf("word limit above %d", MaxWordLimit)
	ErrNegativeWordLimit = errors.New("word limit is negative")
)

// PartialCredit scores how close student's language is to reference's, in
// [0, 1]. The word limit defaults to twice the number of states of the
// minimized reference. References with more than MaxWordLimit/2 minimized
// states fail with ErrWordLimitTooHigh; use PartialCreditWithLimit for them.
func PartialCredit(student, reference automaton.Automaton) (float64, error) {
	ref := reference.Determinize().Minimize()
	return partialCredit(student.Determinize().Minimize(), ref, 2*ref.NumStates())
}

// PartialCreditWithLimit is PartialCredit with an explicit word limit. A
// limit above MaxWordLimit fails with ErrWordLimitTooHigh.
func PartialCreditWithLimit(student, reference automaton.Automaton, limit int) (float64, error) {
	return partialCredit(student.Determinize().Minimize(), reference.Determinize().Minimize(), limit)
}

// partialCredit averages, over lengths 0..limit, the number of words in the
// symmetric difference relative to the number of reference words of that
// length, and returns one minus the clamped average.
func partialCredit(student, reference *automaton.DFA, limit int) (float64, error) {
	if limit > MaxWordLimit {
		return 0, fmt.Errorf("%w: %d", ErrWordLimitTooHigh, limit)
	}
	if limit < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeWordLimit, limit)
	}
	diff, err := automaton.SymmetricDifference(student, reference)
	if err != nil {
		if errors.Is(err, automaton.ErrAlphabetMismatch) {
			return 0, fmt.Errorf("%w: %w", ErrInputSymbolMismatch, err)
		}
		return 0, err
	}

	diffCounts := diff.CountWordsUpTo(limit)
	refCounts := reference.CountWordsUpTo(limit)
	one := big.NewInt(1)
	sum := new(big.Rat)
	for n := 0; n <= limit; n++ {
		denom := refCounts[n]
		if denom.Cmp(one) < 0 {
			denom = one
		}
		sum.Add(sum, new(big.Rat).SetFrac(diffCounts[n], denom))
	}
	avg := sum.Quo(sum, new(big.Rat).SetInt64(int64(limit+1)))
	if avg.Cmp(big.NewRat(1, 1)) > 0 {
		return 0, nil
	}
	f, _ := avg.Float64()
	return 1 - f, nil
}
