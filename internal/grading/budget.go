package grading

import (
	"context"
	"errors"
)

var ErrScanBudgetExceeded = errors.New("counterexample scan budget exceeded")

// DefaultMaxWordsScanned bounds the exhaustive scan when no budget is given.
const DefaultMaxWordsScanned = 1 << 20

// ScanBudget tracks how many words an exhaustive scan has examined and
// stops it when the budget runs out or the context is done.
type ScanBudget struct {
	ctx context.Context

	MaxWordsScanned int
	WordsScanned    int

	// checkCounter amortizes context checks.
	checkCounter  int
	checkInterval int

	Canceled      bool
	LimitExceeded bool
}

// NewScanBudget creates a budget bound to ctx. A non-positive maxWords
// selects DefaultMaxWordsScanned.
func NewScanBudget(ctx context.Context, maxWords int) *ScanBudget {
	if maxWords <= 0 {
		maxWords = DefaultMaxWordsScanned
	}
	return &ScanBudget{
		ctx:             ctx,
		MaxWordsScanned: maxWords,
		checkInterval:   128,
	}
}

// Spend records one scanned word and reports whether scanning may go on.
func (b *ScanBudget) Spend() error {
	if b.WordsScanned >= b.MaxWordsScanned {
		b.LimitExceeded = true
		return ErrScanBudgetExceeded
	}
	b.WordsScanned++

	b.checkCounter++
	if b.checkCounter%b.checkInterval == 0 {
		if err := b.ctx.Err(); err != nil {
			b.Canceled = true
			return err
		}
	}
	return nil
}
