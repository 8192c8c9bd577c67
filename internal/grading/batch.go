package grading

import (
	"cmp"
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"
	"time"
)

var (
	ErrEmptyBatch      = errors.New("grading: empty batch")
	ErrAllGradesFailed = errors.New("grading: every item in the batch failed")
)

// Batch statuses.
const (
	BatchSuccess = "success"
	BatchPartial = "partial"
	BatchError   = "error"
)

// BatchItem is one answer to grade. A nil Question marks an item the caller
// could not resolve; Err then says why.
type BatchItem struct {
	Question *Compiled
	Answer   Answer
	Err      error
}

// ItemError describes a batch item that could not be graded.
type ItemError struct {
	Index      int    `json:"index"`
	QuestionID string `json:"question_id,omitempty"`
	Error      string `json:"error"`
}

// BatchResult is the merged outcome of a batch. Results is aligned with the
// input items; failed items leave a nil entry.
type BatchResult struct {
	Status  string      `json:"status"`
	Results []*Result   `json:"results"`
	Score   float64     `json:"score"`
	TookMs  int64       `json:"took_ms"`
	Errors  []ItemError `json:"errors,omitempty"`
}

type itemResult struct {
	index int
	res   *Result
	err   error
}

// GradeBatch grades items concurrently with at most parallelism graders in
// flight. Zero parallelism uses GOMAXPROCS. Score is the weighted score of
// the items that were graded. When every item fails the partial result is
// returned with ErrAllGradesFailed.
func (g *Grader) GradeBatch(ctx context.Context, items []BatchItem, parallelism int) (*BatchResult, error) {
	start := time.Now()
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	out := &BatchResult{Results: make([]*Result, len(items))}
	for _, r := range g.fanOut(ctx, items, parallelism) {
		if r.err != nil {
			ie := ItemError{Index: r.index, Error: r.err.Error()}
			if q := items[r.index].Question; q != nil {
				ie.QuestionID = q.Question.ID
			}
			out.Errors = append(out.Errors, ie)
			g.logger.Warn("batch item failed", "index", r.index, "error", r.err)
			continue
		}
		out.Results[r.index] = r.res
	}
	slices.SortFunc(out.Errors, func(a, b ItemError) int { return cmp.Compare(a.Index, b.Index) })

	graded := make([]*Result, 0, len(items))
	for _, r := range out.Results {
		if r != nil {
			graded = append(graded, r)
		}
	}
	out.Score = WeightedScore(graded...)
	out.TookMs = time.Since(start).Milliseconds()

	switch {
	case len(graded) == 0:
		out.Status = BatchError
		return out, ErrAllGradesFailed
	case len(out.Errors) > 0:
		out.Status = BatchPartial
	default:
		out.Status = BatchSuccess
	}
	return out, nil
}

func (g *Grader) fanOut(ctx context.Context, items []BatchItem, parallelism int) []itemResult {
	results := make([]itemResult, 0, len(items))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, parallelism)

	for i, item := range items {
		if item.Question == nil {
			err := item.Err
			if err == nil {
				err = errors.New("no question")
			}
			mu.Lock()
			results = append(results, itemResult{index: i, err: err})
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()
			var (
				res *Result
				err error
			)
			select {
			case sem <- struct{}{}:
				if err = ctx.Err(); err == nil {
					res, err = g.Grade(ctx, item.Question, item.Answer)
				}
				<-sem
			case <-ctx.Done():
				err = ctx.Err()
			}
			mu.Lock()
			results = append(results, itemResult{index: i, res: res, err: err})
			mu.Unlock()
		}(i, item)
	}

	wg.Wait()
	return results
}
