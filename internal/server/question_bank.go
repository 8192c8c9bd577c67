package server

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/grading"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrQuestionExists   = errors.New("question already exists")
)

// QuestionBank holds the compiled questions served by the API. Compiled
// questions are immutable; the bank only guards its map.
type QuestionBank struct {
	logger *slog.Logger

	mu        sync.RWMutex
	questions map[string]*grading.Compiled
}

// NewQuestionBank compiles and stores qs. Questions that fail to compile are
// logged and skipped.
func NewQuestionBank(qs []grading.Question, logger *slog.Logger) *QuestionBank {
	if logger == nil {
		logger = slog.Default()
	}
	b := &QuestionBank{
		logger:    logger,
		questions: make(map[string]*grading.Compiled, len(qs)),
	}
	for _, q := range qs {
		c, err := grading.Compile(q)
		if err != nil {
			b.logger.Error("failed to load question", "id", q.ID, "error", err)
			continue
		}
		b.questions[q.ID] = c
		b.logger.Info("question loaded",
			"id", q.ID,
			"kind", q.Kind,
			"reference_states", len(c.Reference.States()),
		)
	}
	return b
}

// Create compiles q and adds it to the bank.
func (b *QuestionBank) Create(q grading.Question) (*grading.Compiled, error) {
	if q.ID == "" {
		return nil, errors.New("question id is required")
	}
	c, err := grading.Compile(q)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.questions[q.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrQuestionExists, q.ID)
	}
	b.questions[q.ID] = c
	b.logger.Info("question created", "id", q.ID)
	return c, nil
}

// Delete removes a question.
func (b *QuestionBank) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.questions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	delete(b.questions, id)
	b.logger.Info("question deleted", "id", id)
	return nil
}

// Get returns a question by ID.
func (b *QuestionBank) Get(id string) (*grading.Compiled, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.questions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	return c, nil
}

// List returns all question IDs in sorted order.
func (b *QuestionBank) List() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.questions))
	for id := range b.questions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of questions.
func (b *QuestionBank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.questions)
}

// questionInfo is the public view of a question. The reference answer is
// never exposed.
func questionInfo(c *grading.Compiled) map[string]interface{} {
	q := c.Question
	return map[string]interface{}{
		"id":                  q.ID,
		"kind":                q.Kind,
		"alphabet":            q.Alphabet,
		"epsilon_symbol":      q.EpsilonSymbol,
		"max_length_to_check": q.MaxLengthToCheck,
		"max_states":          q.MaxStates,
		"weight":              q.Weight,
		"include_dump_state":  q.IncludeDumpState,
	}
}
