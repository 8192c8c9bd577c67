package grading

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/automaton"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/regex"
	"github.com/TheorieLearn/TheorieLearn-sub000/internal/validate"
)

// ErrNoAnswer is returned when an answer carries nothing to grade for the
// question's kind.
var ErrNoAnswer = errors.New("answer is empty")

// Answer is a student's response. Automaton questions read Submission or
// Graph; regex questions read Regex.
type Answer struct {
	Submission *validate.Submission `json:"submission,omitempty"`
	Graph      *validate.Graph      `json:"graph,omitempty"`
	Regex      *string              `json:"regex,omitempty"`
}

// StateName highlights one state in the diagram.
type StateName struct {
	Name string `json:"name"`
}

// TransitionRef highlights one transition in the diagram. A nil field is a
// missing endpoint or symbol.
type TransitionRef struct {
	StartState *string `json:"startState"`
	Char       *string `json:"char"`
	EndState   *string `json:"endState"`
}

// Feedback is the display payload of a graded attempt. Validation failures
// fill Message and the highlight lists; incorrect answers fill FeedbackHTML.
type Feedback struct {
	Message            string          `json:"message,omitempty"`
	StateNames         []StateName     `json:"stateNames"`
	Transitions        []TransitionRef `json:"transitions"`
	DisplayStates      bool            `json:"displayStates"`
	DisplayTransitions bool            `json:"displayTransitions"`
	FeedbackHTML       string          `json:"feedback_html,omitempty"`
}

// Result is the outcome of grading one answer.
type Result struct {
	AttemptID  string    `json:"attempt_id"`
	QuestionID string    `json:"question_id,omitempty"`
	Score      float64   `json:"score"`
	Weight     int       `json:"weight"`
	Correct    bool      `json:"correct"`
	Feedback   *Feedback `json:"feedback,omitempty"`
}

// WeightedScore averages the scores of results by weight. It returns 0 when
// the total weight is 0.
func WeightedScore(results ...*Result) float64 {
	var sum, total float64
	for _, r := range results {
		sum += r.Score * float64(r.Weight)
		total += float64(r.Weight)
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// Config tunes a Grader.
type Config struct {
	// MaxWordsScanned bounds each exhaustive counterexample scan.
	MaxWordsScanned int
	// Seed fixes the random choice among shortest counterexamples. Zero
	// derives a seed from each attempt id.
	Seed int64
}

// Grader grades answers against compiled questions. It holds no per-request
// state and is safe for concurrent use.
type Grader struct {
	cfg    Config
	logger *slog.Logger
}

// NewGrader creates a Grader. A nil logger uses slog.Default().
func NewGrader(cfg Config, logger *slog.Logger) *Grader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grader{cfg: cfg, logger: logger}
}

// Grade validates the answer, compares it with the reference and scores it.
//
// Structural problems with the answer and an alphabet mismatch with the
// reference are reported in Result.Feedback with a zero score. The returned
// error is reserved for configuration faults and cancellation.
func (g *Grader) Grade(ctx context.Context, c *Compiled, ans Answer) (*Result, error) {
	q := &c.Question
	id := uuid.New()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "Grader.Grade",
		trace.WithAttributes(
			attribute.String("grading.question_id", q.ID),
			attribute.String("grading.kind", q.Kind),
			attribute.String("grading.attempt_id", id.String()),
		),
	)
	defer span.End()

	res, outcome, err := g.grade(ctx, c, ans, id)
	gradeDuration.WithLabelValues(q.Kind).Observe(time.Since(start).Seconds())
	gradeAttempts.WithLabelValues(q.Kind, outcome).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.logger.Error("grading failed",
			"question_id", q.ID, "attempt_id", id.String(), "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Float64("grading.score", res.Score),
		attribute.String("grading.outcome", outcome),
	)
	span.SetStatus(codes.Ok, "")
	g.logger.Info("graded attempt",
		"question_id", q.ID,
		"attempt_id", res.AttemptID,
		"outcome", outcome,
		"score", res.Score,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// GradeQuestion compiles q and grades ans against it.
func (g *Grader) GradeQuestion(ctx context.Context, q Question, ans Answer) (*Result, error) {
	c, err := Compile(q)
	if err != nil {
		return nil, err
	}
	return g.Grade(ctx, c, ans)
}

func (g *Grader) grade(ctx context.Context, c *Compiled, ans Answer, id uuid.UUID) (*Result, string, error) {
	q := &c.Question
	res := &Result{AttemptID: id.String(), QuestionID: q.ID, Weight: q.Weight}

	student, err := g.buildAnswer(ctx, q, ans)
	if err != nil {
		fb, ok := FeedbackForError(err)
		if !ok {
			return nil, outcomeError, err
		}
		res.Feedback = fb
		return res, outcomeInvalid, nil
	}

	cx, err := FindCounterexamples(ctx, student, c.Reference, FindOptions{
		CheckOptions: CheckOptions{
			MaxLength:       q.MaxLengthToCheck,
			MaxCount:        q.MaxCounterexamples,
			MaxWordsScanned: g.cfg.MaxWordsScanned,
		},
		Rand: g.rand(id),
	})
	switch {
	case errors.Is(err, ErrEquivalent):
		res.Correct = true
		res.Score = 1
		g.scaleForStates(q, student, res)
		return res, outcomeCorrect, nil
	case errors.Is(err, ErrInputSymbolMismatch):
		g.logger.Warn("reference and answer alphabets differ", "question_id", q.ID, "error", err)
		res.Feedback = &Feedback{Message: "Your answer uses a different alphabet than the question: " + err.Error()}
		return res, outcomeInvalid, nil
	case err != nil:
		return nil, outcomeError, err
	}
	if cx.Truncated {
		scanTruncations.Inc()
	}

	if q.WordLimit > 0 {
		res.Score, err = PartialCreditWithLimit(student, c.Reference, q.WordLimit)
	} else {
		res.Score, err = PartialCredit(student, c.Reference)
	}
	if err != nil {
		return nil, outcomeError, fmt.Errorf("partial credit: %w", err)
	}
	partialCreditScores.Observe(res.Score)
	g.scaleForStates(q, student, res)

	res.Feedback = &Feedback{
		FeedbackHTML: RenderFeedback(cx, student, FeedbackOptions{
			MaxCount: q.MaxCounterexamples,
			Epsilon:  DefaultEpsilon,
			Format:   ParseFormat(q.FeedbackFormat),
			ShowPath: q.ShowPathTaken,
		}),
	}
	return res, outcomeIncorrect, nil
}

// buildAnswer turns the answer into an automaton over the question's
// alphabet.
func (g *Grader) buildAnswer(ctx context.Context, q *Question, ans Answer) (automaton.Automaton, error) {
	_, span := tracer.Start(ctx, "Grader.buildAnswer")
	defer span.End()

	if q.Kind == KindRegex {
		if ans.Regex == nil {
			return nil, ErrNoAnswer
		}
		n, err := regex.Compile(*ans.Regex, automaton.AlphabetFromString(q.Alphabet), q.EpsilonSymbol)
		if err != nil {
			return nil, err
		}
		return n, nil
	}

	isNFA := q.Kind == KindNFA
	kind, epsilon := automaton.KindDFA, ""
	if isNFA {
		kind, epsilon = automaton.KindNFA, q.EpsilonSymbol
	}
	var sub validate.Submission
	switch {
	case ans.Submission != nil:
		sub = *ans.Submission
		sub.InputSymbols = q.symbols(isNFA)
		sub.EpsilonSymbol = epsilon
		sub.IncludeDumpState = q.IncludeDumpState
	case ans.Graph != nil:
		var err error
		if sub, err = ans.Graph.Submission(q.symbols(isNFA), epsilon, q.IncludeDumpState); err != nil {
			return nil, err
		}
	default:
		return nil, ErrNoAnswer
	}

	opts := validate.Options{AllowNoAcceptStates: q.AllowNoAcceptStates}
	a, err := validate.Build(kind, sub, opts)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("grading.states", len(a.States())))
	return a, nil
}

// scaleForStates caps the score of automata with more than MaxStates states.
func (g *Grader) scaleForStates(q *Question, a automaton.Automaton, res *Result) {
	if q.MaxStates <= 0 || q.Kind == KindRegex {
		return
	}
	n := len(a.States())
	if n <= q.MaxStates || res.Score <= q.MaxStateScoreScaling {
		return
	}
	res.Score = q.MaxStateScoreScaling
	msg := fmt.Sprintf("Your automaton has %d states, but it can be built with at most %d. Your score is capped at %d%%.",
		n, q.MaxStates, int(q.MaxStateScoreScaling*100))
	if res.Feedback == nil {
		res.Feedback = &Feedback{}
	}
	res.Feedback.Message = msg
}

func (g *Grader) rand(id uuid.UUID) *rand.Rand {
	seed := g.cfg.Seed
	if seed == 0 {
		seed = int64(binary.BigEndian.Uint64(id[:8]))
	}
	return rand.New(rand.NewSource(seed))
}

// FeedbackForError converts an answer error into its display payload. It
// reports false for errors that are not the student's fault.
func FeedbackForError(err error) (*Feedback, bool) {
	var verr *validate.Error
	var serr *regex.SyntaxError
	switch {
	case errors.As(err, &verr):
		validationFailures.WithLabelValues(verr.Kind.String()).Inc()
		return validationFeedback(verr), true
	case errors.As(err, &serr):
		validationFailures.WithLabelValues("RegexSyntax").Inc()
		return &Feedback{Message: serr.Error()}, true
	case errors.Is(err, validate.ErrMalformedGraph), errors.Is(err, ErrNoAnswer):
		validationFailures.WithLabelValues("Malformed").Inc()
		return &Feedback{Message: err.Error()}, true
	}
	return nil, false
}

// validationFeedback builds the highlight payload of a validation error.
// Transitions are shown in preference to states.
func validationFeedback(e *validate.Error) *Feedback {
	fb := &Feedback{Message: e.Message}
	for _, s := range e.States {
		fb.StateNames = append(fb.StateNames, StateName{Name: s})
	}
	for _, t := range e.Transitions {
		fb.Transitions = append(fb.Transitions, TransitionRef{
			StartState: nullable(t.From),
			Char:       nullable(t.Symbol),
			EndState:   nullable(t.To),
		})
	}
	fb.DisplayTransitions = len(fb.Transitions) > 0
	fb.DisplayStates = len(fb.StateNames) > 0 && !fb.DisplayTransitions
	return fb
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
