package grading

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("fagrader.grading")

// Outcomes recorded by gradeAttempts.
const (
	outcomeCorrect   = "correct"
	outcomeIncorrect = "incorrect"
	outcomeInvalid   = "invalid"
	outcomeError     = "error"
)

var (
	// gradeAttempts counts grading attempts by question kind and outcome
	gradeAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fagrader_grade_attempts_total",
		Help: "Total grading attempts by question kind and outcome",
	}, []string{"kind", "outcome"})

	// gradeDuration tracks grading latency
	gradeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fagrader_grade_duration_seconds",
		Help:    "Grading duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	}, []string{"kind"})

	// partialCreditScores tracks the distribution of partial-credit scores
	partialCreditScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fagrader_partial_credit_score",
		Help:    "Partial-credit scores of incorrect but valid submissions",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	// validationFailures counts rejected submissions by failure kind
	validationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fagrader_validation_failures_total",
		Help: "Total rejected submissions by validation failure kind",
	}, []string{"kind"})

	// scanTruncations counts exhaustive scans stopped by their word budget
	scanTruncations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fagrader_scan_truncations_total",
		Help: "Total counterexample scans stopped by the word budget",
	})
)
