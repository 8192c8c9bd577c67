package grading

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/testutil"
)

func mustCompile(t *testing.T, q Question) *Compiled {
	t.Helper()
	c, err := Compile(q)
	require.NoError(t, err)
	return c
}

func TestGradeBatch(t *testing.T) {
	c := mustCompile(t, containsQuestion("000"))
	right := testutil.Rename(testutil.ContainsDFA("000"), "r")
	wrong := testutil.ContainsDFA("001")

	items := []BatchItem{
		{Question: c, Answer: Answer{Submission: &right}},
		{Question: c, Answer: Answer{Submission: &wrong}},
		{Question: c, Answer: Answer{Submission: &right}},
	}
	out, err := newTestGrader().GradeBatch(context.Background(), items, 2)
	require.NoError(t, err)
	assert.Equal(t, BatchSuccess, out.Status)
	require.Len(t, out.Results, 3)
	assert.True(t, out.Results[0].Correct)
	assert.False(t, out.Results[1].Correct)
	assert.True(t, out.Results[2].Correct)
	assert.InDelta(t, (2+out.Results[1].Score)/3, out.Score, 1e-12)
	assert.Empty(t, out.Errors)
}

func TestGradeBatch_Partial(t *testing.T) {
	c := mustCompile(t, containsQuestion("000"))
	right := testutil.ContainsDFA("000")

	items := []BatchItem{
		{Err: errors.New("unknown question")},
		{Question: c, Answer: Answer{Submission: &right}},
		{},
	}
	out, err := newTestGrader().GradeBatch(context.Background(), items, 0)
	require.NoError(t, err)
	assert.Equal(t, BatchPartial, out.Status)
	assert.Nil(t, out.Results[0])
	assert.NotNil(t, out.Results[1])
	assert.Equal(t, 1.0, out.Score)
	require.Len(t, out.Errors, 2)
	assert.Equal(t, 0, out.Errors[0].Index)
	assert.Equal(t, "unknown question", out.Errors[0].Error)
	assert.Equal(t, 2, out.Errors[1].Index)
}

func TestGradeBatch_AllFailed(t *testing.T) {
	c := mustCompile(t, containsQuestion("000"))
	right := testutil.ContainsDFA("000")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	items := []BatchItem{{Question: c, Answer: Answer{Submission: &right}}}
	out, err := newTestGrader().GradeBatch(ctx, items, 1)
	assert.ErrorIs(t, err, ErrAllGradesFailed)
	require.NotNil(t, out)
	assert.Equal(t, BatchError, out.Status)
	assert.Equal(t, "contains-000", out.Errors[0].QuestionID)

	_, err = newTestGrader().GradeBatch(context.Background(), nil, 1)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}
