package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/feedback-backend/internal/cache"
	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/platform/apierr"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

var fixedNow = time.Date(2024, 7, 4, 15, 30, 0, 0, time.UTC)

func newSubmission(backend *memoryBackend, completer Completer, snaps cache.SnapshotCache) SubmissionService {
	gen := NewFeedbackGenerator(logger.Nop(), completer, "groq", nil)
	if snaps == nil {
		snaps = cache.NewMemory(time.Minute)
	}
	return NewSubmissionService(logger.Nop(), backend, gen, snaps, nil, WithClock(func() time.Time { return fixedNow }))
}

func TestSubmitWithoutCredentialStoresPositiveFallback(t *testing.T) {
	backend := &memoryBackend{}
	svc := newSubmission(backend, nil, nil)

	res, err := svc.Submit(context.Background(), feedback.Input{Rating: 5, Review: "Great service!"})
	require.NoError(t, err)
	assert.True(t, res.Stored)
	assert.Equal(t, PositiveFallback.PublicReply, res.Reply)

	require.Len(t, backend.rows, 1)
	row := backend.rows[0]
	assert.Equal(t, PositiveFallback.PublicReply, row.PublicReply)
	assert.Equal(t, "5", row.Rating)
	assert.Equal(t, "Great service!", row.Review)
	assert.Equal(t, fixedNow.Format(feedback.TimestampLayout), row.Timestamp)
}

func TestSubmitEmptyReviewIsRejected(t *testing.T) {
	backend := &memoryBackend{}
	completer := &fakeCompleter{raw: `{}`}
	svc := newSubmission(backend, completer, nil)

	for _, review := range []string{"", "   \n\t"} {
		_, err := svc.Submit(context.Background(), feedback.Input{Rating: 3, Review: review})
		require.Error(t, err)

		status, code := apierr.StatusOf(err)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "validation_failed", code)

		var verr *feedback.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "review", verr.Fields[0].Field)
	}
	assert.Equal(t, 0, backend.appends)
	assert.Equal(t, 0, completer.calls)
}

func TestSubmitRejectsOutOfRangeRatingAndLongReview(t *testing.T) {
	backend := &memoryBackend{}
	svc := newSubmission(backend, nil, nil)

	long := make([]rune, feedback.MaxReviewRunes+1)
	for i := range long {
		long[i] = 'é'
	}
	_, err := svc.Submit(context.Background(), feedback.Input{Rating: 0, Review: string(long)})
	var verr *feedback.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
	assert.Equal(t, 0, backend.appends)
}

func TestSubmitStoreFailureStillReturnsReply(t *testing.T) {
	backend := &memoryBackend{failWrite: true}
	svc := newSubmission(backend, nil, nil)

	res, err := svc.Submit(context.Background(), feedback.Input{Rating: 2, Review: "Slow"})
	require.NoError(t, err)
	assert.False(t, res.Stored)
	assert.Equal(t, ApologeticFallback.PublicReply, res.Reply)
	assert.Equal(t, 1, backend.appends)
}

func TestSubmitInvalidatesSnapshotAfterWrite(t *testing.T) {
	ctx := context.Background()
	backend := &memoryBackend{}
	snaps := cache.NewMemory(time.Hour)
	dash := NewDashboardService(logger.Nop(), backend, snaps, nil)
	svc := newSubmission(backend, nil, snaps)

	assert.Equal(t, 0, dash.Report(ctx, ReportQuery{}).Stats.Total)
	_, err := svc.Submit(ctx, feedback.Input{Rating: 4, Review: "Nice"})
	require.NoError(t, err)

	assert.Equal(t, 1, dash.Report(ctx, ReportQuery{}).Stats.Total)
	assert.Equal(t, 2, backend.loads)
}

func TestSubmitTrimsReview(t *testing.T) {
	backend := &memoryBackend{}
	svc := newSubmission(backend, nil, nil)
	res, err := svc.Submit(context.Background(), feedback.Input{Rating: 4, Review: "  tidy  "})
	require.NoError(t, err)
	assert.Equal(t, "tidy", res.Submission.Review)
}

func TestSubmitNormalizesReviewLineBreaks(t *testing.T) {
	backend := &memoryBackend{}
	svc := newSubmission(backend, nil, nil)
	res, err := svc.Submit(context.Background(), feedback.Input{Rating: 2, Review: "line one\r\nline two\rline three"})
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\nline three", res.Submission.Review)
	require.Len(t, backend.rows, 1)
	assert.Equal(t, res.Submission.Review, backend.rows[0].Review)
}
