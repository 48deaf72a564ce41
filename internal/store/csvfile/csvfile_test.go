package csvfile

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(logger.Nop(), filepath.Join(t.TempDir(), "nested", "submissions.csv"))
	require.NoError(t, err)
	return s
}

func TestInitializeEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Initialize(ctx))

	tbl, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, feedback.Columns(), tbl.Columns)
	assert.Empty(t, tbl.Rows)
}

func TestLoadAllMissingFile(t *testing.T) {
	s := newStore(t)
	tbl, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Len(t, tbl.Columns, 6)
}

func TestAppendThenLoadAll(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Initialize(ctx))

	first := feedback.Submission{
		Timestamp:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Rating:          2,
		Review:          "Cold food, \"slow\" service",
		PublicReply:     "We're sorry.",
		InternalSummary: "Food quality issue.",
		InternalActions: "Check kitchen, Train staff, Follow up",
	}
	last := feedback.Submission{
		Timestamp:       time.Date(2024, 3, 2, 9, 0, 0, 123456789, time.UTC),
		Rating:          5,
		Review:          "Great service!",
		PublicReply:     "Thank you!",
		InternalSummary: "Happy customer.",
		InternalActions: "Share praise, Keep standards, Invite back",
	}
	require.NoError(t, s.Append(ctx, first))
	require.NoError(t, s.Append(ctx, last))

	tbl, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, first.Row(), tbl.Rows[0])
	assert.Equal(t, last.Row(), tbl.Rows[1])
}

func TestAppendMultiLineReviewRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Initialize(ctx))

	sub := feedback.Submission{
		Timestamp:       time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC),
		Rating:          3,
		Review:          feedback.NormalizeReview("line one\r\nline two\r\n\r\n\"quoted\", line four"),
		PublicReply:     "Thanks for the detail.",
		InternalSummary: "Mixed visit.",
		InternalActions: "Review menu, Check wait times, Follow up",
	}
	require.NoError(t, s.Append(ctx, sub))

	tbl, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, sub.Row(), tbl.Rows[0])
	assert.Equal(t, "line one\nline two\n\n\"quoted\", line four", tbl.Rows[0].Review)
}

func TestAppendWritesMissingFieldsAsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Append(ctx, feedback.Submission{Review: "only text"}))

	tbl, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "", tbl.Rows[0].Rating)
	assert.Equal(t, "", tbl.Rows[0].Timestamp)
	assert.Equal(t, "only text", tbl.Rows[0].Review)
}

func TestInitializeKeepsExistingRows(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Append(ctx, feedback.Submission{Rating: 3, Review: "ok"}))
	require.NoError(t, s.Initialize(ctx))

	tbl, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}

func TestConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Initialize(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Append(ctx, feedback.Submission{Rating: i%5 + 1, Review: "parallel"}))
		}(i)
	}
	wg.Wait()

	tbl, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, tbl.Len())
}

func TestNewDefaultsPath(t *testing.T) {
	s, err := New(logger.Nop(), " ")
	require.NoError(t, err)
	assert.Equal(t, DefaultPath, s.Path())
}
