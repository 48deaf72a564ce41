package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/feedback-backend/internal/data/db"
	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	svc, err := db.Open(logger.Nop(), db.Config{Driver: db.DriverSQLite, DSN: filepath.Join(t.TempDir(), "fb.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	s, err := New(logger.Nop(), svc.DB())
	require.NoError(t, err)
	return s
}

func TestInitializeEmpty(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Initialize(ctx))

	tbl, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, feedback.Columns(), tbl.Columns)
	assert.NotNil(t, tbl.Rows)
	assert.Empty(t, tbl.Rows)
}

func TestAppendThenLoadAll(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Initialize(ctx))

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Append(ctx, feedback.Submission{
			Timestamp:       time.Date(2024, 2, i, 0, 0, 0, 0, time.UTC),
			Rating:          i,
			Review:          "review",
			PublicReply:     "reply",
			InternalSummary: "summary",
			InternalActions: "a, b, c",
		}))
	}
	last := feedback.Submission{
		Timestamp:       time.Date(2024, 2, 9, 10, 11, 12, 5, time.UTC),
		Rating:          5,
		Review:          "Great service!",
		PublicReply:     "Thank you!",
		InternalSummary: "Delighted customer.",
		InternalActions: "Thank team, Share review, Keep quality",
	}
	require.NoError(t, s.Append(ctx, last))

	tbl, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, tbl.Len())
	assert.Equal(t, last.Row(), tbl.Rows[3])
	assert.Equal(t, "1", tbl.Rows[0].Rating)
}
