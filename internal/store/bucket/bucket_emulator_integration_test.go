package bucket

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/platform/gcp"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

func TestBucketStoreEmulatorLifecycle(t *testing.T) {
	host := strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST"))
	if host == "" {
		t.Skip("set STORAGE_EMULATOR_HOST to run emulator integration tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := gcp.NewStorageClient(ctx, gcp.ObjectStorageConfig{
		Mode:         gcp.ObjectStorageModeGCSEmulator,
		EmulatorHost: host,
	}, "")
	require.NoError(t, err)
	defer client.Close()

	bucketName := fmt.Sprintf("feedback-it-%d", time.Now().UnixNano())
	if err := client.Bucket(bucketName).Create(ctx, "local-dev", nil); err != nil {
		t.Skipf("storage emulator at %s unusable: %v", host, err)
	}

	s, err := New(logger.Nop(), client, Config{Bucket: bucketName})
	require.NoError(t, err)

	tbl, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())

	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Initialize(ctx))
	tbl, err = s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, feedback.Columns(), tbl.Columns)
	assert.Empty(t, tbl.Rows)

	subs := []feedback.Submission{
		{Timestamp: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), Rating: 1, Review: "Bad", PublicReply: "Sorry", InternalSummary: "Bad visit.", InternalActions: "a, b, c"},
		{Timestamp: time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), Rating: 5, Review: "Great service!", PublicReply: "Thanks", InternalSummary: "Good visit.", InternalActions: "d, e, f"},
	}
	for _, sub := range subs {
		require.NoError(t, s.Append(ctx, sub))
	}
	tbl, err = s.LoadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, subs[1].Row(), tbl.Rows[1])
}

func TestBucketStoreEmulatorBlankObject(t *testing.T) {
	host := strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST"))
	if host == "" {
		t.Skip("set STORAGE_EMULATOR_HOST to run emulator integration tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := gcp.NewStorageClient(ctx, gcp.ObjectStorageConfig{
		Mode:         gcp.ObjectStorageModeGCSEmulator,
		EmulatorHost: host,
	}, "")
	require.NoError(t, err)
	defer client.Close()

	bucketName := fmt.Sprintf("feedback-blank-%d", time.Now().UnixNano())
	if err := client.Bucket(bucketName).Create(ctx, "local-dev", nil); err != nil {
		t.Skipf("storage emulator at %s unusable: %v", host, err)
	}
	placeholder := func(object string) {
		w := client.Bucket(bucketName).Object(object).NewWriter(ctx)
		require.NoError(t, w.Close())
	}

	sub := feedback.Submission{Timestamp: time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC), Rating: 4, Review: "Nice", PublicReply: "Thanks", InternalSummary: "Fine.", InternalActions: "a, b, c"}

	// Append straight onto a zero-byte object.
	placeholder("append.csv")
	s, err := New(logger.Nop(), client, Config{Bucket: bucketName, Object: "append.csv"})
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, sub))
	tbl, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, sub.Row(), tbl.Rows[0])

	// Initialize fills in the header of a zero-byte object.
	placeholder("init.csv")
	s, err = New(logger.Nop(), client, Config{Bucket: bucketName, Object: "init.csv"})
	require.NoError(t, err)
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.Append(ctx, sub))
	tbl, err = s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, feedback.Columns(), tbl.Columns)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, sub.Row(), tbl.Rows[0])
}
