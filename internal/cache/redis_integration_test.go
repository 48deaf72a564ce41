package cache

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/yungbote/feedback-backend/internal/clients/redis"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

func TestRedisSnapshotLifecycle(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		t.Skip("set REDIS_ADDR to run redis integration tests")
	}
	ctx := context.Background()
	rdb, err := redisclient.New(ctx, logger.Nop(), redisclient.Config{Addr: addr})
	require.NoError(t, err)
	defer rdb.Close()

	key := fmt.Sprintf("feedback:test:%d", time.Now().UnixNano())
	c, err := NewRedis(logger.Nop(), rdb, key, time.Minute)
	require.NoError(t, err)
	defer c.Invalidate(ctx)

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	loadedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.Set(ctx, sampleSnapshot(loadedAt)))
	snap, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "good", snap.Table.Rows[0].Review)
	assert.True(t, snap.LoadedAt.Equal(loadedAt))

	require.NoError(t, c.Invalidate(ctx))
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}
