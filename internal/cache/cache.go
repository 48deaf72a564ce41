// Package cache holds the dashboard's short-lived snapshot of the store.
package cache

import (
	"context"
	"time"

	"github.com/yungbote/feedback-backend/internal/store"
)

const DefaultTTL = 5 * time.Second

// Snapshot is one full read of the store and when it was taken.
type Snapshot struct {
	Table    store.Table `json:"table"`
	LoadedAt time.Time   `json:"loaded_at"`
}

type SnapshotCache interface {
	// Get returns the snapshot if one is present and still fresh.
	Get(ctx context.Context) (Snapshot, bool)
	Set(ctx context.Context, snap Snapshot) error
	Invalidate(ctx context.Context) error
	Name() string
}
