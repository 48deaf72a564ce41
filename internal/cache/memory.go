package cache

import (
	"context"
	"sync"
	"time"
)

// Memory keeps one snapshot in process. A non-positive ttl disables caching.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	snap    Snapshot
	present bool
	setAt   time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now}
}

// WithClock swaps the clock used for expiry.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Get(ctx context.Context) (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.present || m.ttl <= 0 {
		return Snapshot{}, false
	}
	if m.now().Sub(m.setAt) >= m.ttl {
		return Snapshot{}, false
	}
	return m.snap, true
}

func (m *Memory) Set(ctx context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	m.present = true
	m.setAt = m.now()
	return nil
}

func (m *Memory) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = Snapshot{}
	m.present = false
	return nil
}
