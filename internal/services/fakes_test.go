package services

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/store"
)

var errUnavailable = errors.New("backend unavailable")

type memoryBackend struct {
	mu        sync.Mutex
	rows      []feedback.Row
	appends   int
	loads     int
	failWrite bool
	failRead  bool
}

func (m *memoryBackend) Name() string { return "memory" }

func (m *memoryBackend) Initialize(ctx context.Context) error { return nil }

func (m *memoryBackend) Append(ctx context.Context, s feedback.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appends++
	if m.failWrite {
		return errUnavailable
	}
	m.rows = append(m.rows, s.Row())
	return nil
}

func (m *memoryBackend) LoadAll(ctx context.Context) (store.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.failRead {
		return store.Table{}, errUnavailable
	}
	out := store.EmptyTable()
	out.Rows = append(out.Rows, m.rows...)
	return out, nil
}

type fakeCompleter struct {
	raw     string
	err     error
	calls   int
	prompts []string
}

func (f *fakeCompleter) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.raw, f.err
}
