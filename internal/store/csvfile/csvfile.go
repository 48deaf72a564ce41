// Package csvfile stores submissions in a local CSV file.
package csvfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/store"
)

const DefaultPath = "data/submissions.csv"

type Store struct {
	path string
	log  *logger.Logger
	// mu keeps concurrent appends from interleaving within a row.
	mu sync.Mutex
}

func New(log *logger.Logger, path string) (*Store, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path, log: log.With("store", "csv", "path", path)}, nil
}

func (s *Store) Name() string { return "csv" }

func (s *Store) Path() string { return s.path }

func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked()
}

func (s *Store) ensureLocked() error {
	info, err := os.Stat(s.path)
	if err == nil {
		if info.IsDir() {
			return fmt.Errorf("csv store path %q is a directory", s.path)
		}
		if info.Size() > 0 {
			return nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat csv store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create csv store dir: %w", err)
		}
	}
	head, err := store.EncodeHeader()
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, head, 0o644); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	s.log.Info("Initialized csv store")
	return nil
}

func (s *Store) Append(ctx context.Context, sub feedback.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLocked(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := store.WriteRows(&buf, sub.Row()); err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv store: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("append csv row: %w", err)
	}
	return f.Close()
}

// LoadAll reads the whole file. A missing file is an empty table.
func (s *Store) LoadAll(ctx context.Context) (store.Table, error) {
	if err := ctx.Err(); err != nil {
		return store.Table{}, err
	}
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return store.EmptyTable(), nil
	}
	if err != nil {
		return store.Table{}, fmt.Errorf("open csv store: %w", err)
	}
	defer f.Close()
	tbl, err := store.ParseCSV(f)
	if err != nil {
		return store.Table{}, fmt.Errorf("parse csv store: %w", err)
	}
	return tbl, nil
}
