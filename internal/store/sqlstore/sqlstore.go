// Package sqlstore adapts the submissions table to the store contract.
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/feedback-backend/internal/data/db"
	"github.com/yungbote/feedback-backend/internal/data/repos"
	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/platform/dbctx"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/store"
)

type Store struct {
	db   *gorm.DB
	repo repos.SubmissionRepo
	log  *logger.Logger
}

func New(log *logger.Logger, conn *gorm.DB) (*Store, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	if conn == nil {
		return nil, errors.New("db required")
	}
	return &Store{
		db:   conn,
		repo: repos.NewSubmissionRepo(conn, log),
		log:  log.With("store", "sql"),
	}, nil
}

func (s *Store) Name() string { return "sql" }

func (s *Store) Initialize(ctx context.Context) error {
	if err := db.AutoMigrateAll(s.db.WithContext(ctx)); err != nil {
		return fmt.Errorf("migrate submissions: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, sub feedback.Submission) error {
	_, err := s.repo.Create(dbctx.Context{Ctx: ctx}, []*feedback.Record{feedback.RecordFromRow(sub.Row())})
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *Store) LoadAll(ctx context.Context) (store.Table, error) {
	recs, err := s.repo.ListAll(dbctx.Context{Ctx: ctx})
	if err != nil {
		return store.Table{}, fmt.Errorf("list submissions: %w", err)
	}
	out := store.EmptyTable()
	for _, r := range recs {
		out.Rows = append(out.Rows, r.Row())
	}
	return out, nil
}
