package submissions

import (
	"gorm.io/gorm"

	types "github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/platform/dbctx"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

type SubmissionRepo interface {
	Create(dbc dbctx.Context, records []*types.Record) ([]*types.Record, error)
	ListAll(dbc dbctx.Context) ([]*types.Record, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	repoLog := baseLog.With("repo", "SubmissionRepo")
	return &submissionRepo{db: db, log: repoLog}
}

func (r *submissionRepo) Create(dbc dbctx.Context, records []*types.Record) ([]*types.Record, error) {
	if len(records) == 0 {
		return []*types.Record{}, nil
	}
	if err := dbc.Conn(r.db).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListAll returns every record in insertion order.
func (r *submissionRepo) ListAll(dbc dbctx.Context) ([]*types.Record, error) {
	var results []*types.Record
	if err := dbc.Conn(r.db).Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

