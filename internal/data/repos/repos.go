package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/feedback-backend/internal/data/repos/submissions"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

type SubmissionRepo = submissions.SubmissionRepo

var NewSubmissionRepo = submissions.NewSubmissionRepo

type Repos struct {
	Submissions SubmissionRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{Submissions: submissions.NewSubmissionRepo(db, log)}
}
