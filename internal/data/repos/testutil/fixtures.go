package testutil

import (
	"context"
	"strconv"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/feedback-backend/internal/domain/feedback"
)

func SeedSubmission(tb testing.TB, ctx context.Context, tx *gorm.DB, rating int, review string) *types.Record {
	tb.Helper()
	rec := &types.Record{
		Timestamp:      time.Now().UTC().Format(types.TimestampLayout),
		UserRating:     strconv.Itoa(rating),
		UserReview:     review,
		AIUserResponse: "Thanks for the feedback.",
		AISummary:      "Seeded submission.",
		AIActions:      "One, Two, Three",
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed submission: %v", err)
	}
	return rec
}
