package services

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/feedback-backend/internal/cache"
	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/observability"
	"github.com/yungbote/feedback-backend/internal/platform/apierr"
	"github.com/yungbote/feedback-backend/internal/platform/ctxutil"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/store"
)

// SubmitResult is what the submitter sees. Stored is false when the
// append failed; the reply is returned either way.
type SubmitResult struct {
	Submission feedback.Submission `json:"submission"`
	Reply      string              `json:"reply"`
	Stored     bool                `json:"stored"`
}

type SubmissionService interface {
	// Submit validates, generates and stores one submission. The only error
	// it returns is an *apierr.Error wrapping a *feedback.ValidationError.
	Submit(ctx context.Context, in feedback.Input) (SubmitResult, error)
}

type submissionService struct {
	log       *logger.Logger
	backend   store.Backend
	generator FeedbackGenerator
	snapshots cache.SnapshotCache
	metrics   *observability.Metrics
	now       func() time.Time
}

type SubmissionOption func(*submissionService)

// WithClock replaces the clock used to timestamp submissions.
func WithClock(now func() time.Time) SubmissionOption {
	return func(s *submissionService) { s.now = now }
}

func NewSubmissionService(
	log *logger.Logger,
	backend store.Backend,
	generator FeedbackGenerator,
	snapshots cache.SnapshotCache,
	metrics *observability.Metrics,
	opts ...SubmissionOption,
) SubmissionService {
	s := &submissionService{
		log:       log.With("service", "SubmissionService", "backend", backend.Name()),
		backend:   backend,
		generator: generator,
		snapshots: snapshots,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *submissionService) Submit(ctx context.Context, in feedback.Input) (SubmitResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "feedback.submit")
	defer span.End()

	in.Review = feedback.NormalizeReview(in.Review)
	if verr := feedback.Validate(in); verr != nil {
		for _, f := range verr.Fields {
			s.metrics.ObserveRejected(f.Field)
		}
		span.SetStatus(codes.Error, "validation failed")
		return SubmitResult{}, apierr.New(http.StatusUnprocessableEntity, "validation_failed", verr)
	}
	span.SetAttributes(attribute.Int("feedback.rating", in.Rating))

	gen := s.generator.Generate(ctx, in.Rating, in.Review)
	sub := feedback.Submission{
		Timestamp:       s.now(),
		Rating:          in.Rating,
		Review:          in.Review,
		PublicReply:     gen.PublicReply,
		InternalSummary: gen.InternalSummary,
		InternalActions: gen.InternalActions,
	}

	start := time.Now()
	err := s.backend.Append(ctx, sub)
	s.metrics.ObserveStore(s.backend.Name(), "append", err, time.Since(start))
	stored := err == nil
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("feedback.stored", false))
		s.log.Error("Append failed, submission not stored",
			append([]interface{}{"error", err, "rating", in.Rating}, ctxutil.LogFields(ctx)...)...)
	} else if s.snapshots != nil {
		if err := s.snapshots.Invalidate(ctx); err != nil {
			s.log.Warn("Snapshot invalidation failed", "error", err)
		}
	}
	s.metrics.ObserveSubmission(in.Rating, stored)

	return SubmitResult{Submission: sub, Reply: sub.PublicReply, Stored: stored}, nil
}
