package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/feedback-backend/internal/cache"
	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/observability"
	"github.com/yungbote/feedback-backend/internal/platform/ctxutil"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
	"github.com/yungbote/feedback-backend/internal/store"
)

type ReportQuery struct {
	MinRating int  `form:"min_rating" json:"min_rating"`
	Refresh   bool `form:"refresh" json:"refresh"`
}

// PublicRow is the submitter-facing view of one submission.
type PublicRow struct {
	Date   string `json:"date"`
	Rating string `json:"rating"`
	Review string `json:"review"`
	Reply  string `json:"reply"`
}

// InternalRow is the operator-only view of one submission.
type InternalRow struct {
	Date    string `json:"date"`
	Rating  string `json:"rating"`
	Summary string `json:"summary"`
	Actions string `json:"actions"`
}

type ReportStats struct {
	AverageRating float64 `json:"average_rating"`
	HasAverage    bool    `json:"has_average"`
	Total         int     `json:"total"`
	Positive      int     `json:"positive"`
}

// AverageDisplay is the mean with one decimal, or "N/A" with no numeric ratings.
func (s ReportStats) AverageDisplay() string {
	if !s.HasAverage {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", s.AverageRating)
}

type Report struct {
	Stats     ReportStats   `json:"stats"`
	MinRating int           `json:"min_rating"`
	Public    []PublicRow   `json:"public"`
	Internal  []InternalRow `json:"internal"`
	LoadedAt  time.Time     `json:"loaded_at"`
	Backend   string        `json:"backend"`
	Notice    string        `json:"notice,omitempty"`
}

type DashboardService interface {
	Report(ctx context.Context, q ReportQuery) Report
	// Refresh drops the snapshot and re-reads the store.
	Refresh(ctx context.Context) error
}

type dashboardService struct {
	log       *logger.Logger
	backend   store.Backend
	snapshots cache.SnapshotCache
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewDashboardService(log *logger.Logger, backend store.Backend, snapshots cache.SnapshotCache, metrics *observability.Metrics) DashboardService {
	return &dashboardService{
		log:       log.With("service", "DashboardService", "backend", backend.Name()),
		backend:   backend,
		snapshots: snapshots,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *dashboardService) Report(ctx context.Context, q ReportQuery) Report {
	ctx, span := observability.Tracer().Start(ctx, "feedback.report")
	defer span.End()

	snap, err := s.snapshot(ctx, q.Refresh)
	if err != nil {
		span.RecordError(err)
		rep := BuildReport(store.EmptyTable(), q.MinRating, time.Time{})
		rep.Backend = s.backend.Name()
		rep.Notice = fmt.Sprintf("Could not load submissions from the %s store. Showing no data.", s.backend.Name())
		return rep
	}
	rep := BuildReport(snap.Table, q.MinRating, snap.LoadedAt)
	rep.Backend = s.backend.Name()
	span.SetAttributes(
		attribute.Int("report.total", rep.Stats.Total),
		attribute.Int("report.shown", len(rep.Public)),
	)
	return rep
}

func (s *dashboardService) Refresh(ctx context.Context) error {
	_, err := s.snapshot(ctx, true)
	return err
}

func (s *dashboardService) snapshot(ctx context.Context, refresh bool) (cache.Snapshot, error) {
	if refresh {
		if err := s.snapshots.Invalidate(ctx); err != nil {
			s.log.Warn("Snapshot invalidation failed", "error", err)
		}
	} else {
		snap, ok := s.snapshots.Get(ctx)
		s.metrics.ObserveCache(s.snapshots.Name(), ok)
		if ok {
			return snap, nil
		}
	}

	start := time.Now()
	tbl, err := s.backend.LoadAll(ctx)
	s.metrics.ObserveStore(s.backend.Name(), "load_all", err, time.Since(start))
	if err != nil {
		s.log.Error("LoadAll failed, dashboard degraded to empty",
			append([]interface{}{"error", err}, ctxutil.LogFields(ctx)...)...)
		return cache.Snapshot{}, err
	}
	snap := cache.Snapshot{Table: tbl, LoadedAt: s.now()}
	if err := s.snapshots.Set(ctx, snap); err != nil {
		s.log.Warn("Snapshot write failed", "error", err)
	}
	return snap, nil
}

// ClampMinRating maps any input onto the 1..5 filter range.
func ClampMinRating(n int) int {
	if n < feedback.MinRating {
		return feedback.MinRating
	}
	if n > feedback.MaxRating {
		return feedback.MaxRating
	}
	return n
}

// BuildReport derives the dashboard from one loaded table. Stats cover
// every row; the two views hold only rows passing the min-rating filter.
func BuildReport(tbl store.Table, minRating int, loadedAt time.Time) Report {
	minRating = ClampMinRating(minRating)
	rep := Report{
		MinRating: minRating,
		Public:    []PublicRow{},
		Internal:  []InternalRow{},
		LoadedAt:  loadedAt,
	}

	sum, numeric := 0, 0
	for _, row := range tbl.Rows {
		rep.Stats.Total++
		rating, ok := feedback.ParseRating(row.Rating)
		if ok {
			sum += rating
			numeric++
			if rating >= feedback.PositiveRating {
				rep.Stats.Positive++
			}
		}
		// Threshold 1 keeps everything, including unparseable ratings.
		if minRating > feedback.MinRating && (!ok || rating < minRating) {
			continue
		}
		date := DisplayDate(row.Timestamp)
		rep.Public = append(rep.Public, PublicRow{
			Date:   date,
			Rating: DisplayRating(row.Rating),
			Review: row.Review,
			Reply:  row.PublicReply,
		})
		rep.Internal = append(rep.Internal, InternalRow{
			Date:    date,
			Rating:  row.Rating,
			Summary: row.InternalSummary,
			Actions: row.InternalActions,
		})
	}
	if numeric > 0 {
		rep.Stats.HasAverage = true
		rep.Stats.AverageRating = float64(sum) / float64(numeric)
	}
	return rep
}

// DisplayDate formats a stored timestamp as "02 Jan, 2006", or returns the
// raw cell when it does not parse.
func DisplayDate(raw string) string {
	t, ok := feedback.ParseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.Format(feedback.DisplayDateLayout)
}

// DisplayRating renders "r ★…" for a valid rating, or the raw cell.
func DisplayRating(raw string) string {
	n, ok := feedback.ParseRating(raw)
	if !ok {
		return raw
	}
	return feedback.Stars(n)
}
