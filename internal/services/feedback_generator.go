package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/feedback-backend/internal/domain/feedback"
	"github.com/yungbote/feedback-backend/internal/observability"
	"github.com/yungbote/feedback-backend/internal/platform/ctxutil"
	"github.com/yungbote/feedback-backend/internal/platform/llm"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

// Completer is a model client that answers a single prompt with a JSON object.
type Completer interface {
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// Generated is the three-part output of one generation.
type Generated struct {
	PublicReply     string `json:"ai_user_response"`
	InternalSummary string `json:"ai_summary"`
	InternalActions string `json:"ai_actions"`
}

const (
	// MissingReplyMarker stands in for an absent user_response key.
	MissingReplyMarker = "Error: Response missing."

	// MissingSummaryMarker stands in for an absent admin_summary key.
	MissingSummaryMarker = "Error: Summary missing."

	// MissingActionsMarker stands in for an absent admin_actions key.
	MissingActionsMarker = "Error: Actions missing."
)

var (
	// PositiveFallback is the canned output for ratings of 4 and up.
	PositiveFallback = Generated{
		PublicReply:     "Thank you for your excellent feedback! We're delighted you had a great experience and we look forward to welcoming you back soon.",
		InternalSummary: "Positive review highlighting excellent service.",
		InternalActions: "Send team feedback, Use review for marketing, Monitor similar future reviews",
	}
	// ApologeticFallback is the canned output for ratings below 4.
	ApologeticFallback = Generated{
		PublicReply:     "We sincerely apologize for your experience. Your feedback has been shared with our team and we are addressing it so your next visit is better.",
		InternalSummary: "Negative review citing customer support issues.",
		InternalActions: "Immediate manager follow-up, Identify root cause, Update training materials",
	}
)

// Fallback picks the canned output for rating. It ignores the review.
func Fallback(rating int) Generated {
	if rating >= feedback.PositiveRating {
		return PositiveFallback
	}
	return ApologeticFallback
}

type FeedbackGenerator interface {
	// Generate never fails: model errors resolve to Fallback(rating).
	Generate(ctx context.Context, rating int, review string) Generated
}

type feedbackGenerator struct {
	log       *logger.Logger
	completer Completer
	provider  string
	metrics   *observability.Metrics
}

// NewFeedbackGenerator builds a generator. A nil completer means no model
// credential is configured and every call uses the fallback.
func NewFeedbackGenerator(log *logger.Logger, completer Completer, provider string, metrics *observability.Metrics) FeedbackGenerator {
	if provider == "" {
		provider = "none"
	}
	return &feedbackGenerator{
		log:       log.With("service", "FeedbackGenerator", "provider", provider),
		completer: completer,
		provider:  provider,
		metrics:   metrics,
	}
}

func (g *feedbackGenerator) Generate(ctx context.Context, rating int, review string) Generated {
	ctx, span := observability.Tracer().Start(ctx, "feedback.generate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("feedback.rating", rating),
		attribute.String("llm.provider", g.provider),
	)

	start := time.Now()
	if g.completer == nil {
		span.SetAttributes(attribute.String("feedback.outcome", "fallback"))
		g.metrics.ObserveGeneration(g.provider, "fallback", time.Since(start))
		return Fallback(rating)
	}

	raw, err := g.completer.CompleteJSON(ctx, BuildFeedbackPrompt(rating, review))
	if err == nil {
		var out Generated
		out, err = ParseGenerated(raw)
		if err == nil {
			span.SetAttributes(attribute.String("feedback.outcome", "model"))
			g.metrics.ObserveGeneration(g.provider, "model", time.Since(start))
			return out
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "generation failed")
	span.SetAttributes(attribute.String("feedback.outcome", "fallback"))
	g.metrics.ObserveGeneration(g.provider, "fallback", time.Since(start))
	kv := append([]interface{}{"error", err, "rating", rating}, ctxutil.LogFields(ctx)...)
	if llm.IsAuthError(err) {
		g.log.Error("Model rejected the configured credential, using fallback", kv...)
	} else {
		g.log.Warn("Feedback generation failed, using fallback", kv...)
	}
	return Fallback(rating)
}

// BuildFeedbackPrompt renders the single user message sent to the model.
func BuildFeedbackPrompt(rating int, review string) string {
	var b strings.Builder
	b.WriteString("You are an assistant that analyzes customer feedback.\n")
	fmt.Fprintf(&b, "Star rating: %d out of 5.\n", rating)
	fmt.Fprintf(&b, "Review: %q\n\n", review)
	b.WriteString("Produce three outputs:\n")
	b.WriteString("1. user_response: a polite, human reply from customer service, 30 to 60 words, that acknowledges the review and is safe to show publicly. Never mention internal actions.\n")
	b.WriteString("2. admin_summary: one concise sentence of at most 15 words for a manager.\n")
	b.WriteString("3. admin_actions: exactly three specific recommendations for a manager, as one comma-separated string (for example \"Action 1, Action 2, Action 3\").\n\n")
	b.WriteString("Respond with a JSON object only, using exactly the keys user_response, admin_summary and admin_actions.")
	return b.String()
}

// ParseGenerated decodes the model's JSON object. Absent keys become a
// marker naming the key; only undecodable input is an error.
func ParseGenerated(raw string) (Generated, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &obj); err != nil {
		return Generated{}, fmt.Errorf("decode model output: %w", err)
	}
	if obj == nil {
		return Generated{}, fmt.Errorf("decode model output: not a JSON object")
	}
	return Generated{
		PublicReply:     fieldText(obj, "user_response", MissingReplyMarker),
		InternalSummary: fieldText(obj, "admin_summary", MissingSummaryMarker),
		InternalActions: fieldText(obj, "admin_actions", MissingActionsMarker),
	}, nil
}

func fieldText(obj map[string]json.RawMessage, key, marker string) string {
	raw, ok := obj[key]
	if !ok {
		return marker
	}
	text, ok := jsonText(raw)
	if !ok {
		return marker
	}
	return text
}

// jsonText renders a JSON value as display text. Arrays are joined with
// ", " and null counts as absent.
func jsonText(raw json.RawMessage) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if t, ok := jsonText(it); ok && t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, ", "), true
	}
	return trimmed, true
}
