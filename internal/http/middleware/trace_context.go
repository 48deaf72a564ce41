package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/feedback-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// RequestIDs stamps each request with a request id and a trace id and
// echoes both on the response. The trace id comes from the active span when
// otelgin has started one, then from X-Trace-Id, then from the request id.
func RequestIDs() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		td := &ctxutil.TraceData{RequestID: strings.TrimSpace(c.GetHeader(headerRequestID))}
		if td.RequestID == "" {
			td.RequestID = uuid.NewString()
		}
		td.TraceID = spanTraceID(ctx)
		if td.TraceID == "" {
			td.TraceID = strings.TrimSpace(c.GetHeader(headerTraceID))
		}
		if td.TraceID == "" {
			td.TraceID = td.RequestID
		}

		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(attribute.String("feedback.request_id", td.RequestID))
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, td))
		c.Header(headerRequestID, td.RequestID)
		c.Header(headerTraceID, td.TraceID)
		c.Next()
	}
}

func spanTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
