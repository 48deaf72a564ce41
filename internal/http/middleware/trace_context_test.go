package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/feedback-backend/internal/platform/ctxutil"
)

func serveIDs(t *testing.T, header map[string]string) (*ctxutil.TraceData, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDs())

	var got *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		got = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got == nil {
		t.Fatalf("trace data missing from request context")
	}
	return got, rec
}

func TestRequestIDsKeepsInboundIDs(t *testing.T) {
	got, rec := serveIDs(t, map[string]string{headerRequestID: "req-123", headerTraceID: "trace-9"})
	if got.RequestID != "req-123" || got.TraceID != "trace-9" {
		t.Fatalf("ids: got=%+v", got)
	}
	if h := rec.Header().Get(headerRequestID); h != "req-123" {
		t.Fatalf("response request id: want=%q got=%q", "req-123", h)
	}
}

func TestRequestIDsGeneratesMissingIDs(t *testing.T) {
	got, rec := serveIDs(t, nil)
	if got.RequestID == "" {
		t.Fatalf("request id should be generated")
	}
	if got.TraceID != got.RequestID {
		t.Fatalf("trace id should fall back to request id: got=%+v", got)
	}
	if h := rec.Header().Get(headerTraceID); h != got.TraceID {
		t.Fatalf("response trace id: want=%q got=%q", got.TraceID, h)
	}
}
