package observability

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsWritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/api/submissions", 201, 30*time.Millisecond)
	m.ObserveGeneration("groq", "fallback", time.Second)
	m.ObserveStore("csv", "append", errors.New("disk full"), time.Millisecond)
	m.ObserveCache("memory", true)
	m.ObserveSubmission(5, false)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`feedback_api_requests_total{method="POST",route="/api/submissions",status="201"} 1`,
		`feedback_llm_requests_total{provider="groq",outcome="fallback"} 1`,
		`feedback_store_operations_total{backend="csv",op="append",status="error"} 1`,
		`feedback_snapshot_cache_lookups_total{cache="memory",result="hit"} 1`,
		`feedback_submissions_total{rating="5",stored="false"} 1`,
		`feedback_llm_request_duration_seconds_bucket{provider="groq",le="1"} 1`,
		`feedback_llm_request_duration_seconds_bucket{provider="groq",le="0.5"} 0`,
		`# TYPE feedback_api_inflight_requests gauge`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", 200, time.Millisecond)
	m.ObserveSubmission(1, true)
	m.InflightInc()
	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want=%d got=%d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" x-api-key = abc , bad, =v, k2=v2 ")
	if len(got) != 2 || got["x-api-key"] != "abc" || got["k2"] != "v2" {
		t.Fatalf("ParseHeaders: got=%v", got)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("empty input should yield nil")
	}
}
