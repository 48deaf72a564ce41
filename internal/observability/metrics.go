package observability

import (
	"io"
	"net/http"
	"strconv"
	"time"
)

// Metrics is the service's Prometheus exposition. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	apiRequests   *CounterVec
	apiLatency    *HistogramVec
	apiInflight   *Gauge
	llmRequests   *CounterVec
	llmLatency    *HistogramVec
	storeOps      *CounterVec
	storeLatency  *HistogramVec
	cacheLookups  *CounterVec
	submissions   *CounterVec
	rejectedInput *CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests:   NewCounterVec("feedback_api_requests_total", "HTTP requests by method, route and status.", []string{"method", "route", "status"}),
		apiLatency:    NewHistogramVec("feedback_api_request_duration_seconds", "HTTP request latency.", []string{"method", "route"}, nil),
		apiInflight:   NewGauge("feedback_api_inflight_requests", "HTTP requests currently being served."),
		llmRequests:   NewCounterVec("feedback_llm_requests_total", "Feedback generation calls by provider and outcome.", []string{"provider", "outcome"}),
		llmLatency:    NewHistogramVec("feedback_llm_request_duration_seconds", "Feedback generation latency.", []string{"provider"}, []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30}),
		storeOps:      NewCounterVec("feedback_store_operations_total", "Storage backend operations by backend, op and status.", []string{"backend", "op", "status"}),
		storeLatency:  NewHistogramVec("feedback_store_operation_duration_seconds", "Storage backend operation latency.", []string{"backend", "op"}, nil),
		cacheLookups:  NewCounterVec("feedback_snapshot_cache_lookups_total", "Dashboard snapshot lookups by result.", []string{"cache", "result"}),
		submissions:   NewCounterVec("feedback_submissions_total", "Accepted submissions by rating and stored flag.", []string{"rating", "stored"}),
		rejectedInput: NewCounterVec("feedback_rejected_submissions_total", "Submissions rejected by validation, by field.", []string{"field"}),
	}
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) InflightInc() {
	if m != nil {
		m.apiInflight.Add(1)
	}
}

func (m *Metrics) InflightDec() {
	if m != nil {
		m.apiInflight.Add(-1)
	}
}

// ObserveGeneration records one generator call. outcome is "model" or "fallback".
func (m *Metrics) ObserveGeneration(provider, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(provider, outcome)
	m.llmLatency.Observe(dur.Seconds(), provider)
}

func (m *Metrics) ObserveStore(backend, op string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.storeOps.Inc(backend, op, status)
	m.storeLatency.Observe(dur.Seconds(), backend, op)
}

func (m *Metrics) ObserveCache(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Inc(cache, result)
}

func (m *Metrics) ObserveSubmission(rating int, stored bool) {
	if m == nil {
		return
	}
	m.submissions.Inc(strconv.Itoa(rating), strconv.FormatBool(stored))
}

func (m *Metrics) ObserveRejected(field string) {
	if m == nil {
		return
	}
	m.rejectedInput.Inc(field)
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency,
		m.storeOps, m.storeLatency,
		m.cacheLookups, m.submissions, m.rejectedInput,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}
