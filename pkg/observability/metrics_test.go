package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// TestMetricsRegistered verifies that all metrics are registered in the
// default registry.
func TestMetricsRegistered(t *testing.T) {
	RequestsTotal.WithLabelValues("GET", "/example", "2xx").Add(0)
	RequestDuration.WithLabelValues("GET", "/example").Observe(0)
	AuthOutcomesTotal.WithLabelValues("authorized").Add(0)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"authgate_requests_total":           false,
		"authgate_request_duration_seconds": false,
		"authgate_auth_outcomes_total":      false,
		"authgate_panics_recovered_total":   false,
	}
	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not found in default registry", name)
		}
	}
}

// newRoutedHandler mounts h at pattern on a chi router with the metrics
// middleware installed.
func newRoutedHandler(pattern string, h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get(pattern, h)
	return r
}

func TestMiddlewareRecordsRouteAndStatus(t *testing.T) {
	counter := RequestsTotal.WithLabelValues("GET", "/items/{id}", "4xx")
	before := testutil.ToFloat64(counter)

	h := newRoutedHandler("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/items/42", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("4xx count delta = %v, want 1", got)
	}
}

func TestMiddlewareUnmatchedRoute(t *testing.T) {
	counter := RequestsTotal.WithLabelValues("GET", unmatchedRoute, "4xx")
	before := testutil.ToFloat64(counter)

	h := newRoutedHandler("/items", func(w http.ResponseWriter, r *http.Request) {})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nowhere/at/all", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("unmatched count delta = %v, want 1", got)
	}
}

func TestMiddlewareRecordsDuration(t *testing.T) {
	before := histogramCount(t, RequestDuration, "GET", "/timed")

	h := newRoutedHandler("/timed", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/timed", nil))

	if got := histogramCount(t, RequestDuration, "GET", "/timed") - before; got != 1 {
		t.Errorf("histogram sample count delta = %d, want 1", got)
	}
}

func TestMiddlewareWithoutRouter(t *testing.T) {
	counter := RequestsTotal.WithLabelValues("POST", unmatchedRoute, "2xx")
	before := testutil.ToFloat64(counter)

	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("count delta = %v, want 1", got)
	}
}

func TestStatusWriterKeepsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

	sw.WriteHeader(http.StatusUnauthorized)
	sw.WriteHeader(http.StatusInternalServerError)

	if sw.status != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", sw.status, http.StatusUnauthorized)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	AuthOutcomesTotal.WithLabelValues("unauthorized").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `authgate_auth_outcomes_total{outcome="unauthorized"}`) {
		t.Error("exposition is missing authgate_auth_outcomes_total")
	}
}

// histogramCount reads the observation count from a HistogramVec.
func histogramCount(t *testing.T, hv *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs, err := hv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting histogram metric: %v", err)
	}
	if err := obs.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing histogram metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}
