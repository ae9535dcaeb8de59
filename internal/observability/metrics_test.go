package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAggregateCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveAggregateOperation("Membership.Contract.Create", "success", 3*time.Millisecond)
	m.ObserveAggregateOperation("Membership.Contract.Create", "conflict", time.Millisecond)
	m.IncAggregateConflict("Membership.Contract.Create")
	m.IncAggregateRetry("")

	if got := testutil.ToFloat64(m.aggregateOps.WithLabelValues("Membership.Contract.Create", "conflict")); got != 1 {
		t.Fatalf("conflict ops: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.aggregateConflict.WithLabelValues("Membership.Contract.Create")); got != 1 {
		t.Fatalf("conflicts: want=1 got=%v", got)
	}
	if got := testutil.ToFloat64(m.aggregateRetry.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("retry with blank name: want=1 got=%v", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveNotification("email", "sent", time.Millisecond)
	m.AddSweepTransitions("expired", 3)
	m.ApiInflightInc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil handler status: want=503 got=%d", rec.Code)
	}
}

func TestHandlerExposesApplicationMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveAPI("POST", "/api/sessions", "201", 20*time.Millisecond)
	m.ObserveNotification("redis", "failed", 5*time.Millisecond)
	m.AddSweepTransitions("expired", 2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`gymflow_api_requests_total{method="POST",route="/api/sessions",status="201"} 1`,
		`gymflow_notify_booking_confirmations_total{channel="redis",status="failed"} 1`,
		`gymflow_contract_sweep_transitions_total{status="expired"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in exposition", want)
		}
	}
}
