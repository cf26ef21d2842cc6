package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveMovementCountsByOutcome(t *testing.T) {
	m := New()

	m.ObserveMovement("deposit", "OK", 1, false, time.Millisecond)
	m.ObserveMovement("deposit", "OK", 2, true, time.Millisecond)
	m.ObserveMovement("withdrawal", "INSUFFICIENT_FUNDS", 0, false, time.Millisecond)

	if got := testutil.ToFloat64(m.movements.WithLabelValues("deposit", "OK")); got != 2 {
		t.Fatalf("expected 2 deposits, got %v", got)
	}
	if got := testutil.ToFloat64(m.movements.WithLabelValues("withdrawal", "INSUFFICIENT_FUNDS")); got != 1 {
		t.Fatalf("expected 1 rejected withdrawal, got %v", got)
	}
	if got := testutil.ToFloat64(m.replays); got != 1 {
		t.Fatalf("expected 1 replay, got %v", got)
	}
}

func TestHandlerExposesEngineMetrics(t *testing.T) {
	m := New()
	m.ObserveMovement("loan_origination", "OK", 1, false, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `cashflow_engine_movements_total{outcome="OK",type="loan_origination"} 1`) {
		t.Fatalf("expected movement counter in output, got:\n%s", body)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveMovement("deposit", "OK", 1, false, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}
