package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAccumulate(t *testing.T) {
	m := New()
	m.MatchOutcome("accepted", "strong")
	m.MatchOutcome("accepted", "strong")
	m.MatchOutcome("clarify", "generic")
	m.CollaboratorFailure("speech")
	m.Turn("add", 20*time.Millisecond)

	if got := testutil.ToFloat64(m.matchOutcomes.WithLabelValues("accepted", "strong")); got != 2 {
		t.Fatalf("expected 2 strong accepts, got %v", got)
	}
	if got := testutil.ToFloat64(m.collaboratorFailures.WithLabelValues("speech")); got != 1 {
		t.Fatalf("expected 1 speech failure, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.MatchOutcome("accepted", "strong")
	m.Turn("add", time.Second)
	m.InboundDropped()
}

func TestHandlerExposesNamespace(t *testing.T) {
	m := New()
	m.QuoteFinalized()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "corralon_quotes_finalized_total 1") {
		t.Fatalf("expected finalized counter in output")
	}
}
