package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordAndServe(t *testing.T) {
	m := NewMetrics("adsmcp")
	m.ObserveTool("get_campaigns", "ok", 20*time.Millisecond)
	m.ObserveTool("get_campaigns", "ok", 30*time.Millisecond)
	m.ObserveUpstream("search", "200", time.Millisecond)
	m.ObserveRows("device", 12)
	m.CountMutation("campaign", "dry_run")

	if got := testutil.ToFloat64(m.ToolCalls.WithLabelValues("get_campaigns", "ok")); got != 2 {
		t.Fatalf("tool calls = %v", got)
	}
	if got := testutil.ToFloat64(m.Mutations.WithLabelValues("campaign", "dry_run")); got != 1 {
		t.Fatalf("mutations = %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `adsmcp_upstream_requests_total{operation="search",status="200"} 1`) {
		t.Fatalf("metrics output missing upstream counter:\n%s", body)
	}
}

func TestTwoInstancesDoNotCollide(t *testing.T) {
	a := NewMetrics("adsmcp")
	b := NewMetrics("adsmcp")
	a.ObserveTool("x", "ok", 0)
	if got := testutil.ToFloat64(b.ToolCalls.WithLabelValues("x", "ok")); got != 0 {
		t.Fatalf("instances share state: %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveTool("x", "ok", time.Second)
	m.ObserveUpstream("search", "500", time.Second)
	m.ObserveRows("geo", 1)
	m.CountMutation("campaign", "applied")
	if m.Registry() != nil {
		t.Fatalf("nil metrics should have no registry")
	}
}
