package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"loanlocator/internal/core"
	"loanlocator/internal/lookup"
)

var (
	_ lookup.ReloadObserver = (*Metrics)(nil)
	_ core.MetricsRecorder  = (*Metrics)(nil)
)

func family(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func labelled(f *dto.MetricFamily, labels map[string]string) *dto.Metric {
	for _, metric := range f.GetMetric() {
		matched := 0
		for _, pair := range metric.GetLabel() {
			if labels[pair.GetName()] == pair.GetValue() {
				matched++
			}
		}
		if matched == len(labels) {
			return metric
		}
	}
	return nil
}

func TestObserveLookup(t *testing.T) {
	m := New()
	m.ObserveLookup(string(lookup.StatusFound), time.Millisecond)
	m.ObserveLookup(string(lookup.StatusFound), time.Millisecond)
	m.ObserveLookup("empty_input", time.Microsecond)

	f := family(t, m, "loanlocator_lookups_total")
	if got := labelled(f, map[string]string{"status": "found"}).GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 found lookups, got %v", got)
	}
	if got := labelled(f, map[string]string{"status": "empty_input"}).GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected 1 empty_input lookup, got %v", got)
	}
	h := family(t, m, "loanlocator_lookup_duration_seconds").GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 3 {
		t.Fatalf("expected 3 latency samples, got %d", h.GetSampleCount())
	}
}

func TestObserveReload(t *testing.T) {
	m := New()
	m.ObserveReload(lookup.Stats{Loans: 3, Ranges: 2}, nil, time.Second)
	m.ObserveReload(lookup.Stats{}, errors.New("down"), time.Second)

	reloads := family(t, m, "loanlocator_snapshot_reloads_total")
	for _, result := range []string{"success", "error"} {
		if got := labelled(reloads, map[string]string{"result": result}).GetCounter().GetValue(); got != 1 {
			t.Fatalf("expected one %s reload, got %v", result, got)
		}
	}
	sizes := family(t, m, "loanlocator_snapshot_records")
	if got := labelled(sizes, map[string]string{"collection": "loans"}).GetGauge().GetValue(); got != 3 {
		t.Fatalf("failed reload must not reset gauges, got %v", got)
	}
}

func TestObserveMutation(t *testing.T) {
	m := New()
	m.Observe(context.Background(), "create_loan", true, time.Millisecond)
	m.Observe(context.Background(), "create_loan", false, time.Millisecond)

	f := family(t, m, "loanlocator_admin_mutations_total")
	if labelled(f, map[string]string{"operation": "create_loan", "result": "error"}) == nil {
		t.Fatalf("missing error series")
	}
	if len(f.GetMetric()) != 2 {
		t.Fatalf("expected 2 series, got %d", len(f.GetMetric()))
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveLookup("not_found", time.Millisecond)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `loanlocator_lookups_total{status="not_found"} 1`) {
		t.Fatalf("exposition missing lookup counter:\n%s", rec.Body.String())
	}
}
