package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/hitoshi/contesthub/internal/reminder"
)

// findMetric は名前とラベルに一致するメトリクスを返す。
func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

func TestNewCollector_ReturnsNonNil(t *testing.T) {
	if NewCollector(prometheus.NewRegistry()) == nil {
		t.Fatal("expected non-nil Collector")
	}
}

func TestRecordListingFetchSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordListingFetchSuccess(42, 300*time.Millisecond)
	c.RecordListingFetchSuccess(40, 100*time.Millisecond)

	if v := findMetric(t, reg, "contesthub_listing_fetch_success_total", nil).GetCounter().GetValue(); v != 2 {
		t.Errorf("listing_fetch_success_total = %v, want 2", v)
	}
	if v := findMetric(t, reg, "contesthub_listing_contests", nil).GetGauge().GetValue(); v != 40 {
		t.Errorf("listing_contests = %v, want 40", v)
	}
	if n := findMetric(t, reg, "contesthub_listing_fetch_latency_seconds", nil).GetHistogram().GetSampleCount(); n != 2 {
		t.Errorf("latency sample count = %d, want 2", n)
	}
}

func TestRecordListingFetchFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordListingFetchFailure()

	if v := findMetric(t, reg, "contesthub_listing_fetch_fail_total", nil).GetCounter().GetValue(); v != 1 {
		t.Errorf("listing_fetch_fail_total = %v, want 1", v)
	}
}

func TestRecordSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSweep(reminder.SweepResult{Pending: 10, Due: 4, Sent: 3, Failed: 1, Skipped: 2}, time.Second)
	c.RecordSweep(reminder.SweepResult{Pending: 7, Due: 1, Sent: 1}, time.Second)

	if v := findMetric(t, reg, "contesthub_sweep_runs_total", nil).GetCounter().GetValue(); v != 2 {
		t.Errorf("sweep_runs_total = %v, want 2", v)
	}
	if v := findMetric(t, reg, "contesthub_sweep_pending_reminders", nil).GetGauge().GetValue(); v != 7 {
		t.Errorf("sweep_pending_reminders = %v, want 7", v)
	}

	tests := map[string]float64{"sent": 4, "failed": 1, "skipped": 2}
	for result, want := range tests {
		m := findMetric(t, reg, "contesthub_sweep_reminders_total", map[string]string{"result": result})
		if v := m.GetCounter().GetValue(); v != want {
			t.Errorf("sweep_reminders_total{result=%q} = %v, want %v", result, v, want)
		}
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordListingFetchSuccess(1, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "contesthub_listing_fetch_success_total") {
		t.Error("response should contain contesthub_listing_fetch_success_total metric")
	}
}
