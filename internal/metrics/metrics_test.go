package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNew(t *testing.T) {
	m := New()
	if m == nil {
		t.Fatal("New() returned nil")
	}

	if m.Registry() == nil {
		t.Error("Registry() returned nil")
	}

	// Check that all metrics are registered
	if m.LeadsIngestedTotal == nil {
		t.Error("LeadsIngestedTotal is nil")
	}
	if m.LeadsSuppressedTotal == nil {
		t.Error("LeadsSuppressedTotal is nil")
	}
	if m.LeadsDedupedTotal == nil {
		t.Error("LeadsDedupedTotal is nil")
	}
	if m.CampaignsCreatedTotal == nil {
		t.Error("CampaignsCreatedTotal is nil")
	}
	if m.DispatchesTotal == nil {
		t.Error("DispatchesTotal is nil")
	}
	if m.UnsubscribesTotal == nil {
		t.Error("UnsubscribesTotal is nil")
	}
	if m.APIRequestsTotal == nil {
		t.Error("APIRequestsTotal is nil")
	}
	if m.APIRequestDurationSeconds == nil {
		t.Error("APIRequestDurationSeconds is nil")
	}
}

func TestGlobalMetrics(t *testing.T) {
	if Global() != nil {
		t.Error("Global() should be nil before SetGlobal")
	}

	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	if Global() != m {
		t.Error("Global() did not return the set metrics")
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return metric.GetCounter().GetValue()
}

func TestObserveIngest(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	ObserveIngest("csv", 10, 3, 2)
	ObserveIngest("csv", 5, 0, 1)

	if got := counterValue(t, m.LeadsIngestedTotal.WithLabelValues("csv")); got != 15 {
		t.Errorf("LeadsIngestedTotal = %v, want 15", got)
	}
	if got := counterValue(t, m.LeadsDedupedTotal.WithLabelValues("csv")); got != 3 {
		t.Errorf("LeadsDedupedTotal = %v, want 3", got)
	}
	if got := counterValue(t, m.LeadsSuppressedTotal.WithLabelValues("csv")); got != 3 {
		t.Errorf("LeadsSuppressedTotal = %v, want 3", got)
	}
}

func TestObserveDispatch(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	ObserveDispatch("success", 4)
	ObserveDispatch("failed", 0)

	if got := counterValue(t, m.DispatchesTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("DispatchesTotal{success} = %v, want 1", got)
	}
	if got := counterValue(t, m.DispatchesTotal.WithLabelValues("failed")); got != 1 {
		t.Errorf("DispatchesTotal{failed} = %v, want 1", got)
	}
	if got := counterValue(t, m.LeadsDispatchedTotal); got != 4 {
		t.Errorf("LeadsDispatchedTotal = %v, want 4", got)
	}
}

func TestObserversTolerateNilGlobal(t *testing.T) {
	SetGlobal(nil)

	// Must not panic without a configured instance
	ObserveIngest("json", 1, 0, 0)
	ObserveDispatch("success", 1)
	IncCampaignsCreated()
	IncCampaignsMerged()
	IncUnsubscribes()
	IncAPIErrors("bad_request")
}
