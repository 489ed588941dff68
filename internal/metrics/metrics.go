package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Metrics holds all Prometheus metrics for Leadbase
type Metrics struct {
	// Ingestion counters
	LeadsIngestedTotal   *prometheus.CounterVec
	LeadsSuppressedTotal *prometheus.CounterVec
	LeadsDedupedTotal    *prometheus.CounterVec

	// Campaign counters
	CampaignsCreatedTotal prometheus.Counter
	CampaignsMergedTotal  prometheus.Counter

	// Dispatch counters
	DispatchesTotal      *prometheus.CounterVec
	LeadsDispatchedTotal prometheus.Counter

	// Unsubscribe counter
	UnsubscribesTotal prometheus.Counter

	// API metrics
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec
	APIErrorsTotal            *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		LeadsIngestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadbase_leads_ingested_total",
				Help: "Total number of leads persisted by the ingestion pipeline",
			},
			[]string{"source"},
		),
		LeadsSuppressedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadbase_leads_suppressed_total",
				Help: "Total number of candidate leads dropped by subscription suppression",
			},
			[]string{"source"},
		),
		LeadsDedupedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadbase_leads_deduped_total",
				Help: "Total number of candidate leads removed as duplicates",
			},
			[]string{"source"},
		),

		CampaignsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leadbase_campaigns_created_total",
				Help: "Total number of campaigns created",
			},
		),
		CampaignsMergedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leadbase_campaigns_merged_total",
				Help: "Total number of merge operations performed",
			},
		),

		DispatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadbase_dispatches_total",
				Help: "Total number of webhook dispatch attempts",
			},
			[]string{"outcome"},
		),
		LeadsDispatchedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leadbase_leads_dispatched_total",
				Help: "Total number of leads forwarded to the webhook",
			},
		),

		UnsubscribesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "leadbase_unsubscribes_total",
				Help: "Total number of confirmed unsubscribes",
			},
		),

		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadbase_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leadbase_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		APIErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leadbase_api_errors_total",
				Help: "Total number of API errors",
			},
			[]string{"error_type"},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.LeadsIngestedTotal,
		m.LeadsSuppressedTotal,
		m.LeadsDedupedTotal,
		m.CampaignsCreatedTotal,
		m.CampaignsMergedTotal,
		m.DispatchesTotal,
		m.LeadsDispatchedTotal,
		m.UnsubscribesTotal,
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.APIErrorsTotal,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetGlobal sets the global metrics instance
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// ObserveIngest records the outcome of one pipeline run
func ObserveIngest(source string, added, duplicates, suppressed int) {
	m := Global()
	if m != nil {
		m.LeadsIngestedTotal.WithLabelValues(source).Add(float64(added))
		m.LeadsDedupedTotal.WithLabelValues(source).Add(float64(duplicates))
		m.LeadsSuppressedTotal.WithLabelValues(source).Add(float64(suppressed))
	}
}

// IncCampaignsCreated increments the campaign creation counter
func IncCampaignsCreated() {
	m := Global()
	if m != nil {
		m.CampaignsCreatedTotal.Inc()
	}
}

// IncCampaignsMerged increments the merge counter
func IncCampaignsMerged() {
	m := Global()
	if m != nil {
		m.CampaignsMergedTotal.Inc()
	}
}

// ObserveDispatch records a dispatch attempt and, on success, the
// number of leads sent
func ObserveDispatch(outcome string, leads int) {
	m := Global()
	if m != nil {
		m.DispatchesTotal.WithLabelValues(outcome).Inc()
		if leads > 0 {
			m.LeadsDispatchedTotal.Add(float64(leads))
		}
	}
}

// IncUnsubscribes increments the confirmed unsubscribe counter
func IncUnsubscribes() {
	m := Global()
	if m != nil {
		m.UnsubscribesTotal.Inc()
	}
}

// IncAPIErrors increments API error counter
func IncAPIErrors(errorType string) {
	m := Global()
	if m != nil {
		m.APIErrorsTotal.WithLabelValues(errorType).Inc()
	}
}
