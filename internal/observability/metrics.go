package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "humidity_adviser"

// Provider label values.
const (
	ProviderNominatim = "nominatim"
	ProviderOpenMeteo = "openmeteo"
	ProviderSimulator = "simulator"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Outbound provider calls.
	ProviderRequests *prometheus.CounterVec   // labels: provider, method, outcome={success,error,empty}
	ProviderDuration *prometheus.HistogramVec // labels: provider, method
	CacheLookups     *prometheus.CounterVec   // labels: cache={geocode,forecast,current,conditions}, result={hit,miss}
	Simulations      *prometheus.CounterVec   // labels: outcome={success,error}

	// Batch pipeline.
	JobsConsumed            prometheus.Counter
	ResultsProduced         prometheus.Counter
	JobErrors               prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ProviderRequests,
		m.ProviderDuration,
		m.CacheLookups,
		m.Simulations,
		m.JobsConsumed,
		m.ResultsProduced,
		m.JobErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Outbound provider requests by provider, method and outcome.",
		}, []string{"provider", "method", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Outbound provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider", "method"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		Simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Simulation runs by outcome.",
		}, []string{"outcome"}),
		JobsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_consumed_total",
			Help:      "Total simulation jobs read from the job topic.",
		}),
		ResultsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_produced_total",
			Help:      "Total simulation outcomes written to the result topic.",
		}),
		JobErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_errors_total",
			Help:      "Total jobs that failed and were skipped.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of jobs per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-simulate-load cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}
