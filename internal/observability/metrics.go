package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for a flood-inference run.
type Metrics struct {
	RowsSkipped      prometheus.Counter
	IncidentsLoaded  prometheus.Gauge
	NetworkNodes     prometheus.Gauge
	NetworkEdges     prometheus.Gauge
	WindowsTotal     prometheus.Gauge
	WindowsProcessed prometheus.Counter
	WindowDuration   prometheus.Histogram
	HighRiskRoads    prometheus.Gauge
	ReportsPublished prometheus.Counter
	RunActive        prometheus.Gauge
}

// NewMetrics creates and registers all run metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsSkipped,
		m.IncidentsLoaded,
		m.NetworkNodes,
		m.NetworkEdges,
		m.WindowsTotal,
		m.WindowsProcessed,
		m.WindowDuration,
		m.HighRiskRoads,
		m.ReportsPublished,
		m.RunActive,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_twin",
			Name:      "rows_skipped_total",
			Help:      "Malformed input rows skipped during loading.",
		}),
		IncidentsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_twin",
			Name:      "incidents_loaded",
			Help:      "Historical incidents in the training set.",
		}),
		NetworkNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_twin",
			Name:      "network_nodes",
			Help:      "Road segments retained in the propagation network.",
		}),
		NetworkEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_twin",
			Name:      "network_edges",
			Help:      "Directed edges retained in the propagation network.",
		}),
		WindowsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_twin",
			Name:      "windows_total",
			Help:      "Time windows the observation stream partitions into.",
		}),
		WindowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_twin",
			Name:      "windows_processed_total",
			Help:      "Window reports computed and emitted.",
		}),
		WindowDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_twin",
			Name:      "window_processing_duration_seconds",
			Help:      "Duration of one window's inference plus emission.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		HighRiskRoads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_twin",
			Name:      "high_risk_roads",
			Help:      "High-risk road count of the most recent window.",
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_twin",
			Name:      "reports_published_total",
			Help:      "Window documents published to the report topic.",
		}),
		RunActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_twin",
			Name:      "run_active",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
	}
}
