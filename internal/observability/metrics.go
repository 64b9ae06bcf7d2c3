package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "estatedesk"

// Metrics are the billing pipeline counters exposed on /metrics.
type Metrics struct {
	BillWrites        *prometheus.CounterVec
	PersistDuration   *prometheus.HistogramVec
	PeriodLoads       *prometheus.CounterVec
	DocumentsRendered *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BillWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "utility_bill",
			Name:      "writes_total",
			Help:      "Utility bill line writes by mode and outcome.",
		}, []string{"mode", "outcome"}),
		PersistDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "utility_bill",
			Name:      "persist_duration_seconds",
			Help:      "Duration of a full billing period save.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode", "policy"}),
		PeriodLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "utility_bill",
			Name:      "period_loads_total",
			Help:      "Billing period loads by resulting mode.",
		}, []string{"mode"}),
		DocumentsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "statement",
			Name:      "rendered_total",
			Help:      "Rendered documents by kind and format.",
		}, []string{"kind", "format"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "active_sessions",
			Help:      "Billing sessions currently held in memory.",
		}),
	}
	reg.MustRegister(m.BillWrites, m.PersistDuration, m.PeriodLoads, m.DocumentsRendered, m.ActiveSessions)
	return m
}

// NopMetrics returns metrics bound to a throwaway registry, used by tests and tools.
func NopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
