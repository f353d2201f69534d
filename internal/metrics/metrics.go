// Package metrics instruments the replicated-log core with Prometheus
// counters and gauges. Every metric is registered against a
// caller-supplied prometheus.Registerer so embedding nodes (and tests) can
// scope collectors per instance instead of fighting over the global
// registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the set of collectors exported by the log core.
type Metrics struct {
	EntriesAppended prometheus.Counter
	Truncations     prometheus.Counter
	SyncTotal       prometheus.Counter
	SyncDuration    prometheus.Histogram
	CommitIndex     prometheus.Gauge
	LastApplied     prometheus.Gauge
	ApplyErrors     *prometheus.CounterVec
}

// New creates and registers a Metrics set against reg. Passing nil uses the
// global default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		EntriesAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raftlog_entries_appended_total",
			Help: "Total number of log entries appended to the store.",
		}),
		Truncations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raftlog_truncations_total",
			Help: "Total number of truncate operations performed on the log.",
		}),
		SyncTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raftlog_sync_total",
			Help: "Total number of fsync calls issued against the log file.",
		}),
		SyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "raftlog_sync_duration_seconds",
			Help:    "Latency of fsync calls against the log file.",
			Buckets: prometheus.DefBuckets,
		}),
		CommitIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "raftlog_commit_index",
			Help: "Highest index known committed.",
		}),
		LastApplied: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "raftlog_last_applied",
			Help: "Highest index applied to the state machine.",
		}),
		ApplyErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raftlog_apply_errors_total",
			Help: "Apply-time errors by reason (unknown_command, bad_arity, parse_failure).",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		m.EntriesAppended,
		m.Truncations,
		m.SyncTotal,
		m.SyncDuration,
		m.CommitIndex,
		m.LastApplied,
		m.ApplyErrors,
	)
	return m
}

// Noop returns a Metrics set whose collectors are registered only against a
// fresh private registry that nothing scrapes — useful for tests and standalone CLI invocations that don't
// want to touch the global registry.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}
