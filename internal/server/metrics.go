package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metrics struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	pairs    prometheus.Histogram
	clusters prometheus.Histogram
}

// newMetrics registers on a registry owned by the server, never the global
// default one.
func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	m := &metrics{
		registry: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wardwatch",
			Name:      "cluster_runs_total",
			Help:      "Cluster requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wardwatch",
			Name:      "cluster_run_seconds",
			Help:      "Time spent running the contact pipeline.",
			Buckets:   prometheus.DefBuckets,
		}),
		pairs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wardwatch",
			Name:      "contact_pairs",
			Help:      "Contact pairs found per run.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		clusters: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wardwatch",
			Name:      "clusters",
			Help:      "Clusters found per run.",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}),
	}
	reg.MustRegister(
		m.runs, m.duration, m.pairs, m.clusters,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
