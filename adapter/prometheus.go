// Package adapter exports counter activity to external monitoring systems.
package adapter

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/srediag/plugin-cas/pkg/counter"
)

const promNamespace = "cas"

// PrometheusObserver is a counter.Observer backed by Prometheus collectors.
type PrometheusObserver struct {
	commits   *prometheus.CounterVec
	attempts  *prometheus.HistogramVec
	exhausted *prometheus.CounterVec
}

var _ counter.Observer = (*PrometheusObserver)(nil)

// NewPrometheusObserver creates the collectors and registers them with reg.
// A nil reg means prometheus.DefaultRegisterer.
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: "counter",
			Name:      "commits_total",
			Help:      "Total number of values committed by a counter.",
		}, []string{"counter"}),
		attempts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: promNamespace,
			Subsystem: "counter",
			Name:      "attempts",
			Help:      "Compare-and-exchange attempts needed per committed value.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"counter"}),
		exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: promNamespace,
			Subsystem: "counter",
			Name:      "exhausted_total",
			Help:      "Number of counters that reached their limit.",
		}, []string{"counter"}),
	}
	for _, c := range []prometheus.Collector{o.commits, o.attempts, o.exhausted} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register prometheus collector: %w", err)
		}
	}
	return o, nil
}

// ObserveCommit implements counter.Observer.
func (o *PrometheusObserver) ObserveCommit(name string, attempts int) {
	o.commits.WithLabelValues(name).Inc()
	o.attempts.WithLabelValues(name).Observe(float64(attempts))
}

// ObserveExhausted implements counter.Observer.
func (o *PrometheusObserver) ObserveExhausted(name string) {
	o.exhausted.WithLabelValues(name).Inc()
}
