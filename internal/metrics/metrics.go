// Package metrics exposes Prometheus collectors for the transaction processor.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives processor events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveOutcome(kind, result string, elapsed time.Duration)
	ObserveRejection(kind, code string)
	ObserveReset()
}

// Prometheus records processor events into Prometheus collectors.
type Prometheus struct {
	outcomes   *prometheus.CounterVec
	rejections *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	resets     prometheus.Counter
}

// NewPrometheus registers the processor collectors on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "txservice",
			Name:      "operations_total",
			Help:      "Applied operations by kind and result code.",
		}, []string{"kind", "result"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "txservice",
			Name:      "validation_failures_total",
			Help:      "Operations rejected before reaching the ledger, by validation code.",
		}, []string{"kind", "code"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "txservice",
			Name:      "operation_duration_seconds",
			Help:      "Time spent applying an operation, lock wait included.",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05},
		}, []string{"kind"}),
		resets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "txservice",
			Name:      "resets_total",
			Help:      "Administrative state resets.",
		}),
	}
}

func (p *Prometheus) ObserveOutcome(kind, result string, elapsed time.Duration) {
	p.outcomes.WithLabelValues(kind, result).Inc()
	p.latency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (p *Prometheus) ObserveRejection(kind, code string) {
	p.rejections.WithLabelValues(kind, code).Inc()
}

func (p *Prometheus) ObserveReset() {
	p.resets.Inc()
}

// Noop discards every observation.
type Noop struct{}

func (Noop) ObserveOutcome(string, string, time.Duration) {}
func (Noop) ObserveRejection(string, string)              {}
func (Noop) ObserveReset()                                {}
