// Package metrics exports ledger activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts ledger operations and tracks the ledger height. It
// satisfies ledger.Observer.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	height     prometheus.Gauge
}

// NewRecorder registers the ledger metrics, plus the Go runtime and process
// collectors, on a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skrbnik",
			Name:      "operations_total",
			Help:      "Ledger operations by name and result code.",
		}, []string{"op", "result"}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skrbnik",
			Name:      "ledger_height",
			Help:      "Current ledger height.",
		}),
	}
	r.registry.MustRegister(
		r.operations,
		r.height,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveOperation counts one finished operation.
func (r *Recorder) ObserveOperation(op, result string) {
	r.operations.WithLabelValues(op, result).Inc()
}

// ObserveHeight records the current ledger height.
func (r *Recorder) ObserveHeight(height uint64) {
	r.height.Set(float64(height))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
