// Package prometheus exposes the counters of the console, the event bridge and
// the panels as prometheus metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics interface {
	// Register adds all collectors or none of them.
	Register(cs ...prometheus.Collector) error

	UnregisterAll()

	Reader
}

type Reader interface {
	HTTPHandler() http.Handler
}

type metrics struct {
	registry   *prometheus.Registry
	collectors []prometheus.Collector
}

func New() Metrics {
	return &metrics{
		registry: prometheus.NewRegistry(),
	}
}

func (m *metrics) Register(cs ...prometheus.Collector) error {
	for i, c := range cs {
		if err := m.registry.Register(c); err != nil {
			for _, r := range cs[:i] {
				m.registry.Unregister(r)
			}

			return err
		}
	}

	m.collectors = append(m.collectors, cs...)

	return nil
}

func (m *metrics) UnregisterAll() {
	for _, c := range m.collectors {
		m.registry.Unregister(c)
	}

	m.collectors = nil
}

func (m *metrics) HTTPHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(m.registry, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	}))
}
