package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type uptimeCollector struct {
	instance string
	start    time.Time

	uptimeDesc *prometheus.Desc
}

func NewUptimeCollector(instance string, start time.Time) prometheus.Collector {
	return &uptimeCollector{
		instance: instance,
		start:    start,
		uptimeDesc: prometheus.NewDesc(
			"uptime_seconds",
			"Seconds since the app has been started",
			[]string{"instance"}, nil),
	}
}

func (c *uptimeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.uptimeDesc
}

func (c *uptimeCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.uptimeDesc, prometheus.GaugeValue, time.Since(c.start).Seconds(), c.instance)
}
