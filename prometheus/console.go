package prometheus

import (
	"github.com/quickshop/bothub/console"

	"github.com/prometheus/client_golang/prometheus"
)

type ConsoleReader interface {
	Len() int
	Stats() console.Stats
}

type consoleCollector struct {
	instance string
	console  ConsoleReader

	entriesDesc   *prometheus.Desc
	appendedDesc  *prometheus.Desc
	evictedDesc   *prometheus.Desc
	clearedDesc   *prometheus.Desc
	observersDesc *prometheus.Desc
}

func NewConsoleCollector(instance string, c ConsoleReader) prometheus.Collector {
	return &consoleCollector{
		instance: instance,
		console:  c,
		entriesDesc: prometheus.NewDesc(
			"console_entries",
			"Number of entries in the console",
			[]string{"instance"}, nil),
		appendedDesc: prometheus.NewDesc(
			"console_appended_total",
			"Number of appended entries by severity",
			[]string{"instance", "severity"}, nil),
		evictedDesc: prometheus.NewDesc(
			"console_evicted_total",
			"Number of entries removed because the console was full",
			[]string{"instance"}, nil),
		clearedDesc: prometheus.NewDesc(
			"console_cleared_total",
			"Number of times the console has been cleared",
			[]string{"instance"}, nil),
		observersDesc: prometheus.NewDesc(
			"console_observers",
			"Number of subscribed observers",
			[]string{"instance"}, nil),
	}
}

func (c *consoleCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entriesDesc
	ch <- c.appendedDesc
	ch <- c.evictedDesc
	ch <- c.clearedDesc
	ch <- c.observersDesc
}

func (c *consoleCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.console.Stats()

	ch <- prometheus.MustNewConstMetric(c.entriesDesc, prometheus.GaugeValue, float64(c.console.Len()), c.instance)

	for _, s := range console.Severities {
		ch <- prometheus.MustNewConstMetric(c.appendedDesc, prometheus.CounterValue, float64(stats.Appended[s]), c.instance, string(s))
	}

	ch <- prometheus.MustNewConstMetric(c.evictedDesc, prometheus.CounterValue, float64(stats.Evicted), c.instance)
	ch <- prometheus.MustNewConstMetric(c.clearedDesc, prometheus.CounterValue, float64(stats.Cleared), c.instance)
	ch <- prometheus.MustNewConstMetric(c.observersDesc, prometheus.GaugeValue, float64(stats.Observers), c.instance)
}
