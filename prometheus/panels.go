package prometheus

import (
	"github.com/quickshop/bothub/panel"

	"github.com/prometheus/client_golang/prometheus"
)

type TabsReader interface {
	Stats() panel.TabsStats
}

type panelsCollector struct {
	instance string
	tabs     TabsReader

	activeDesc      *prometheus.Desc
	activationsDesc *prometheus.Desc
	actionsDesc     *prometheus.Desc
	failedDesc      *prometheus.Desc
	inflightDesc    *prometheus.Desc
}

func NewPanelsCollector(instance string, t TabsReader) prometheus.Collector {
	return &panelsCollector{
		instance: instance,
		tabs:     t,
		activeDesc: prometheus.NewDesc(
			"panels_active",
			"The active panel, the value is always 1",
			[]string{"instance", "panel"}, nil),
		activationsDesc: prometheus.NewDesc(
			"panels_activations_total",
			"Number of panel activations",
			[]string{"instance"}, nil),
		actionsDesc: prometheus.NewDesc(
			"panels_actions_total",
			"Number of started panel actions",
			[]string{"instance"}, nil),
		failedDesc: prometheus.NewDesc(
			"panels_actions_failed_total",
			"Number of panel actions that returned an error",
			[]string{"instance"}, nil),
		inflightDesc: prometheus.NewDesc(
			"panels_actions_inflight",
			"Number of running panel actions",
			[]string{"instance"}, nil),
	}
}

func (c *panelsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.activeDesc
	ch <- c.activationsDesc
	ch <- c.actionsDesc
	ch <- c.failedDesc
	ch <- c.inflightDesc
}

func (c *panelsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.tabs.Stats()

	if len(stats.Active) != 0 {
		ch <- prometheus.MustNewConstMetric(c.activeDesc, prometheus.GaugeValue, 1, c.instance, stats.Active)
	}

	ch <- prometheus.MustNewConstMetric(c.activationsDesc, prometheus.CounterValue, float64(stats.Activations), c.instance)
	ch <- prometheus.MustNewConstMetric(c.actionsDesc, prometheus.CounterValue, float64(stats.Actions), c.instance)
	ch <- prometheus.MustNewConstMetric(c.failedDesc, prometheus.CounterValue, float64(stats.Failed), c.instance)
	ch <- prometheus.MustNewConstMetric(c.inflightDesc, prometheus.GaugeValue, float64(stats.InFlight), c.instance)
}
