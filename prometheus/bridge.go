package prometheus

import (
	"github.com/quickshop/bothub/event"

	"github.com/prometheus/client_golang/prometheus"
)

type BridgeReader interface {
	Stats() event.Stats
}

type bridgeCollector struct {
	instance string
	bridge   BridgeReader

	publishedDesc   *prometheus.Desc
	deliveredDesc   *prometheus.Desc
	droppedDesc     *prometheus.Desc
	failedDesc      *prometheus.Desc
	subscribersDesc *prometheus.Desc
}

func NewBridgeCollector(instance string, b BridgeReader) prometheus.Collector {
	return &bridgeCollector{
		instance: instance,
		bridge:   b,
		publishedDesc: prometheus.NewDesc(
			"bridge_published_total",
			"Number of published action events by kind",
			[]string{"instance", "kind"}, nil),
		deliveredDesc: prometheus.NewDesc(
			"bridge_delivered_total",
			"Number of handler invocations",
			[]string{"instance"}, nil),
		droppedDesc: prometheus.NewDesc(
			"bridge_dropped_total",
			"Number of events without a subscriber",
			[]string{"instance"}, nil),
		failedDesc: prometheus.NewDesc(
			"bridge_failed_total",
			"Number of handler invocations that failed",
			[]string{"instance"}, nil),
		subscribersDesc: prometheus.NewDesc(
			"bridge_subscribers",
			"Number of subscribed handlers",
			[]string{"instance"}, nil),
	}
}

func (c *bridgeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.publishedDesc
	ch <- c.deliveredDesc
	ch <- c.droppedDesc
	ch <- c.failedDesc
	ch <- c.subscribersDesc
}

func (c *bridgeCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.bridge.Stats()

	for _, k := range event.Kinds {
		ch <- prometheus.MustNewConstMetric(c.publishedDesc, prometheus.CounterValue, float64(stats.Published[k]), c.instance, k.String())
	}

	ch <- prometheus.MustNewConstMetric(c.deliveredDesc, prometheus.CounterValue, float64(stats.Delivered), c.instance)
	ch <- prometheus.MustNewConstMetric(c.droppedDesc, prometheus.CounterValue, float64(stats.Dropped), c.instance)
	ch <- prometheus.MustNewConstMetric(c.failedDesc, prometheus.CounterValue, float64(stats.Failed), c.instance)
	ch <- prometheus.MustNewConstMetric(c.subscribersDesc, prometheus.GaugeValue, float64(stats.Subscribers), c.instance)
}
