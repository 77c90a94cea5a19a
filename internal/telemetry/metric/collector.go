// Package metric provides Prometheus metrics for Keyline.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes build and uptime information about the running
// process as constant metrics.
type Collector struct {
	start     time.Time
	buildInfo *prometheus.Desc
	uptime    *prometheus.Desc
}

// NewCollector creates a collector that reports the given version and
// commit as labels on the build_info metric.
func NewCollector(version, commit string) *Collector {
	return &Collector{
		start: time.Now(),
		buildInfo: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "build_info"),
			"Build information for the running Keyline binary.",
			nil,
			prometheus.Labels{"version": version, "commit": commit},
		),
		uptime: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "uptime_seconds"),
			"Seconds since the server process started.",
			nil,
			nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.buildInfo
	ch <- c.uptime
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.buildInfo, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, time.Since(c.start).Seconds())
}
