package rate

import "github.com/prometheus/client_golang/prometheus"

var (
	windowGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fluidra_rate_window_calls",
		Help: "API calls currently inside the sliding one-minute window",
	})
	refusedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluidra_rate_refused_total",
		Help: "API calls refused by rate-limit admission",
	})
)

// MetricsCollectors exposes the shared rate-limit collectors.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{windowGauge, refusedTotal}
}
