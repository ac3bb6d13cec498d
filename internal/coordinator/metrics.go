package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	refreshTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluidra_refresh_cycles_total",
		Help: "Number of refresh cycles started.",
	})
	refreshAuthFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluidra_refresh_auth_failures_total",
		Help: "Refresh cycles aborted by an authentication failure.",
	})
	refreshSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fluidra_refresh_last_success",
		Help: "1 if the last refresh cycle published a snapshot, 0 otherwise.",
	})
	refreshDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fluidra_refresh_duration_seconds",
		Help: "Duration of the last refresh cycle.",
	})
	lastRefreshTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fluidra_last_refresh_timestamp_seconds",
		Help: "Unix time of the last published snapshot.",
	})
	sourceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fluidra_source_failures_total",
		Help: "Data sources that failed after exhausting retries.",
	}, []string{"source"})
	rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluidra_calls_rate_limited_total",
		Help: "API calls refused by rate-limit admission.",
	})
	quickRefreshScheduled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluidra_quick_refresh_scheduled_total",
		Help: "Quick refreshes armed after control writes.",
	})
	controlWriteTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluidra_control_writes_total",
		Help: "Control writes acknowledged by the API.",
	})
	controlWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluidra_control_write_failures_total",
		Help: "Control writes that failed at the transport or API level.",
	})
)

func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		refreshTotal,
		refreshAuthFailures,
		refreshSuccess,
		refreshDuration,
		lastRefreshTime,
		sourceFailures,
		rateLimitedTotal,
		quickRefreshScheduled,
		controlWriteTotal,
		controlWriteFailures,
	}
}
