package registry

import (
	"github.com/prometheus/client_golang/prometheus"
)

var accountsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "fluidra_registered_accounts",
	Help: "Number of accounts with a live coordinator.",
})

func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{accountsGauge}
}
