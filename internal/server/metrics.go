package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Roagert/fluidra-pool/internal/auth"
	"github.com/Roagert/fluidra-pool/internal/coordinator"
	"github.com/Roagert/fluidra-pool/internal/rate"
	"github.com/Roagert/fluidra-pool/internal/registry"
)

// MetricsRegistry builds the Prometheus registry from every package's
// collectors.
func MetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	for _, collectors := range [][]prometheus.Collector{
		coordinator.MetricsCollectors(),
		rate.MetricsCollectors(),
		auth.MetricsCollectors(),
		registry.MetricsCollectors(),
	} {
		for _, c := range collectors {
			reg.MustRegister(c)
		}
	}
	return reg
}

// MetricsHandler exposes the Prometheus registry.
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
