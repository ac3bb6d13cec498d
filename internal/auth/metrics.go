package auth

import "github.com/prometheus/client_golang/prometheus"

var (
	authSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluidra_auth_success_total",
		Help: "Successful Cognito authentications and refreshes",
	})
	authFailure = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fluidra_auth_failure_total",
		Help: "Failed Cognito authentications",
	})
	tokenValid = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fluidra_auth_token_valid",
		Help: "Whether a valid access token is currently cached (1=yes)",
	})
)

// MetricsCollectors exposes the shared auth collectors.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{authSuccess, authFailure, tokenValid}
}
