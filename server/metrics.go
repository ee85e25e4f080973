package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the wrapper.
type Metrics struct {
	// Logins counts login attempts by method (password, google) and result.
	Logins *prometheus.CounterVec
	// UserLookups counts current-user resolutions by source (cache, api, none).
	UserLookups *prometheus.CounterVec
	// APIErrors counts failed identity API calls by operation.
	APIErrors *prometheus.CounterVec
}

// NewMetrics registers the collectors with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stormpath_logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"method", "result"},
		),
		UserLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stormpath_user_lookups_total",
				Help: "Total number of current user lookups",
			},
			[]string{"source"},
		),
		APIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stormpath_api_errors_total",
				Help: "Total number of failed identity API calls",
			},
			[]string{"operation", "status"},
		),
	}
}
