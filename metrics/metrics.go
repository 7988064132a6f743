// Package metrics collects and exposes Prometheus metrics for the
// authentication subsystem.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records authentication metrics against a registry
type Collector struct {
	registry      *prometheus.Registry
	loginAttempts *prometheus.CounterVec
	sessions      prometheus.Counter
	logouts       prometheus.Counter
}

// NewCollector creates a Collector with its own registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "insights_login_attempts_total",
			Help: "Login attempts by provider and outcome",
		}, []string{"provider", "outcome"}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "insights_sessions_established_total",
			Help: "Sessions established after successful logins",
		}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "insights_logouts_total",
			Help: "Sessions destroyed by explicit logout",
		}),
	}

	registry.MustRegister(c.loginAttempts, c.sessions, c.logouts)

	return c
}

// RecordLoginAttempt records one login attempt outcome
func (c *Collector) RecordLoginAttempt(provider, outcome string) {
	c.loginAttempts.WithLabelValues(provider, outcome).Inc()
}

// RecordSessionEstablished records a successfully established session
func (c *Collector) RecordSessionEstablished() {
	c.sessions.Inc()
}

// RecordLogout records an explicit logout
func (c *Collector) RecordLogout() {
	c.logouts.Inc()
}

// Handler returns the Prometheus exposition handler
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
