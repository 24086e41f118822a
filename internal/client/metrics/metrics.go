// Package metrics exposes Prometheus collectors for the session layer:
// refresh exchanges, 401 retries, session status and credential durability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tictac_client"

// Refresh results.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
	RefreshSkipped = "skipped" // token already rotated by an earlier exchange
)

var statuses = []string{"unknown", "loading", "authenticated", "unauthenticated"}

type Collectors struct {
	RefreshTotal       *prometheus.CounterVec
	RetryTotal         *prometheus.CounterVec
	SessionStatus      *prometheus.GaugeVec
	CredentialsDurable prometheus.Gauge
}

// New creates the collectors and registers them with reg (nil skips registration).
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "Refresh token exchanges by result.",
		}, []string{"result"}),
		RetryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_retry_total",
			Help:      "Requests rejected with 401 by retry outcome.",
		}, []string{"outcome"}),
		SessionStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_status",
			Help:      "1 for the current session status, 0 otherwise.",
		}, []string{"status"}),
		CredentialsDurable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "credentials_durable",
			Help:      "1 when credentials are persisted across restarts.",
		}),
	}
	c.ObserveState("unknown")

	if reg != nil {
		reg.MustRegister(c.RefreshTotal, c.RetryTotal, c.SessionStatus, c.CredentialsDurable)
	}
	return c
}

func (c *Collectors) ObserveRefresh(result string) {
	c.RefreshTotal.WithLabelValues(result).Inc()
}

func (c *Collectors) ObserveRetry(outcome string) {
	c.RetryTotal.WithLabelValues(outcome).Inc()
}

func (c *Collectors) ObserveState(status string) {
	for _, s := range statuses {
		v := 0.0
		if s == status {
			v = 1
		}
		c.SessionStatus.WithLabelValues(s).Set(v)
	}
}

func (c *Collectors) SetDurable(durable bool) {
	if durable {
		c.CredentialsDurable.Set(1)
		return
	}
	c.CredentialsDurable.Set(0)
}
