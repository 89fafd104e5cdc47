package sessions

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "greenroom"

// Destroy reasons.
const (
	reasonLogout  = "logout"
	reasonExpired = "expired"
)

var (
	sessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "created_total",
			Help:      "Total sessions opened by successful logins",
		},
	)

	sessionsDestroyed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "destroyed_total",
			Help:      "Total sessions removed, by reason",
		},
		[]string{"reason"},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Sessions currently live, sampled by the janitor",
		},
	)
)

// recordSessionCreated records a session creation metric.
func recordSessionCreated() {
	sessionsCreated.Inc()
}

// recordSessionDestroyed records a session removal metric.
func recordSessionDestroyed(reason string) {
	sessionsDestroyed.WithLabelValues(reason).Inc()
}

// recordSessionsSwept records janitor removals.
func recordSessionsSwept(count int64) {
	sessionsDestroyed.WithLabelValues(reasonExpired).Add(float64(count))
}

// recordActiveSessions updates the live session gauge.
func recordActiveSessions(count int64) {
	sessionsActive.Set(float64(count))
}
