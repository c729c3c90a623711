package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents counts processed webhook deliveries by provider and
	// outcome (paid, refused, refunded, ignored, unmatched).
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iq_report",
		Name:      "webhook_events_total",
		Help:      "Webhook deliveries processed, by provider and outcome.",
	}, []string{"provider", "outcome"})

	// FallbackMatches counts reconciliations that used the degraded
	// most-recent-pending strategy. Non-zero values deserve attention.
	FallbackMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "iq_report",
		Name:      "fallback_matches_total",
		Help:      "Payment events matched via the latest-pending fallback.",
	}, []string{"provider"})

	// SessionsCreated counts stored quiz attempts.
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "iq_report",
		Name:      "sessions_created_total",
		Help:      "Quiz sessions persisted.",
	})
)
