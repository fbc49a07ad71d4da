// Package services – Prometheus instrumentation for the dispatch pipeline.
//
// Labels are kept coarse (notification type, never tenant or token) so
// cardinality stays bounded regardless of tenant count.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// pushesSent counts gateway tickets with status ok, by notification type.
	pushesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_notifications_sent_total",
			Help: "Total push notifications accepted by the gateway.",
		},
		[]string{"type"},
	)

	// pushesFailed counts error tickets and whole-batch failures, by type.
	pushesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_notifications_failed_total",
			Help: "Total push notifications that failed delivery.",
		},
		[]string{"type"},
	)

	// tokensRevoked counts device tokens revoked after permanent-invalidity
	// tickets.
	tokensRevoked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_tokens_revoked_total",
			Help: "Total device tokens revoked after invalid-token tickets.",
		},
	)

	// dispatchesRejected counts dispatch calls rejected by the per-tenant
	// rate limiter.
	dispatchesRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_dispatches_rejected_total",
			Help: "Total dispatch calls rejected by the tenant rate limiter.",
		},
	)
)

func init() {
	prometheus.MustRegister(pushesSent, pushesFailed, tokensRevoked, dispatchesRejected)
}
