// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_dispatch_total",
			Help: "Total number of dispatch calls that passed gating",
		},
		[]string{"event_key", "success"},
	)

	DispatchRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_dispatch_rejected_total",
			Help: "Total number of dispatch calls rejected by a gating check",
		},
		[]string{"event_key", "reason"},
	)

	ChannelSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_channel_sends_total",
			Help: "Per-channel delivery attempts by result",
		},
		[]string{"channel", "result"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "notify_dispatch_duration_seconds",
			Help: "Duration of a full dispatch including channel fan-out",
		},
		[]string{"event_key"},
	)

	PushSubscriptionsDeactivated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_push_subscriptions_deactivated_total",
			Help: "Push subscriptions marked inactive after a delivery failure",
		},
	)
)
