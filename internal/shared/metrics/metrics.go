package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesHandled counts inbound updates by the router route that handled them.
	UpdatesHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taglessbot_updates_handled_total",
			Help: "The total number of inbound updates handled.",
		},
		[]string{"route"},
	)

	// ForwardOutcomes counts forward-tag decisions by outcome and reason.
	ForwardOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taglessbot_forward_outcomes_total",
			Help: "The total number of forwarded posts by outcome.",
		},
		[]string{"outcome", "reason"},
	)

	// BroadcastDeliveries counts broadcast sends by target and result.
	BroadcastDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taglessbot_broadcast_deliveries_total",
			Help: "The total number of broadcast deliveries.",
		},
		[]string{"target", "result"},
	)

	// EntitlementChanges counts premium grants and revocations.
	EntitlementChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taglessbot_entitlement_changes_total",
			Help: "The total number of premium grants and revocations.",
		},
		[]string{"action"},
	)

	// ChannelRegistrations counts addchannel attempts by result.
	ChannelRegistrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taglessbot_channel_registrations_total",
			Help: "The total number of channel registration attempts.",
		},
		[]string{"result"},
	)

	// TransportErrors counts failed Bot API calls by method.
	TransportErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taglessbot_transport_errors_total",
			Help: "The total number of failed Bot API calls.",
		},
		[]string{"method"},
	)
)
