package channel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricChannelsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loser_pays_channels_active",
		Help: "Channels with at least one local member.",
	})
	metricMembers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loser_pays_channel_members",
		Help: "Local connections registered across all channels.",
	})
	metricBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loser_pays_broadcasts_total",
		Help: "Messages published to the broker.",
	})
	metricBroadcastErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loser_pays_broadcast_errors_total",
		Help: "Broker publish failures.",
	})
	metricRelayDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loser_pays_relay_delivered_total",
		Help: "Messages handed to local connections by the relay.",
	})
	metricRelayOrphaned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loser_pays_relay_orphaned_total",
		Help: "Broker messages for channels with no local members.",
	})
	metricSendDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loser_pays_relay_send_dropped_total",
		Help: "Messages dropped because a connection's send buffer was full.",
	})
)
