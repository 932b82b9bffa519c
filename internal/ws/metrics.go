package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loser_pays_ws_sessions_active",
		Help: "Open room sessions.",
	})
	metricLobbyActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loser_pays_ws_lobby_active",
		Help: "Open rooms-feed connections.",
	})
	metricEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loser_pays_ws_events_total",
		Help: "Inbound room events handled, by type.",
	}, []string{"type"})
	metricEventErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loser_pays_ws_event_errors_total",
		Help: "Error frames sent to clients, by code.",
	}, []string{"code"})
	metricSendDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loser_pays_ws_send_dropped_total",
		Help: "Frames dropped because a client queue was full or closed.",
	})
)
