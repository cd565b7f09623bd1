package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Currently open websocket connections",
		},
	)
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_events_total",
			Help: "Inbound events handled, by event name and result",
		},
		[]string{"event", "result"},
	)
	GamesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "games_active",
			Help: "Game sessions currently held in the game table",
		},
	)
	GamesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "games_created_total",
			Help: "Game sessions created",
		},
	)
	GamesFinished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "games_finished_total",
			Help: "Game sessions whose board filled up",
		},
	)
	GamesCleanedUp = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "games_cleaned_up_total",
			Help: "Finished game sessions removed by the deferred cleanup",
		},
	)
	SeatEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "seat_evictions_total",
			Help: "Connections removed from a game room because both seats were taken",
		},
	)
)

func init() {
	prometheus.MustRegister(ConnectionsActive)
	prometheus.MustRegister(EventsTotal)
	prometheus.MustRegister(GamesActive)
	prometheus.MustRegister(GamesCreated)
	prometheus.MustRegister(GamesFinished)
	prometheus.MustRegister(GamesCleanedUp)
	prometheus.MustRegister(SeatEvictions)
}
