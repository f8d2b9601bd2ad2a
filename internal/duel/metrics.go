package duel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queueSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "duel_queue_size",
		Help: "Players currently waiting in the matchmaking queue.",
	})

	duelsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duel_sessions_started_total",
		Help: "Duel sessions created from a matched pair.",
	})

	duelsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "duel_sessions_finished_total",
		Help: "Duel sessions reaching the terminal state, by reason.",
	}, []string{"reason"})

	roundsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "duel_rounds_resolved_total",
		Help: "Rounds resolved, by trigger (answers or timeout).",
	}, []string{"trigger"})
)
