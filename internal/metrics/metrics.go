package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classroom_active_sessions",
			Help: "Number of connected avatar clients",
		},
	)

	Intents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_intents_total",
			Help: "Transcripts interpreted, by intent",
		},
		[]string{"intent"},
	)

	AnimationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_animation_transitions_total",
			Help: "Animation state transitions, by target state",
		},
		[]string{"state"},
	)

	Utterances = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classroom_utterances_total",
			Help: "Utterances submitted for synthesis",
		},
	)

	MovesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classroom_moves_rejected_total",
			Help: "Movement requests rejected during cooldown",
		},
	)

	SpeechAborted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classroom_speech_aborted_total",
			Help: "Speech requests dropped before synthesis, by reason",
		},
		[]string{"reason"},
	)
)
