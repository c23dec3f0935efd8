package observe

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	onlineSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "duel_online_sessions",
		Help: "Number of authenticated sessions",
	})

	clientConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "duel_gateway_client_connections",
		Help: "Number of open client WebSocket connections",
	})

	envelopesRouted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_envelopes_routed_total",
			Help: "Envelopes routed by the gateway, by direction",
		},
		[]string{"direction"}, // inbound|outbound
	)

	envelopesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_envelopes_dropped_total",
			Help: "Envelopes dropped, by reason",
		},
		[]string{"reason"}, // no_target|conn_closed|backend_down|backpressure
	)

	matchesStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duel_matches_started_total",
		Help: "Matches started",
	})

	matchesEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_matches_ended_total",
			Help: "Matches ended, by outcome",
		},
		[]string{"outcome"}, // completed|forfeited
	)

	roundsRevealed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duel_rounds_revealed_total",
		Help: "Rounds revealed",
	})

	challengesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_challenges_total",
			Help: "Challenge terminal transitions, by status",
		},
		[]string{"status"}, // accepted|declined|timeout|cancelled
	)
)

func init() {
	prometheus.MustRegister(
		onlineSessions,
		clientConns,
		envelopesRouted,
		envelopesDropped,
		matchesStarted,
		matchesEnded,
		roundsRevealed,
		challengesTotal,
	)
}

func AddSessions(delta float64)    { onlineSessions.Add(delta) }
func AddClientConns(delta float64) { clientConns.Add(delta) }
func IncRouted(direction string)   { envelopesRouted.WithLabelValues(direction).Inc() }
func IncDropped(reason string)     { envelopesDropped.WithLabelValues(reason).Inc() }
func IncMatchStarted()             { matchesStarted.Inc() }
func IncMatchEnded(outcome string) { matchesEnded.WithLabelValues(outcome).Inc() }
func IncRoundRevealed()            { roundsRevealed.Inc() }
func IncChallenge(status string)   { challengesTotal.WithLabelValues(status).Inc() }
