// Package metrics exposes the Prometheus collectors for the vault.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesSent counts recorded messages by chat kind (broadcast, direct, assistant)
	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calcvault_messages_sent_total",
			Help: "Messages appended to the log, by chat kind.",
		},
		[]string{"chat"},
	)

	// AssistantReplies counts assistant exchanges by outcome (ok, fallback)
	AssistantReplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calcvault_assistant_replies_total",
			Help: "Assistant exchanges, by outcome.",
		},
		[]string{"outcome"},
	)

	// SnapshotWrites counts snapshot persists by result (ok, error)
	SnapshotWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calcvault_snapshot_writes_total",
			Help: "Snapshot writes to the persistence adapter, by result.",
		},
		[]string{"result"},
	)

	// Unlocks counts fired unlock transitions
	Unlocks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "calcvault_unlocks_total",
			Help: "Unlock transitions fired by the calculator sequencer.",
		},
	)

	// AuthAttempts counts register/login attempts by result
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calcvault_auth_attempts_total",
			Help: "Registration and login attempts, by operation and result.",
		},
		[]string{"op", "result"},
	)

	// RateLimited counts requests rejected by the per-address limiter
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calcvault_rate_limited_total",
			Help: "Requests rejected with 429, by path.",
		},
		[]string{"path"},
	)

	// WSClients tracks connected websocket clients
	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "calcvault_ws_clients",
			Help: "Currently connected websocket clients.",
		},
	)
)

func init() {
	prometheus.MustRegister(MessagesSent)
	prometheus.MustRegister(AssistantReplies)
	prometheus.MustRegister(SnapshotWrites)
	prometheus.MustRegister(Unlocks)
	prometheus.MustRegister(AuthAttempts)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(WSClients)
}

// Result maps an error to the "ok"/"error" label value
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
