// internal/metrics/metrics.go
//
// Prometheus instruments for the hangman engine.
// Registered on the default registry through promauto; the HTTP server
// exposes them at /metrics with promhttp.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RoundsTotal counts finished rounds by mode and result.
	RoundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hangman_rounds_total",
		Help: "Finished rounds by mode and result",
	}, []string{"mode", "result"})

	// GuessesTotal counts accepted letter guesses by who guessed.
	GuessesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hangman_guesses_total",
		Help: "Accepted letter guesses by guesser (human, engine)",
	}, []string{"guesser"})

	// CommandRejections counts rejected commands by command and reason.
	CommandRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hangman_command_rejections_total",
		Help: "Rejected commands by command and reason",
	}, []string{"command", "reason"})

	// SolverCandidates tracks the candidate subset size per engine guess.
	SolverCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hangman_solver_candidates",
		Help:    "Candidate words remaining when the engine picks a letter",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to ~16k
	})

	// Viewers is the number of connected display clients.
	Viewers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hangman_display_viewers",
		Help: "Connected display websocket clients",
	})
)
