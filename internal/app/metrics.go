package app

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	defaultMetrics *Metrics
	metricsOnce    sync.Once
)

// Metrics holds Prometheus metrics for the engine.
//
// Metrics:
//   - hearts_games_started_total
//   - hearts_games_finished_total
//   - hearts_deals_started_total
//   - hearts_tricks_resolved_total
//   - hearts_plays_total{actor} - "human" or "bot"
//   - hearts_rejected_actions_total{reason}
//   - hearts_lock_contention_total
//   - hearts_advance_duration_seconds
type Metrics struct {
	GamesStarted    prometheus.Counter
	GamesFinished   prometheus.Counter
	DealsStarted    prometheus.Counter
	TricksResolved  prometheus.Counter
	Plays           *prometheus.CounterVec
	Rejected        *prometheus.CounterVec
	LockContention  prometheus.Counter
	AdvanceDuration prometheus.Histogram
}

// DefaultMetrics registers the engine metrics with the default registry once.
func DefaultMetrics() *Metrics {
	metricsOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// NewMetrics registers a fresh set of metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GamesStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "hearts_games_started_total",
			Help: "Total number of games created",
		}),
		GamesFinished: f.NewCounter(prometheus.CounterOpts{
			Name: "hearts_games_finished_total",
			Help: "Total number of games that declared a winner",
		}),
		DealsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "hearts_deals_started_total",
			Help: "Total number of deals dealt",
		}),
		TricksResolved: f.NewCounter(prometheus.CounterOpts{
			Name: "hearts_tricks_resolved_total",
			Help: "Total number of tricks with a winner",
		}),
		Plays: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hearts_plays_total",
			Help: "Cards played, by actor kind",
		}, []string{"actor"}),
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hearts_rejected_actions_total",
			Help: "Illegal moves and protocol violations that were discarded",
		}, []string{"reason"}),
		LockContention: f.NewCounter(prometheus.CounterOpts{
			Name: "hearts_lock_contention_total",
			Help: "Mutations rejected because the game was busy",
		}),
		AdvanceDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hearts_advance_duration_seconds",
			Help:    "Duration of one Advance call",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
}
