// Package metrics provides Prometheus metrics for the jokenpo game.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for match results.
const (
	ResultWon  = "won"
	ResultLost = "lost"
)

// Manager owns the game counters.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Gameplay
	rounds         *prometheus.CounterVec
	opponentItems  *prometheus.CounterVec
	matches        *prometheus.CounterVec
	scoreResets    prometheus.Counter
	roundLogErrors prometheus.Counter

	// Ranking store
	rankingSaves        prometheus.Counter
	rankingErrors       prometheus.Counter
	rankingQueryLatency prometheus.Histogram

	errorRateByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "jokenpo",
		subsystem:        "game",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rounds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rounds_total",
		Help:      "Rounds played by outcome from the human's perspective",
	}, []string{"outcome"})

	m.opponentItems = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "opponent_items_total",
		Help:      "Opponent draws by item",
	}, []string{"item"})

	m.matches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_total",
		Help:      "Finished matches by result",
	}, []string{"result"})

	m.scoreResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_resets_total",
		Help:      "Explicit and end-of-match score resets",
	})

	m.roundLogErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "round_log_errors_total",
		Help:      "Failed round log writes",
	})

	m.rankingSaves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_saves_total",
		Help:      "Final scores written to the ranking store",
	})

	m.rankingErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_errors_total",
		Help:      "Ranking store read or write failures",
	})

	m.rankingQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_query_latency_milliseconds",
		Help:      "Ranking read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Errors by component and type",
	}, []string{"component", "error_type"})
}

// RecordRound counts a played round and the opponent's draw.
func (m *Manager) RecordRound(outcome, opponentItem string) {
	m.rounds.WithLabelValues(outcome).Inc()
	m.opponentItems.WithLabelValues(opponentItem).Inc()
}

// RecordMatch counts a finished match; result is ResultWon or ResultLost.
func (m *Manager) RecordMatch(result string) {
	m.matches.WithLabelValues(result).Inc()
}

// RecordScoreReset increments the reset counter.
func (m *Manager) RecordScoreReset() { m.scoreResets.Inc() }

// RecordRoundLogError increments the round log error counter.
func (m *Manager) RecordRoundLogError() { m.roundLogErrors.Inc() }

// RecordRankingSave increments the ranking save counter.
func (m *Manager) RecordRankingSave() { m.rankingSaves.Inc() }

// RecordRankingError increments the ranking error counter.
func (m *Manager) RecordRankingError() { m.rankingErrors.Inc() }

// RecordRankingQueryLatency records a ranking read latency.
func (m *Manager) RecordRankingQueryLatency(latencyMs float64) {
	m.rankingQueryLatency.Observe(latencyMs)
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// Package-level helpers bound to the global manager.

// RecordRound counts a played round on the global manager.
func RecordRound(outcome, opponentItem string) { globalManager.RecordRound(outcome, opponentItem) }

// RecordMatch counts a finished match on the global manager.
func RecordMatch(result string) { globalManager.RecordMatch(result) }

// RecordScoreReset counts a score reset on the global manager.
func RecordScoreReset() { globalManager.RecordScoreReset() }

// RecordRoundLogError counts a round log failure on the global manager.
func RecordRoundLogError() { globalManager.RecordRoundLogError() }

// RecordRankingSave counts a ranking save on the global manager.
func RecordRankingSave() { globalManager.RecordRankingSave() }

// RecordRankingError counts a ranking failure on the global manager.
func RecordRankingError() { globalManager.RecordRankingError() }

// RecordRankingQueryLatency records a ranking read latency on the global manager.
func RecordRankingQueryLatency(latencyMs float64) {
	globalManager.RecordRankingQueryLatency(latencyMs)
}

// RecordErrorByComponent records a labelled error on the global manager.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the custom registry in the text exposition format,
// suitable for a node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
