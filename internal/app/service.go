// Package service runs matches on top of the rule engine: round logging,
// the end-of-match threshold, ranking persistence and score resets.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jokenpo/internal/adapters/repository"
	"github.com/okian/jokenpo/internal/adapters/roundlog"
	"github.com/okian/jokenpo/internal/domain/engine"
	"github.com/okian/jokenpo/internal/domain/model"
	"github.com/okian/jokenpo/internal/domain/rules"
	"github.com/okian/jokenpo/pkg/logger"
	"github.com/okian/jokenpo/pkg/metrics"
)

// DefaultWinThreshold ends a match once either side reaches it.
const DefaultWinThreshold = 10

// RoundLog receives one record per round of a match.
type RoundLog interface {
	Write(r model.Round) error
	Close() error
}

// RoundLogFactory opens the round log for a new match.
type RoundLogFactory func() (RoundLog, error)

// Service owns the engine and the ranking store.
type Service struct {
	mu sync.Mutex

	engine      *engine.Engine
	ranking     repository.Store
	newRoundLog RoundLogFactory
	threshold   int
	now         func() time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEngine sets the rule engine, e.g. one built with a seeded source.
func WithEngine(e *engine.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithRanking sets the ranking store.
func WithRanking(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.ranking = store
		}
	}
}

// WithRoundLogFactory sets how each match opens its round log.
func WithRoundLogFactory(f RoundLogFactory) Option {
	return func(s *Service) {
		if f != nil {
			s.newRoundLog = f
		}
	}
}

// WithRoundLogPath writes round logs to path, truncating it on every match.
func WithRoundLogPath(path string) Option {
	return WithRoundLogFactory(func() (RoundLog, error) {
		return roundlog.Create(path)
	})
}

// WithWinThreshold sets the score that ends a match.
func WithWinThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithClock overrides time.Now for round timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service. Without options it uses a clock-seeded engine,
// an in-memory ranking and a discarded round log.
func New(opts ...Option) *Service {
	s := &Service{
		threshold: DefaultWinThreshold,
		now:       time.Now,
		newRoundLog: func() (RoundLog, error) {
			return roundlog.New(io.Discard), nil
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = engine.New()
	}
	if s.ranking == nil {
		s.ranking = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

// Threshold returns the score that ends a match.
func (s *Service) Threshold() int { return s.threshold }

// Scores returns the current match state.
func (s *Service) Scores() engine.Scores {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Scores()
}

// ResetScores sets both scores to zero.
func (s *Service) ResetScores(ctx context.Context) {
	s.mu.Lock()
	s.engine.ResetScores()
	s.mu.Unlock()

	metrics.RecordScoreReset()
	s.logger.Info(ctx, "scores reset")
}

// Ranking returns up to n ranked entries; n <= 0 returns all.
func (s *Service) Ranking(ctx context.Context, n int) ([]model.Entry, error) {
	entries, err := s.ranking.TopN(ctx, n)
	if err != nil {
		metrics.RecordRankingError()
		s.logger.Error(ctx, "ranking read failed", logger.Error(err))
		return nil, fmt.Errorf("read ranking: %w", err)
	}
	return entries, nil
}

// Close releases the ranking store.
func (s *Service) Close() error {
	return s.ranking.Close()
}

// StartMatch begins a match for player. Scores carry over from before;
// use ResetScores for a clean start.
func (s *Service) StartMatch(ctx context.Context, player string) (*Match, error) {
	player, err := repository.ValidateName(player)
	if err != nil {
		return nil, err
	}
	log, err := s.newRoundLog()
	if err != nil {
		metrics.RecordRoundLogError()
		return nil, fmt.Errorf("start match: %w", err)
	}

	m := &Match{
		svc:       s,
		ID:        uuid.NewString(),
		Player:    player,
		StartedAt: s.now(),
		log:       log,
	}
	s.logger.Info(ctx, "match started",
		logger.String("match_id", m.ID),
		logger.String("player", player),
		logger.Int("threshold", s.threshold),
	)
	return m, nil
}

// Match is a named sequence of rounds that ends at the threshold.
type Match struct {
	svc *Service

	ID        string
	Player    string
	StartedAt time.Time

	rounds   int
	over     bool
	finished bool
	closed   bool
	log      RoundLog
}

// Play runs one round. The returned round has MatchOver set once either
// score reaches the threshold; the caller then calls Finish.
func (m *Match) Play(ctx context.Context, human rules.Item) (model.Round, error) {
	s := m.svc
	s.mu.Lock()
	if m.over {
		s.mu.Unlock()
		return model.Round{}, ErrMatchOver
	}
	opponent, outcome, err := s.engine.PlayRound(human)
	if err != nil {
		s.mu.Unlock()
		return model.Round{}, err
	}
	m.rounds++
	scores := s.engine.Scores()
	r := model.Round{
		MatchID:       m.ID,
		Number:        m.rounds,
		Human:         human,
		Opponent:      opponent,
		Outcome:       outcome,
		HumanScore:    scores.Human,
		OpponentScore: scores.Opponent,
		PlayedAt:      s.now(),
	}
	// Overshoot past the threshold is kept as scored.
	if scores.Human >= s.threshold || scores.Opponent >= s.threshold {
		r.MatchOver = true
		m.over = true
	}
	s.mu.Unlock()

	metrics.RecordRound(outcome.String(), opponent.String())
	if err := m.log.Write(r); err != nil {
		metrics.RecordRoundLogError()
		s.logger.Error(ctx, "round log write failed", logger.String("match_id", m.ID), logger.Error(err))
	}

	s.logger.Debug(ctx, "round played",
		logger.String("match_id", m.ID),
		logger.Int("round", r.Number),
		logger.String("human", human.String()),
		logger.String("opponent", opponent.String()),
		logger.String("outcome", outcome.String()),
		logger.Int("human_score", r.HumanScore),
		logger.Int("opponent_score", r.OpponentScore),
		logger.Bool("match_over", r.MatchOver),
	)
	return r, nil
}

// Over reports whether the threshold was reached.
func (m *Match) Over() bool {
	m.svc.mu.Lock()
	defer m.svc.mu.Unlock()
	return m.over
}

// Rounds returns the number of rounds played.
func (m *Match) Rounds() int {
	m.svc.mu.Lock()
	defer m.svc.mu.Unlock()
	return m.rounds
}

// Finish saves the player's final score to the ranking, resets the scores
// and closes the round log. Scores are reset even when the save fails.
// Calling it again after success is a no-op.
func (m *Match) Finish(ctx context.Context) error {
	s := m.svc
	s.mu.Lock()
	if !m.over {
		s.mu.Unlock()
		return ErrMatchNotOver
	}
	if m.finished {
		s.mu.Unlock()
		return nil
	}
	m.finished = true
	final := s.engine.Scores()
	s.engine.ResetScores()
	s.mu.Unlock()

	result := metrics.ResultLost
	if final.Human >= s.threshold {
		result = metrics.ResultWon
	}
	metrics.RecordMatch(result)
	metrics.RecordScoreReset()

	s.logger.Info(ctx, "match finished",
		logger.String("match_id", m.ID),
		logger.String("player", m.Player),
		logger.String("result", result),
		logger.Int("rounds", m.rounds),
		logger.Int("human_score", final.Human),
		logger.Int("opponent_score", final.Opponent),
	)

	closeErr := m.Close()
	if err := s.ranking.Save(ctx, m.Player, final.Human); err != nil {
		metrics.RecordRankingError()
		s.logger.Error(ctx, "ranking save failed", logger.String("match_id", m.ID), logger.Error(err))
		return fmt.Errorf("save ranking: %w", err)
	}
	metrics.RecordRankingSave()
	return closeErr
}

// Close releases the round log. It is safe to call more than once; scores
// are left as they are so a player can leave mid-match.
func (m *Match) Close() error {
	m.svc.mu.Lock()
	defer m.svc.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if err := m.log.Close(); err != nil {
		return fmt.Errorf("close round log: %w", err)
	}
	return nil
}
