// Package engine applies the weighted scoring transition to a two-player match.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/jokenpo/internal/domain/rules"
)

// Source draws integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Scores is the running match state. Both counters are never negative.
type Scores struct {
	Human    int
	Opponent int
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSource injects the random source used to draw the opponent item.
func WithSource(src Source) Option {
	return func(e *Engine) {
		if src != nil {
			e.src = src
		}
	}
}

// WithSeed uses a deterministic source seeded with seed. Zero keeps the default.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		if seed != 0 {
			e.src = rand.New(rand.NewSource(seed)) //nolint:gosec // game draw, not security sensitive
		}
	}
}

// Engine owns the match state. It is not safe for concurrent use.
type Engine struct {
	src    Source
	scores Scores
}

// New creates an engine with zero scores.
func New(opts ...Option) *Engine {
	e := &Engine{
		src: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // game draw, not security sensitive
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PlayRound draws the opponent item, resolves the round from the human's
// perspective and applies the score transition.
func (e *Engine) PlayRound(human rules.Item) (rules.Item, rules.Outcome, error) {
	if !human.Valid() {
		return 0, rules.Tie, fmt.Errorf("play round: %w: %d", rules.ErrInvalidItem, int(human))
	}
	opponent := rules.Items[e.src.Intn(len(rules.Items))]
	outcome := rules.Resolve(human, opponent)
	e.apply(human, opponent, outcome)
	return opponent, outcome, nil
}

func (e *Engine) apply(human, opponent rules.Item, outcome rules.Outcome) {
	switch outcome {
	case rules.Win:
		e.scores.Human += human.Weight()
		e.scores.Opponent = max(0, e.scores.Opponent-opponent.Weight())
	case rules.Loss:
		e.scores.Opponent += opponent.Weight()
		e.scores.Human = max(0, e.scores.Human-human.Weight())
	}
}

// ResetScores sets both scores to zero.
func (e *Engine) ResetScores() {
	e.scores = Scores{}
}

// Scores returns the current match state.
func (e *Engine) Scores() Scores {
	return e.scores
}
