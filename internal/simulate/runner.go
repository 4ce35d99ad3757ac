// Package simulate plays batches of automatic matches to check the
// opponent draw and the scoring rules at volume.
package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/jokenpo/internal/adapters/repository"
	service "github.com/okian/jokenpo/internal/app"
	"github.com/okian/jokenpo/internal/domain/engine"
	"github.com/okian/jokenpo/internal/domain/rules"
	"github.com/okian/jokenpo/pkg/logger"
)

// counters collects results from all workers.
type counters struct {
	humanWins    atomic.Int64
	opponentWins atomic.Int64
	abandoned    atomic.Int64
	rounds       atomic.Int64
	outcomes     [3]atomic.Int64
	items        [len(rules.Items) + 1]atomic.Int64
}

// Run plays cfg.Matches matches split over cfg.Workers goroutines. Worker w
// plays matches w, w+Workers, ... so a fixed seed and worker count always
// produce the same totals.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	stats := &Stats{Seed: seed, StartTime: time.Now()}
	logger.Get().Info(ctx, "starting simulation",
		logger.Int("matches", cfg.Matches),
		logger.Int("workers", cfg.Workers),
		logger.Int("threshold", cfg.Threshold),
		logger.Any("seed", seed))

	ranking := repository.NewMemoryStore()
	var c counters
	errs := make(chan error, cfg.Workers)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			if err := runWorker(ctx, cfg, seed, w, ranking, &c); err != nil {
				errs <- err
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return nil, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	stats.HumanWins = int(c.humanWins.Load())
	stats.OpponentWins = int(c.opponentWins.Load())
	stats.Abandoned = int(c.abandoned.Load())
	stats.Matches = stats.HumanWins + stats.OpponentWins + stats.Abandoned
	stats.Rounds = int(c.rounds.Load())
	stats.Wins = int(c.outcomes[rules.Win].Load())
	stats.Losses = int(c.outcomes[rules.Loss].Load())
	stats.Ties = int(c.outcomes[rules.Tie].Load())
	stats.OpponentItems = make(map[rules.Item]int, len(rules.Items))
	for _, it := range rules.Items {
		stats.OpponentItems[it] = int(c.items[it].Load())
	}
	entries, err := ranking.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count ranking: %w", err)
	}
	stats.RankingEntries = entries

	displayFinalStats(ctx, stats)
	return stats, nil
}

// runWorker owns one service, and so one engine, for its share of matches.
func runWorker(ctx context.Context, cfg *Config, seed int64, w int, ranking repository.Store, c *counters) error {
	log := logger.Named(fmt.Sprintf("simulate-%d", w))
	svc := service.New(
		service.WithEngine(engine.New(engine.WithSeed(seed+int64(2*w+1)))),
		service.WithRanking(ranking),
		service.WithWinThreshold(cfg.Threshold),
		service.WithLogger(log),
	)
	player := rand.New(rand.NewSource(seed + int64(2*w+2))) //nolint:gosec // simulated player, not security sensitive

	for i := w; i < cfg.Matches; i += cfg.Workers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := playMatch(ctx, cfg, svc, player, i, c, log); err != nil {
			return err
		}
	}
	return nil
}

func playMatch(ctx context.Context, cfg *Config, svc *service.Service, player *rand.Rand, i int, c *counters, log logger.Logger) error {
	m, err := svc.StartMatch(ctx, fmt.Sprintf("sim-%d", i))
	if err != nil {
		return fmt.Errorf("start match %d: %w", i, err)
	}
	for rounds := 0; rounds < MaxRoundsPerMatch; rounds++ {
		r, err := m.Play(ctx, rules.Items[player.Intn(len(rules.Items))])
		if err != nil {
			_ = m.Close()
			return fmt.Errorf("match %d round %d: %w", i, rounds+1, err)
		}
		c.rounds.Add(1)
		c.outcomes[r.Outcome].Add(1)
		c.items[r.Opponent].Add(1)
		if !r.MatchOver {
			continue
		}
		if r.HumanWon(cfg.Threshold) {
			c.humanWins.Add(1)
		} else {
			c.opponentWins.Add(1)
		}
		if cfg.Verbose {
			log.Info(ctx, "match result",
				logger.Int("match", i),
				logger.Int("rounds", r.Number),
				logger.Int("human", r.HumanScore),
				logger.Int("opponent", r.OpponentScore))
		}
		return m.Finish(ctx)
	}

	c.abandoned.Add(1)
	log.Warn(ctx, "match abandoned", logger.Int("match", i), logger.Int("rounds", MaxRoundsPerMatch))
	svc.ResetScores(ctx)
	return m.Close()
}

// displayFinalStats logs the final simulation statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var humanWinRate, roundsPerMatch float64
	if stats.Matches > 0 {
		humanWinRate = float64(stats.HumanWins) / float64(stats.Matches) * PercentageMultiplier
		roundsPerMatch = float64(stats.Rounds) / float64(stats.Matches)
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("matches", stats.Matches),
		logger.Int("humanWins", stats.HumanWins),
		logger.Int("opponentWins", stats.OpponentWins),
		logger.Int("abandoned", stats.Abandoned),
		logger.Int("rounds", stats.Rounds),
		logger.Int("wins", stats.Wins),
		logger.Int("losses", stats.Losses),
		logger.Int("ties", stats.Ties),
		logger.Int("rankingEntries", stats.RankingEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Any("humanWinRate", humanWinRate),
		logger.Any("roundsPerMatch", roundsPerMatch))
}
