package simulate

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/jokenpo/internal/domain/rules"
)

// Runner configuration constants.
const (
	DefaultMatches       = 1000
	DefaultThreshold     = 10
	MaxRoundsPerMatch    = 10000
	PercentageMultiplier = 100
)

// ErrInvalidConfig is returned by Run for a config it cannot execute.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config holds configuration for a simulation run
type Config struct {
	Matches   int   // Number of matches to play
	Workers   int   // Number of concurrent workers, each with its own engine
	Seed      int64 // Base seed; 0 picks one from the clock
	Threshold int   // Score that ends a match
	Verbose   bool  // Log every finished match
}

// Stats holds the merged results of a run
type Stats struct {
	Seed           int64
	Matches        int
	HumanWins      int
	OpponentWins   int
	Abandoned      int
	Rounds         int
	Wins           int
	Losses         int
	Ties           int
	OpponentItems  map[rules.Item]int
	RankingEntries int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}

func (c *Config) validate() error {
	switch {
	case c.Matches <= 0:
		return fmt.Errorf("%w: matches must be positive, got %d", ErrInvalidConfig, c.Matches)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.Threshold <= 0:
		return fmt.Errorf("%w: threshold must be positive, got %d", ErrInvalidConfig, c.Threshold)
	}
	return nil
}
