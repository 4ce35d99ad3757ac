package simulate

import (
	"fmt"
	"io"

	"github.com/okian/jokenpo/internal/domain/rules"
)

// ShowHelp prints usage information for the simulator.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Jokenpo Match Simulator
=======================

Plays automatic matches against the rule engine and reports how the
rounds, outcomes and opponent items were distributed.

Usage:
  go run ./cmd/simulate [options]

Options:
  -matches int
        Number of matches to play (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores)
  -seed int
        Base seed for the player and opponent draws; 0 uses the clock
  -threshold int
        Score that ends a match (default 10)
  -verbose
        Log every finished match
  -help
        Show this help message

Examples:
  # Reproducible run
  go run ./cmd/simulate -matches 5000 -seed 42

  # Single worker, verbose
  go run ./cmd/simulate -workers 1 -verbose
`)
}

// Report writes a human readable summary of stats to w.
func Report(w io.Writer, stats *Stats) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("Seed:      %d\n", stats.Seed)
	p("Matches:   %d (you won %d, computer won %d, abandoned %d)\n",
		stats.Matches, stats.HumanWins, stats.OpponentWins, stats.Abandoned)
	p("Rounds:    %d\n", stats.Rounds)
	p("Outcomes:  Win %s  Loss %s  Tie %s\n",
		share(stats.Wins, stats.Rounds), share(stats.Losses, stats.Rounds), share(stats.Ties, stats.Rounds))
	p("Computer's items:\n")
	for _, it := range rules.Items {
		p("  %-9s %s\n", it.String()+":", share(stats.OpponentItems[it], stats.Rounds))
	}
	p("Duration:  %s\n", stats.Duration)
}

func share(n, total int) string {
	if total == 0 {
		return fmt.Sprintf("%d (0.0%%)", n)
	}
	return fmt.Sprintf("%d (%.1f%%)", n, float64(n)/float64(total)*PercentageMultiplier)
}
