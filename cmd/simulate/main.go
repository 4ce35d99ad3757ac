package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/okian/jokenpo/internal/simulate"
	"github.com/okian/jokenpo/pkg/logger"
)

func main() {
	var (
		matches   = flag.Int("matches", simulate.DefaultMatches, "Number of matches to play")
		workers   = flag.Int("workers", runtime.NumCPU(), "Number of concurrent workers")
		seed      = flag.Int64("seed", 0, "Base seed for the draws; 0 uses the clock")
		threshold = flag.Int("threshold", simulate.DefaultThreshold, "Score that ends a match")
		verbose   = flag.Bool("verbose", false, "Log every finished match")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp(os.Stdout)
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		logger.SetLevel(slog.LevelInfo)
	} else {
		logger.SetLevel(slog.LevelWarn)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := simulate.Run(ctx, &simulate.Config{
		Matches:   *matches,
		Workers:   *workers,
		Seed:      *seed,
		Threshold: *threshold,
		Verbose:   *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
	simulate.Report(os.Stdout, stats)
}
