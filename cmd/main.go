package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/jokenpo/internal/adapters/repository"
	"github.com/okian/jokenpo/internal/adapters/terminal"
	service "github.com/okian/jokenpo/internal/app"
	"github.com/okian/jokenpo/internal/config"
	"github.com/okian/jokenpo/internal/domain/engine"
	"github.com/okian/jokenpo/pkg/logger"
	"github.com/okian/jokenpo/pkg/metrics"
)

func main() {
	// Logs go to stderr; stdout belongs to the game screen.
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		logger.Get().Error(ctx, "game exited with error", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run wires the ranking store, engine and service to the terminal shell and
// blocks until the user quits or ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	ranking, err := openRanking(ctx, cfg)
	if err != nil {
		return err
	}

	svc := service.New(
		service.WithLogger(logger.Named("service")),
		service.WithEngine(engine.New(engine.WithSeed(cfg.Seed))),
		service.WithRanking(ranking),
		service.WithRoundLogPath(cfg.RoundLogPath),
		service.WithWinThreshold(cfg.WinThreshold),
	)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Get().Error(ctx, "closing ranking store failed", logger.Error(err))
		}
	}()

	shell := terminal.New(svc, in, out,
		terminal.WithRevealDelay(cfg.RevealDelay()),
		terminal.WithRankingLimit(cfg.RankingLimit),
	)
	runErr := shell.Run(ctx)
	if runErr != nil && ctx.Err() != nil {
		// Interrupted by a signal; not a failure.
		runErr = nil
	}

	if cfg.MetricsPath != "" {
		if err := metrics.WriteTextfile(cfg.MetricsPath); err != nil {
			logger.Get().Error(ctx, "writing metrics failed", logger.String("path", cfg.MetricsPath), logger.Error(err))
		}
	}
	return runErr
}

// openRanking opens the configured ranking backend.
func openRanking(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	log := logger.Named("ranking")
	switch cfg.RankingBackend {
	case config.BackendSQLite:
		store, err := repository.NewSQLiteStore(ctx, cfg.RankingDBPath, repository.WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("open ranking database: %w", err)
		}
		return store, nil
	default:
		return repository.NewFileStore(cfg.RankingPath, repository.WithLogger(log)), nil
	}
}
