package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/jokenpo/internal/domain/model"
	"github.com/okian/jokenpo/pkg/logger"
	"github.com/okian/jokenpo/pkg/metrics"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the ranking in a SQLite table with the same contract as FileStore.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

// NewSQLiteStore opens path and creates the rankings table if needed.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	o := buildOptions(opts)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// single-writer game; one connection keeps pragmas consistent
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: o.logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS rankings (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			score INTEGER NOT NULL CHECK (score >= 0),
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_score ON rankings(score DESC)`,
	}
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Save inserts one ranking row.
func (s *SQLiteStore) Save(ctx context.Context, name string, score int) error {
	name, err := ValidateName(name)
	if err != nil {
		return err
	}
	if err := validateScore(score); err != nil {
		return err
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rankings (id, name, score, created_at) VALUES (?, ?, ?, ?)`,
		id, name, score, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save ranking: %w", err)
	}
	if s.logger != nil {
		s.logger.Debug(ctx, "ranking entry saved",
			logger.String("id", id),
			logger.String("name", name),
			logger.Int("score", score),
		)
	}
	return nil
}

// TopN returns rows by score desc; ties keep insertion order.
func (s *SQLiteStore) TopN(ctx context.Context, n int) ([]model.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	sqlLimit := n
	if sqlLimit <= 0 {
		sqlLimit = -1 // no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, score FROM rankings ORDER BY score DESC, rowid ASC LIMIT ?`, sqlLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []model.Entry{}
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.Name, &e.Score); err != nil {
			return nil, fmt.Errorf("failed to scan ranking: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ranking: %w", err)
	}
	return entries, nil
}

// Count returns the number of ranking rows.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rankings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ranking: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
