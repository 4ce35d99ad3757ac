package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/jokenpo/internal/domain/model"
	"github.com/okian/jokenpo/pkg/logger"
	"github.com/okian/jokenpo/pkg/metrics"
)

const rankingFilePermission = 0o644

// FileStore keeps the ranking as append-only "<name>: <score>" lines.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger logger.Logger
	closed bool
}

// NewFileStore returns a store backed by path. The file is created on first Save.
func NewFileStore(path string, opts ...Option) *FileStore {
	o := buildOptions(opts)
	return &FileStore{path: path, logger: o.logger}
}

// Save appends "<name>: <score>" to the ranking file.
func (s *FileStore) Save(ctx context.Context, name string, score int) error {
	name, err := ValidateName(name)
	if err != nil {
		return err
	}
	if err := validateScore(score); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, rankingFilePermission)
	if err != nil {
		return fmt.Errorf("open ranking file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s%s%d\n", name, nameSeparator, score); err != nil {
		_ = f.Close()
		return fmt.Errorf("write ranking file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ranking file: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug(ctx, "ranking entry saved", logger.String("name", name), logger.Int("score", score))
	}
	return nil
}

// TopN reads the whole file, ranks it and returns the first n entries.
func (s *FileStore) TopN(ctx context.Context, n int) ([]model.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRankingQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	entries, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	return limit(model.Rank(entries), n), nil
}

// Count returns the number of well-formed lines.
func (s *FileStore) Count(ctx context.Context) (int, error) {
	entries, err := s.readAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Close marks the store closed; the file is only held open during writes.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *FileStore) readAll(ctx context.Context) ([]model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ranking file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries := []model.Entry{}
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		entry, ok := parseLine(line)
		if !ok {
			metrics.RecordErrorByComponent("ranking", "parse")
			if s.logger != nil {
				s.logger.Warn(ctx, "skipping malformed ranking line",
					logger.String("path", s.path),
					logger.Int("line", lineNo),
				)
			}
			continue
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ranking file: %w", err)
	}
	return entries, nil
}

// parseLine splits on the first ": " and parses the integer score.
func parseLine(line string) (model.Entry, bool) {
	name, rawScore, found := strings.Cut(line, nameSeparator)
	if !found || strings.TrimSpace(name) == "" {
		return model.Entry{}, false
	}
	score, err := strconv.Atoi(strings.TrimSpace(rawScore))
	if err != nil {
		return model.Entry{}, false
	}
	return model.Entry{Name: name, Score: score}, true
}
