// Package roundlog writes the human-readable per-round log of a match.
package roundlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/okian/jokenpo/internal/domain/model"
)

const logFilePermission = 0o644

// Writer appends one line per round.
type Writer struct {
	mu sync.Mutex
	w  *bufio.Writer
	c  io.Closer
}

// Create truncates path and returns a Writer on it. Each match starts a fresh log.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("open round log: %w", err)
	}
	return &Writer{w: bufio.NewWriter(f), c: f}, nil
}

// New wraps an arbitrary writer; Close is a no-op unless w is an io.Closer.
func New(w io.Writer) *Writer {
	lw := &Writer{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		lw.c = c
	}
	return lw
}

// Format renders a round as a log line without the trailing newline.
func Format(r model.Round) string {
	return fmt.Sprintf("Round %d: %s vs %s - %s | Points: You %d, Computer %d",
		r.Number, r.Human, r.Opponent, r.Outcome, r.HumanScore, r.OpponentScore)
}

// Write appends r and flushes so the file is current after every round.
func (l *Writer) Write(r model.Round) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.w.WriteString(Format(r) + "\n"); err != nil {
		return fmt.Errorf("write round log: %w", err)
	}
	if err := l.w.Flush(); err != nil {
		return fmt.Errorf("flush round log: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Writer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.w.Flush(); err != nil {
		return fmt.Errorf("flush round log: %w", err)
	}
	if l.c != nil {
		return l.c.Close()
	}
	return nil
}
