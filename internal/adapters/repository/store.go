// Package repository defines the ranking store interface and its backends.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/jokenpo/internal/domain/model"
)

// nameSeparator splits a ranking line into name and score.
const nameSeparator = ": "

// Store persists final match scores and reads them back ranked.
type Store interface {
	// Save appends a final score for name.
	Save(ctx context.Context, name string, score int) error

	// TopN returns up to n entries ordered by score desc; n <= 0 returns all.
	// An empty or missing store yields an empty slice.
	TopN(ctx context.Context, n int) ([]model.Entry, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	Close() error
}

// ValidateName trims name and rejects values the line format cannot hold.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.ContainsAny(name, "\r\n"):
		return "", fmt.Errorf("%w: contains a line break", ErrInvalidName)
	case strings.Contains(name, nameSeparator):
		return "", fmt.Errorf("%w: contains %q", ErrInvalidName, nameSeparator)
	}
	return name, nil
}

func validateScore(score int) error {
	if score < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}
	return nil
}

// limit truncates ranked entries to n when n > 0.
func limit(entries []model.Entry, n int) []model.Entry {
	if n > 0 && len(entries) > n {
		return entries[:n]
	}
	return entries
}
