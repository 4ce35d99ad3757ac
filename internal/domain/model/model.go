// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"time"

	"github.com/okian/jokenpo/internal/domain/rules"
)

// Round is one resolved play inside a match.
type Round struct {
	MatchID  string
	Number   int // 1-based within the match
	Human    rules.Item
	Opponent rules.Item
	Outcome  rules.Outcome

	// Scores after the transition was applied.
	HumanScore    int
	OpponentScore int

	// MatchOver is set on the round that reached the win threshold.
	MatchOver bool
	PlayedAt  time.Time
}

// HumanWon reports whether the human reached the threshold on this round.
func (r Round) HumanWon(threshold int) bool {
	return r.MatchOver && r.HumanScore >= threshold
}

// Entry is a ranking row.
type Entry struct {
	Rank  int
	Name  string
	Score int
}

// Rank sorts entries by score descending, keeping insertion order on ties,
// and assigns 1-based ranks. The slice is sorted in place and returned.
func Rank(entries []Entry) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
