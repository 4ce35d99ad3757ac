// Package rules defines the playable items, their weights and the win relation.
package rules

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidItem is returned for values outside the fixed item set.
var ErrInvalidItem = errors.New("invalid item")

// Item is one of the five playable symbols. The zero value is not a valid item.
type Item int

// Items in weight order; the numeric value of each item is its weight.
const (
	Paper Item = iota + 1
	Scissors
	Rock
	Lizard
	Spock
)

// Items lists every valid item in weight order.
var Items = [...]Item{Paper, Scissors, Rock, Lizard, Spock}

var itemNames = map[Item]string{
	Paper:    "Paper",
	Scissors: "Scissors",
	Rock:     "Rock",
	Lizard:   "Lizard",
	Spock:    "Spock",
}

// defeats maps each item to the two items it beats.
var defeats = map[Item][2]Item{
	Rock:     {Scissors, Lizard},
	Paper:    {Rock, Spock},
	Scissors: {Paper, Lizard},
	Lizard:   {Paper, Spock},
	Spock:    {Rock, Scissors},
}

// Valid reports whether i is a member of the item set.
func (i Item) Valid() bool {
	return i >= Paper && i <= Spock
}

// Weight returns the point value transferred when the item wins or loses.
func (i Item) Weight() int {
	if !i.Valid() {
		return 0
	}
	return int(i)
}

func (i Item) String() string {
	if name, ok := itemNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Item(%d)", int(i))
}

// Defeats returns the two items i beats.
func (i Item) Defeats() [2]Item {
	return defeats[i]
}

// Beats reports whether a defeats b.
func Beats(a, b Item) bool {
	for _, d := range defeats[a] {
		if d == b {
			return true
		}
	}
	return false
}

// ParseItem resolves a case-insensitive item name.
func ParseItem(s string) (Item, error) {
	s = strings.TrimSpace(s)
	for _, it := range Items {
		if strings.EqualFold(itemNames[it], s) {
			return it, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidItem, s)
}

// Outcome is the result of a round from the first player's perspective.
type Outcome int

const (
	Tie Outcome = iota
	Win
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "Win"
	case Loss:
		return "Loss"
	case Tie:
		return "Tie"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Resolve decides a round between a and b from a's perspective.
// Both items must be valid.
func Resolve(a, b Item) Outcome {
	switch {
	case a == b:
		return Tie
	case Beats(a, b):
		return Win
	default:
		return Loss
	}
}
