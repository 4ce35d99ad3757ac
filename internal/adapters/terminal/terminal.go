// Package terminal is the text front end: main menu, rounds with a timed
// reveal, the final result screen and the ranking screen.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	service "github.com/okian/jokenpo/internal/app"
	"github.com/okian/jokenpo/internal/adapters/repository"
	"github.com/okian/jokenpo/internal/domain/engine"
	"github.com/okian/jokenpo/internal/domain/model"
	"github.com/okian/jokenpo/internal/domain/rules"
	"github.com/okian/jokenpo/pkg/logger"
)

const title = "SHELDON'S JOKENPO"

// errQuit ends the menu loop.
var errQuit = errors.New("quit")

// Game is the subset of the match service the shell drives.
type Game interface {
	StartMatch(ctx context.Context, player string) (*service.Match, error)
	Ranking(ctx context.Context, n int) ([]model.Entry, error)
	ResetScores(ctx context.Context)
	Threshold() int
	Scores() engine.Scores
}

// Option applies a configuration option to the Shell.
type Option func(*Shell)

// WithRevealDelay sets the pause before the opponent's item and again before the outcome.
func WithRevealDelay(d time.Duration) Option {
	return func(s *Shell) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithRankingLimit caps the rows on the ranking screen; 0 shows all.
func WithRankingLimit(n int) Option {
	return func(s *Shell) {
		if n >= 0 {
			s.rankingLimit = n
		}
	}
}

// WithLogger sets a custom logger for the shell.
func WithLogger(l logger.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.logger = l
		}
	}
}

type line struct {
	text string
	err  error
}

// Shell reads commands from in and renders to out.
type Shell struct {
	game         Game
	in           io.Reader
	out          io.Writer
	delay        time.Duration
	rankingLimit int
	logger       logger.Logger

	lines chan line
	done  chan struct{}
}

// New creates a shell over game.
func New(game Game, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		game:         game,
		in:           in,
		out:          out,
		delay:        time.Second,
		rankingLimit: 10,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("terminal")
	}
	return s
}

// Run shows the main menu until the user quits, input ends or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.lines = make(chan line)
	s.done = make(chan struct{})
	defer close(s.done)
	go s.scan()

	for {
		s.menu()
		choice, err := s.readLine(ctx)
		if err != nil {
			return ignoreEOF(err)
		}
		if err := s.dispatch(ctx, choice); err != nil {
			if errors.Is(err, errQuit) {
				s.printf("Bye!\n")
				return nil
			}
			return ignoreEOF(err)
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, choice string) error {
	switch strings.ToLower(choice) {
	case "1", "play":
		return s.play(ctx)
	case "2", "rules":
		s.rules()
	case "3", "references":
		s.references()
	case "4", "reset":
		s.game.ResetScores(ctx)
		s.printf("Score reset!\n")
	case "5", "ranking":
		s.ranking(ctx)
	case "6", "quit", "exit":
		return errQuit
	default:
		s.printf("Unknown option %q.\n", choice)
	}
	return nil
}

func (s *Shell) menu() {
	sc := s.game.Scores()
	s.printf("\n=== %s ===\n", title)
	s.printf("You: %d   Computer: %d\n", sc.Human, sc.Opponent)
	s.printf("1) Play  2) Rules  3) References  4) Reset score  5) Ranking  6) Quit\n> ")
}

func (s *Shell) play(ctx context.Context) error {
	m, err := s.startMatch(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			s.logger.Warn(ctx, "closing round log failed", logger.Error(err))
		}
	}()

	for {
		sc := s.game.Scores()
		s.printf("\nYou: %d   Computer: %d   (first to %d)\n", sc.Human, sc.Opponent, s.game.Threshold())
		s.printf("Choose 1) Paper 2) Scissors 3) Rock 4) Lizard 5) Spock, or 'menu'\n> ")

		input, err := s.readLine(ctx)
		if err != nil {
			return err
		}
		if strings.EqualFold(input, "menu") {
			return nil
		}
		item, err := parseChoice(input)
		if err != nil {
			s.printf("%q is not an item.\n", input)
			continue
		}

		r, err := m.Play(ctx, item)
		if err != nil {
			return err
		}
		if err := s.reveal(ctx, r); err != nil {
			return err
		}
		if r.MatchOver {
			return s.endMatch(ctx, m, r)
		}
	}
}

func (s *Shell) startMatch(ctx context.Context) (*service.Match, error) {
	for {
		s.printf("Enter your name:\n> ")
		name, err := s.readLine(ctx)
		if err != nil {
			return nil, err
		}
		m, err := s.game.StartMatch(ctx, name)
		if errors.Is(err, repository.ErrInvalidName) {
			s.printf("Please enter a valid name.\n")
			continue
		}
		return m, err
	}
}

// reveal prints the human item at once, then the opponent item and the
// outcome each after the reveal delay.
func (s *Shell) reveal(ctx context.Context, r model.Round) error {
	s.printf("Your choice: %s\n", r.Human)
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.printf("Computer's choice: %s\n", r.Opponent)
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.printf("%s!\n", r.Outcome)
	return nil
}

func (s *Shell) endMatch(ctx context.Context, m *service.Match, r model.Round) error {
	if r.HumanWon(s.game.Threshold()) {
		s.printf("\nCongratulations, you won! (%d x %d)\n", r.HumanScore, r.OpponentScore)
	} else {
		s.printf("\nDisappointing... you lost! (%d x %d)\n", r.HumanScore, r.OpponentScore)
	}
	if err := m.Finish(ctx); err != nil {
		s.printf("Could not save your score: %v\n", err)
	}
	s.ranking(ctx)
	return nil
}

func (s *Shell) ranking(ctx context.Context) {
	s.printf("\n--- RANKING ---\n")
	entries, err := s.game.Ranking(ctx, s.rankingLimit)
	if err != nil {
		s.printf("Ranking unavailable: %v\n", err)
		return
	}
	if len(entries) == 0 {
		s.printf("No ranking available.\n")
		return
	}
	for _, e := range entries {
		s.printf("%d. %s - %d points\n", e.Rank, e.Name, e.Score)
	}
}

func (s *Shell) rules() {
	s.printf("\n--- RULES ---\n")
	for _, it := range rules.Items {
		d := it.Defeats()
		s.printf("%s beats %s and %s\n", it, d[0], d[1])
	}
	s.printf("\nItem weights: ")
	for i, it := range rules.Items {
		if i > 0 {
			s.printf(", ")
		}
		s.printf("%s: %d", it, it.Weight())
	}
	s.printf("\n\nWin and you gain your item's weight while the opponent loses theirs.\n")
	s.printf("Lose and the opponent gains their item's weight while you lose yours.\n")
	s.printf("Scores never go below zero. The match ends when a player reaches %d points.\n", s.game.Threshold())
}

func (s *Shell) references() {
	s.printf("\n--- REFERENCES ---\n")
	s.printf("Rock, Paper, Scissors, Lizard, Spock was created by Sam Kass and\n")
	s.printf("Karen Bryla and popularized by Sheldon Cooper on 'The Big Bang Theory'.\n")
}

func (s *Shell) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.delay):
		return nil
	}
}

// scan feeds input lines to Run so reads can be abandoned on cancellation.
func (s *Shell) scan() {
	defer close(s.lines)
	sc := bufio.NewScanner(s.in)
	for sc.Scan() {
		if !s.send(line{text: sc.Text()}) {
			return
		}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	s.send(line{err: err})
}

func (s *Shell) send(l line) bool {
	select {
	case s.lines <- l:
		return true
	case <-s.done:
		return false
	}
}

func (s *Shell) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// parseChoice accepts an item number in weight order or an item name.
func parseChoice(input string) (rules.Item, error) {
	if n, err := strconv.Atoi(input); err == nil {
		it := rules.Item(n)
		if !it.Valid() {
			return 0, fmt.Errorf("%w: %d", rules.ErrInvalidItem, n)
		}
		return it, nil
	}
	return rules.ParseItem(input)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
