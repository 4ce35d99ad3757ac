package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	service "github.com/okian/jokenpo/internal/app"
	"github.com/okian/jokenpo/internal/adapters/repository"
	"github.com/okian/jokenpo/internal/adapters/roundlog"
	"github.com/okian/jokenpo/internal/domain/engine"
	"github.com/okian/jokenpo/internal/domain/model"
	"github.com/okian/jokenpo/internal/domain/rules"
	"github.com/okian/jokenpo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// scripted draws the queued opponent items in order.
type scripted struct {
	items []rules.Item
}

func (s *scripted) Intn(int) int {
	it := s.items[0]
	s.items = s.items[1:]
	return int(it) - 1
}

func forcedEngine(items ...rules.Item) *engine.Engine {
	return engine.New(engine.WithSource(&scripted{items: items}))
}

func bufferLog(buf *bytes.Buffer) service.Option {
	return service.WithRoundLogFactory(func() (service.RoundLog, error) {
		return roundlog.New(buf), nil
	})
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()
		defer func() { _ = svc.Close() }()

		Convey("Then it should have sensible defaults", func() {
			So(svc.Threshold(), ShouldEqual, 10)
			So(svc.Scores(), ShouldResemble, engine.Scores{})
		})
	})

	Convey("Given a non-positive threshold option", t, func() {
		svc := service.New(service.WithWinThreshold(0))

		Convey("Then the default threshold is kept", func() {
			So(svc.Threshold(), ShouldEqual, service.DefaultWinThreshold)
		})
	})
}

func TestMatch_Play(t *testing.T) {
	Convey("Given a match with forced opponent draws", t, func() {
		ctx := context.Background()
		var buf bytes.Buffer
		svc := service.New(
			service.WithEngine(forcedEngine(rules.Scissors, rules.Lizard)),
			bufferLog(&buf),
		)
		m, err := svc.StartMatch(ctx, "Sheldon")
		So(err, ShouldBeNil)
		So(m.ID, ShouldNotBeEmpty)

		Convey("When playing Rock then Paper", func() {
			first, err := m.Play(ctx, rules.Rock)
			So(err, ShouldBeNil)
			second, err := m.Play(ctx, rules.Paper)
			So(err, ShouldBeNil)

			Convey("Then the rounds carry the weighted scores", func() {
				So(first.Number, ShouldEqual, 1)
				So(first.Outcome, ShouldEqual, rules.Win)
				So(first.HumanScore, ShouldEqual, 3)
				So(first.OpponentScore, ShouldEqual, 0)

				So(second.Number, ShouldEqual, 2)
				So(second.Opponent, ShouldEqual, rules.Lizard)
				So(second.Outcome, ShouldEqual, rules.Loss)
				So(second.HumanScore, ShouldEqual, 2)
				So(second.OpponentScore, ShouldEqual, 4)
				So(second.MatchOver, ShouldBeFalse)
				So(svc.Scores(), ShouldResemble, engine.Scores{Human: 2, Opponent: 4})
				So(m.Rounds(), ShouldEqual, 2)
			})

			Convey("Then the round log has one line per round", func() {
				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				So(lines, ShouldResemble, []string{
					"Round 1: Rock vs Scissors - Win | Points: You 3, Computer 0",
					"Round 2: Paper vs Lizard - Loss | Points: You 2, Computer 4",
				})
			})
		})

		Convey("When the item is invalid", func() {
			_, err := m.Play(ctx, rules.Item(9))

			Convey("Then the round is rejected and not counted", func() {
				So(errors.Is(err, rules.ErrInvalidItem), ShouldBeTrue)
				So(m.Rounds(), ShouldEqual, 0)
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestMatch_Threshold(t *testing.T) {
	Convey("Given a match the human wins with two Spock rounds", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := service.New(
			service.WithEngine(forcedEngine(rules.Rock, rules.Rock)),
			service.WithRanking(store),
		)
		m, err := svc.StartMatch(ctx, "Sheldon")
		So(err, ShouldBeNil)

		_, err = m.Play(ctx, rules.Spock)
		So(err, ShouldBeNil)
		last, err := m.Play(ctx, rules.Spock)
		So(err, ShouldBeNil)

		Convey("Then the second round ends the match", func() {
			So(last.MatchOver, ShouldBeTrue)
			So(last.HumanWon(svc.Threshold()), ShouldBeTrue)
			So(m.Over(), ShouldBeTrue)
		})

		Convey("When playing again before finishing", func() {
			_, err := m.Play(ctx, rules.Rock)

			Convey("Then ErrMatchOver is returned", func() {
				So(errors.Is(err, service.ErrMatchOver), ShouldBeTrue)
			})
		})

		Convey("When the match is finished", func() {
			So(m.Finish(ctx), ShouldBeNil)

			Convey("Then the final human score is ranked and scores reset", func() {
				entries, err := svc.Ranking(ctx, 0)
				So(err, ShouldBeNil)
				So(entries, ShouldResemble, []model.Entry{{Rank: 1, Name: "Sheldon", Score: 10}})
				So(svc.Scores(), ShouldResemble, engine.Scores{})
			})

			Convey("Then finishing again is a no-op", func() {
				So(m.Finish(ctx), ShouldBeNil)
				count, _ := store.Count(ctx)
				So(count, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a match the opponent wins", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := service.New(
			service.WithEngine(forcedEngine(rules.Scissors, rules.Scissors, rules.Scissors, rules.Scissors, rules.Scissors)),
			service.WithRanking(store),
		)
		m, err := svc.StartMatch(ctx, "Leonard")
		So(err, ShouldBeNil)

		var last model.Round
		for i := 0; i < 5; i++ {
			last, err = m.Play(ctx, rules.Paper)
			So(err, ShouldBeNil)
		}

		Convey("Then the opponent reached the threshold and the human score is ranked", func() {
			So(last.MatchOver, ShouldBeTrue)
			So(last.OpponentScore, ShouldEqual, 10)
			So(last.HumanWon(svc.Threshold()), ShouldBeFalse)
			So(m.Finish(ctx), ShouldBeNil)

			entries, _ := svc.Ranking(ctx, 0)
			So(entries, ShouldResemble, []model.Entry{{Rank: 1, Name: "Leonard", Score: 0}})
		})
	})

	Convey("Given a match that has not reached the threshold", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithEngine(forcedEngine(rules.Rock)))
		m, err := svc.StartMatch(ctx, "Penny")
		So(err, ShouldBeNil)
		_, _ = m.Play(ctx, rules.Paper)

		Convey("When finishing", func() {
			err := m.Finish(ctx)

			Convey("Then ErrMatchNotOver is returned and scores remain", func() {
				So(errors.Is(err, service.ErrMatchNotOver), ShouldBeTrue)
				So(svc.Scores().Human, ShouldEqual, 1)
			})
		})

		Convey("When the player leaves mid-match", func() {
			So(m.Close(), ShouldBeNil)
			So(m.Close(), ShouldBeNil)

			Convey("Then the scores carry over to the next match", func() {
				So(svc.Scores().Human, ShouldEqual, 1)
			})
		})
	})
}

func TestService_StartMatch(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()

		Convey("When the player name is blank", func() {
			svc := service.New()
			_, err := svc.StartMatch(ctx, "   ")

			Convey("Then ErrInvalidName is returned", func() {
				So(errors.Is(err, repository.ErrInvalidName), ShouldBeTrue)
			})
		})

		Convey("When the round log cannot be opened", func() {
			svc := service.New(service.WithRoundLogPath(filepath.Join(t.TempDir(), "missing", "rounds.txt")))
			_, err := svc.StartMatch(ctx, "Raj")

			Convey("Then the match does not start", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the round log path is a file", func() {
			path := filepath.Join(t.TempDir(), "rounds.txt")
			So(os.WriteFile(path, []byte("previous match\n"), 0o600), ShouldBeNil)
			svc := service.New(
				service.WithEngine(forcedEngine(rules.Lizard)),
				service.WithRoundLogPath(path),
			)
			m, err := svc.StartMatch(ctx, "Howard")
			So(err, ShouldBeNil)
			_, err = m.Play(ctx, rules.Lizard)
			So(err, ShouldBeNil)
			So(m.Close(), ShouldBeNil)

			Convey("Then it is truncated and holds the new round", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "Round 1: Lizard vs Lizard - Tie | Points: You 0, Computer 0\n")
			})
		})
	})
}

func TestService_ResetAndRanking(t *testing.T) {
	Convey("Given a service with points", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithEngine(forcedEngine(rules.Rock)),
			service.WithRanking(repository.NewFileStore(filepath.Join(t.TempDir(), "ranking.txt"))),
		)
		m, _ := svc.StartMatch(ctx, "Amy")
		_, _ = m.Play(ctx, rules.Spock)
		So(svc.Scores().Human, ShouldEqual, 5)

		Convey("When scores are reset", func() {
			svc.ResetScores(ctx)

			Convey("Then both are zero", func() {
				So(svc.Scores(), ShouldResemble, engine.Scores{})
			})
		})

		Convey("When the ranking file does not exist yet", func() {
			entries, err := svc.Ranking(ctx, 10)

			Convey("Then the ranking is empty", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}
