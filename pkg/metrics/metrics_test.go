package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue sums all series of the named family in reg.
func counterValue(reg *prometheus.Registry, name string, labelValue string) float64 {
	families, err := reg.Gather()
	if err != nil {
		return -1
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelValue != "" {
				match := false
				for _, lp := range m.GetLabel() {
					if lp.GetValue() == labelValue {
						match = true
					}
				}
				if !match {
					continue
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(reg), WithNamespace("test"), WithSubsystem("rpsls"))

		Convey("When rounds are recorded", func() {
			m.RecordRound("Win", "Rock")
			m.RecordRound("Win", "Spock")
			m.RecordRound("Tie", "Rock")

			Convey("Then outcomes and opponent items are counted", func() {
				So(counterValue(reg, "test_rpsls_rounds_total", "Win"), ShouldEqual, 2)
				So(counterValue(reg, "test_rpsls_rounds_total", "Tie"), ShouldEqual, 1)
				So(counterValue(reg, "test_rpsls_opponent_items_total", "Rock"), ShouldEqual, 2)
			})
		})

		Convey("When matches and ranking activity are recorded", func() {
			m.RecordMatch(ResultWon)
			m.RecordMatch(ResultLost)
			m.RecordMatch(ResultLost)
			m.RecordRankingSave()
			m.RecordRankingError()
			m.RecordScoreReset()
			m.RecordRoundLogError()
			m.RecordErrorByComponent("ranking", "parse")

			Convey("Then each counter reflects it", func() {
				So(counterValue(reg, "test_rpsls_matches_total", ResultLost), ShouldEqual, 2)
				So(counterValue(reg, "test_rpsls_matches_total", ResultWon), ShouldEqual, 1)
				So(counterValue(reg, "test_rpsls_ranking_saves_total", ""), ShouldEqual, 1)
				So(counterValue(reg, "test_rpsls_ranking_errors_total", ""), ShouldEqual, 1)
				So(counterValue(reg, "test_rpsls_score_resets_total", ""), ShouldEqual, 1)
				So(counterValue(reg, "test_rpsls_round_log_errors_total", ""), ShouldEqual, 1)
				So(counterValue(reg, "test_rpsls_errors_by_component_total", "parse"), ShouldEqual, 1)
			})
		})

		Convey("When a latency is observed", func() {
			So(func() { m.RecordRankingQueryLatency(1.5) }, ShouldNotPanic)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		before := counterValue(GetRegistry(), "jokenpo_game_rounds_total", "Loss")

		Convey("When recording through package helpers", func() {
			RecordRound("Loss", "Lizard")
			RecordMatch(ResultLost)
			RecordScoreReset()
			RecordRankingSave()
			RecordRankingError()
			RecordRoundLogError()
			RecordRankingQueryLatency(0.2)
			RecordErrorByComponent("roundlog", "write")

			Convey("Then the custom registry sees the round", func() {
				So(counterValue(GetRegistry(), "jokenpo_game_rounds_total", "Loss"), ShouldEqual, before+1)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given recorded metrics", t, func() {
		RecordRound("Win", "Paper")
		path := filepath.Join(t.TempDir(), "jokenpo.prom")

		Convey("When writing the textfile", func() {
			err := WriteTextfile(path)

			Convey("Then the exposition format is on disk", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "jokenpo_game_rounds_total")
			})
		})

		Convey("When the directory does not exist", func() {
			err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))

			Convey("Then a write error is returned", func() {
				So(err, ShouldNotBeNil)
				So(strings.Contains(err.Error(), ErrWriteFailed.Error()), ShouldBeTrue)
			})
		})
	})
}
