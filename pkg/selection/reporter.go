package selection

import (
	"time"

	"github.com/rs/zerolog"
)

// StopReason explains why a selection loop ended.
type StopReason string

const (
	StopCountReached     StopReason = "count_reached"
	StopScoreThreshold   StopReason = "score_threshold"
	StopNoEligibleSample StopReason = "no_eligible_sample"
)

// Reporter observes the progress of a selection loop. It never influences
// the outcome.
type Reporter interface {
	Start(already, target int)
	Step(n, index int, score float64)
	Done(selected int, reason StopReason)
}

type nopReporter struct{}

func (nopReporter) Start(int, int)         {}
func (nopReporter) Step(int, int, float64) {}
func (nopReporter) Done(int, StopReason)   {}

var NopReporter Reporter = nopReporter{}

// LogReporter writes one structured log event per selection.
type LogReporter struct {
	logger  zerolog.Logger
	target  int
	started time.Time
}

func NewLogReporter(logger zerolog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Start(already, target int) {
	r.target = target
	r.started = time.Now()
	r.logger.Info().Int("already_selected", already).Int("target", target).Msg("selection started")
}

func (r *LogReporter) Step(n, index int, score float64) {
	progress := 100
	if r.target > 0 {
		progress = n * 100 / r.target
	}
	r.logger.Info().
		Int("selected", n).
		Int("target", r.target).
		Int("progress", progress).
		Int("index", index).
		Float64("score", score).
		Msgf("selected sample %d (%d/%d)", index, n, r.target)
}

func (r *LogReporter) Done(selected int, reason StopReason) {
	event := r.logger.Info()
	if reason == StopScoreThreshold {
		event = r.logger.Warn()
	}
	event.
		Int("selected", selected).
		Str("reason", string(reason)).
		Dur("elapsed", time.Since(r.started)).
		Msg("selection finished")
}
