// Package selection implements greedy subset selection of samples (rows)
// driven by a pluggable importance score.
package selection

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
)

// Scorer assigns one non-negative importance score to every row of x.
type Scorer interface {
	Score(x, y *mat.Dense) ([]float64, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(x, y *mat.Dense) ([]float64, error)

func (f ScorerFunc) Score(x, y *mat.Dense) ([]float64, error) {
	return f(x, y)
}

// Hooks is what a selection strategy plugs into the greedy loop.
type Hooks interface {
	// InitSearch prepares a fresh run; st has nothing selected yet.
	InitSearch(x, y *mat.Dense, st *State) error
	// ContinueSearch prepares a run on top of the selections already in st.
	ContinueSearch(x, y *mat.Dense, st *State) error
	// Scores returns one score per sample, eligible or not.
	Scores(x, y *mat.Dense, st *State) ([]float64, error)
	// PostSelection runs after last has been recorded in st.
	PostSelection(x, y *mat.Dense, st *State, last int) error
}

// Greedy repeatedly picks the best scoring eligible sample until Count
// samples are selected or the best remaining score drops to ScoreThreshold.
type Greedy struct {
	Count          Count
	ScoreThreshold *float64
	// Scores at or below ZeroTolerance count as exactly zero when picking
	// and when comparing against ScoreThreshold.
	ZeroTolerance float64
	Reporter      Reporter
}

// Fit runs a fresh selection over the rows of x. y may be nil.
func (g *Greedy) Fit(x, y *mat.Dense, hooks Hooks) (*State, error) {
	nSamples, err := checkShapes(x, y)
	if err != nil {
		return nil, err
	}

	target, err := g.Count.Resolve(nSamples)
	if err != nil {
		return nil, err
	}

	st := newState(nSamples, y != nil)
	if err := hooks.InitSearch(x, y, st); err != nil {
		return nil, fmt.Errorf("init search: %w", err)
	}

	if err := g.run(x, y, st, hooks, target); err != nil {
		return nil, err
	}
	return st, nil
}

// Continue extends a previous run. Count is the total number of selections,
// including those already in prev. prev is not modified.
func (g *Greedy) Continue(x, y *mat.Dense, prev *State, hooks Hooks) (*State, error) {
	if prev == nil {
		return nil, ErrNotFitted
	}

	nSamples, err := checkShapes(x, y)
	if err != nil {
		return nil, err
	}
	if nSamples != prev.nSamples {
		return nil, fmt.Errorf("%w: previous run had %d samples, got %d", ErrShapeMismatch, prev.nSamples, nSamples)
	}
	if (y != nil) != prev.hasY {
		return nil, fmt.Errorf("%w: targets must be given in every stage or in none", ErrShapeMismatch)
	}

	target, err := g.Count.Resolve(nSamples)
	if err != nil {
		return nil, err
	}

	st := prev.clone()
	if err := hooks.ContinueSearch(x, y, st); err != nil {
		return nil, fmt.Errorf("continue search: %w", err)
	}

	if err := g.run(x, y, st, hooks, target); err != nil {
		return nil, err
	}
	return st, nil
}

func (g *Greedy) run(x, y *mat.Dense, st *State, hooks Hooks, target int) error {
	reporter := g.Reporter
	if reporter == nil {
		reporter = NopReporter
	}

	reporter.Start(st.NSelected(), target)
	reason := StopCountReached

	for st.NSelected() < target {
		scores, err := hooks.Scores(x, y, st)
		if err != nil {
			return fmt.Errorf("score samples: %w", err)
		}
		if len(scores) != st.nSamples {
			return fmt.Errorf("%w: got %d scores for %d samples", ErrShapeMismatch, len(scores), st.nSamples)
		}

		idx, best := g.pick(scores, st)
		if idx < 0 {
			reason = StopNoEligibleSample
			break
		}
		if g.ScoreThreshold != nil && best <= *g.ScoreThreshold {
			log.Trace().
				Float64("threshold", *g.ScoreThreshold).
				Float64("best_score", best).
				Msgf("score threshold reached, terminating search at %d/%d", st.NSelected(), target)
			reason = StopScoreThreshold
			break
		}

		st.record(x, y, idx)
		if err := hooks.PostSelection(x, y, st, idx); err != nil {
			return fmt.Errorf("update after selecting %d: %w", idx, err)
		}

		reporter.Step(st.NSelected(), idx, best)
	}

	reporter.Done(st.NSelected(), reason)
	return nil
}

// pick returns the eligible index with the highest score, preferring the
// lowest index among ties. It returns -1 when nothing is eligible.
func (g *Greedy) pick(scores []float64, st *State) (int, float64) {
	bestIdx, bestScore := -1, math.Inf(-1)
	for i, s := range scores {
		if !st.eligible[i] {
			continue
		}
		if math.IsNaN(s) || s <= g.ZeroTolerance {
			s = 0
		}
		if s > bestScore {
			bestIdx, bestScore = i, s
		}
	}
	return bestIdx, bestScore
}

func checkShapes(x, y *mat.Dense) (int, error) {
	if x == nil || x.IsEmpty() {
		return 0, fmt.Errorf("%w: empty data matrix", ErrShapeMismatch)
	}
	rows, _ := x.Dims()
	if y != nil {
		yRows, _ := y.Dims()
		if yRows != rows {
			return 0, fmt.Errorf("%w: data has %d samples, targets have %d", ErrShapeMismatch, rows, yRows)
		}
	}
	return rows, nil
}
