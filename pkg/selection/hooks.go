package selection

import "gonum.org/v1/gonum/mat"

// ScorerHooks scores the unmodified data with Scorer in every round. It
// suits scores that need no working state between selections.
type ScorerHooks struct {
	Scorer Scorer
}

func (h ScorerHooks) InitSearch(*mat.Dense, *mat.Dense, *State) error { return nil }

func (h ScorerHooks) ContinueSearch(*mat.Dense, *mat.Dense, *State) error { return nil }

func (h ScorerHooks) Scores(x, y *mat.Dense, _ *State) ([]float64, error) {
	return h.Scorer.Score(x, y)
}

func (h ScorerHooks) PostSelection(*mat.Dense, *mat.Dense, *State, int) error { return nil }
