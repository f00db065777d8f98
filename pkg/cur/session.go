package cur

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/curselect/pkg/linalg"
	"github.com/tensorplex-labs/curselect/pkg/selection"
)

// orthogonalizationTolerance is the norm below which a direction counts as
// already removed.
const orthogonalizationTolerance = 1e-12

// Session is the working state of one CUR selection run. It implements
// selection.Hooks: the working matrix and target are orthogonalized against
// selected samples as the run progresses and the importance vector is kept
// in step with the greedy loop's bookkeeping.
type Session struct {
	scorer    selection.Scorer
	iterative bool
	// tol is the norm below which a direction counts as already removed.
	tol float64

	x  *mat.Dense
	y  *mat.Dense
	pi []float64
}

func NewSession(scorer selection.Scorer, iterative bool) *Session {
	return &Session{scorer: scorer, iterative: iterative, tol: orthogonalizationTolerance}
}

func (s *Session) InitSearch(x, y *mat.Dense, _ *selection.State) error {
	s.x = mat.DenseCopyOf(x)
	s.y = nil
	if y != nil {
		s.y = mat.DenseCopyOf(y)
	}

	pi, err := s.score(s.x, s.y)
	if err != nil {
		return err
	}
	s.pi = pi
	return nil
}

// ContinueSearch re-derives the working state from the full input, with the
// rows already selected in st projected out.
func (s *Session) ContinueSearch(x, y *mat.Dense, st *selection.State) error {
	xSelected := st.XSelected()
	if xSelected == nil {
		return s.InitSearch(x, y, st)
	}

	xCurrent, err := linalg.OrthogonalizeRows(x, xSelected, s.tol)
	if err != nil {
		return err
	}

	var yCurrent *mat.Dense
	if y != nil {
		yCurrent, err = linalg.RegressOutSamples(y, xCurrent, st.YSelected(), xSelected, orthogonalizationTolerance)
		if err != nil {
			return err
		}
	}

	pi, err := s.score(xCurrent, yCurrent)
	if err != nil {
		return err
	}
	for i, eligible := range st.Eligible() {
		if !eligible {
			pi[i] = 0
		}
	}

	log.Trace().Int("previously_selected", st.NSelected()).Msg("continuing CUR search on orthogonalized samples")

	s.x, s.y, s.pi = xCurrent, yCurrent, pi
	return nil
}

func (s *Session) Scores(_, _ *mat.Dense, _ *selection.State) ([]float64, error) {
	if s.pi == nil {
		return nil, selection.ErrNotFitted
	}
	return append([]float64(nil), s.pi...), nil
}

// PostSelection projects the just selected sample out of the working state
// and rescores the samples that are still eligible. The selected sample's
// importance is zeroed whether or not the run is iterative.
func (s *Session) PostSelection(_, _ *mat.Dense, st *selection.State, last int) error {
	if s.iterative {
		if s.y != nil {
			y, err := linalg.RegressOutSamples(s.y, s.x, st.YSelected(), st.XSelected(), orthogonalizationTolerance)
			if err != nil {
				return err
			}
			s.y = y
		}

		x, err := linalg.OrthogonalizeRowsAgainst(s.x, last, s.tol)
		if err != nil {
			return err
		}
		s.x = x

		if eligible := st.EligibleIndices(); len(eligible) > 0 {
			var ySub *mat.Dense
			if s.y != nil {
				ySub = selectRows(s.y, eligible)
			}
			pi, err := s.score(selectRows(s.x, eligible), ySub)
			if err != nil {
				return err
			}
			for k, idx := range eligible {
				s.pi[idx] = pi[k]
			}
		}
	}

	s.pi[last] = 0
	return nil
}

// Importance returns a copy of the current importance vector.
func (s *Session) Importance() []float64 {
	return append([]float64(nil), s.pi...)
}

// Working returns copies of the working matrix and target; y is nil when
// the run has no targets.
func (s *Session) Working() (x, y *mat.Dense) {
	if s.x != nil {
		x = mat.DenseCopyOf(s.x)
	}
	if s.y != nil {
		y = mat.DenseCopyOf(s.y)
	}
	return x, y
}

func (s *Session) score(x, y *mat.Dense) ([]float64, error) {
	pi, err := s.scorer.Score(x, y)
	if err != nil {
		return nil, fmt.Errorf("compute importance: %w", err)
	}
	rows, _ := x.Dims()
	if len(pi) != rows {
		return nil, fmt.Errorf("compute importance: %w: got %d scores for %d rows", selection.ErrShapeMismatch, len(pi), rows)
	}
	return pi, nil
}

func selectRows(m *mat.Dense, idx []int) *mat.Dense {
	_, cols := m.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for k, i := range idx {
		out.SetRow(k, m.RawRowView(i))
	}
	return out
}
