// Package cur selects samples (rows) of a matrix greedily by their leverage
// on the matrix's dominant left singular subspace, as in CUR decomposition.
package cur

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/curselect/pkg/linalg"
	"github.com/tensorplex-labs/curselect/pkg/selection"
	"github.com/tensorplex-labs/curselect/pkg/utils/logger"
)

// Selector performs CUR sample selection. A Selector holds the results of
// its latest run and is not safe for concurrent use.
type Selector struct {
	cfg Config

	session *Session
	state   *selection.State
}

func New(opts ...Option) (*Selector, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Selector{cfg: cfg}, nil
}

func (s *Selector) Config() Config {
	return s.cfg
}

// Fit selects samples from the rows of x from scratch. y holds optional
// targets aligned with the rows of x. Results of previous runs are
// discarded, also when Fit fails.
func (s *Selector) Fit(x, y *mat.Dense) error {
	s.session, s.state = nil, nil

	logger.Sugar().Infow("Fitting CUR selector",
		"count", s.cfg.Count.String(),
		"rank", s.cfg.Rank,
		"iterative", s.cfg.Iterative,
		"powerIterations", s.cfg.PowerIterations.String())

	session := s.newSession(x)
	st, err := s.greedy(s.cfg.Count).Fit(x, y, session)
	if err != nil {
		return wrapFitError(err)
	}

	s.session, s.state = session, st
	return nil
}

// Continue selects more samples on top of those chosen by the previous run,
// until count samples are selected in total. x and y must be the data of
// the previous run. On failure the previous results are kept.
func (s *Selector) Continue(x, y *mat.Dense, count selection.Count) error {
	if s.state == nil {
		return selection.ErrNotFitted
	}

	logger.Sugar().Infow("Continuing CUR selector",
		"count", count.String(),
		"alreadySelected", s.state.NSelected())

	session := s.newSession(x)
	st, err := s.greedy(count).Continue(x, y, s.state, session)
	if err != nil {
		return wrapFitError(err)
	}

	s.session, s.state = session, st
	return nil
}

// Selected returns the selected sample indices in selection order.
func (s *Selector) Selected() []int {
	if s.state == nil {
		return nil
	}
	return s.state.Selected()
}

func (s *Selector) NSelected() int {
	if s.state == nil {
		return 0
	}
	return s.state.NSelected()
}

// Support returns the mask of selected samples.
func (s *Selector) Support() []bool {
	if s.state == nil {
		return nil
	}
	return s.state.Support()
}

// XSelected returns the selected rows of the input in selection order.
func (s *Selector) XSelected() *mat.Dense {
	if s.state == nil {
		return nil
	}
	return s.state.XSelected()
}

// YSelected returns the targets of the selected rows.
func (s *Selector) YSelected() *mat.Dense {
	if s.state == nil {
		return nil
	}
	return s.state.YSelected()
}

// Importance returns the importance of every sample at the end of the run.
// Selected samples have importance zero.
func (s *Selector) Importance() []float64 {
	if s.session == nil {
		return nil
	}
	return s.session.Importance()
}

// RelativeImportance is Importance scaled to sum to one.
func (s *Selector) RelativeImportance() []float64 {
	if s.session == nil {
		return nil
	}
	return linalg.L1Normalize(s.session.Importance())
}

// ScaledImportance is Importance mapped onto [0, 1], the most important
// remaining sample at 1.
func (s *Selector) ScaledImportance() []float64 {
	if s.session == nil {
		return nil
	}
	return linalg.MinMaxScale(s.session.Importance())
}

// Working returns the orthogonalized data and targets the run ended with.
func (s *Selector) Working() (x, y *mat.Dense) {
	if s.session == nil {
		return nil, nil
	}
	return s.session.Working()
}

func (s *Selector) newSession(x *mat.Dense) *Session {
	tol := relativeTolerance(x)
	session := NewSession(LeverageScorer{
		Rank:            s.cfg.Rank,
		PowerIterations: s.cfg.PowerIterations,
		RandomState:     s.cfg.RandomState,
		Cutoff:          tol,
	}, s.cfg.Iterative)
	session.tol = tol
	return session
}

// relativeTolerance is orthogonalizationTolerance relative to the magnitude
// of x. Orthogonalization leaves residues proportional to the data's scale,
// and directions below that floor carry no information.
func relativeTolerance(x *mat.Dense) float64 {
	if x == nil || x.IsEmpty() {
		return 0
	}
	return orthogonalizationTolerance * mat.Norm(x, 2)
}

func (s *Selector) greedy(count selection.Count) *selection.Greedy {
	reporter := s.cfg.Reporter
	if reporter == nil && s.cfg.Progress {
		reporter = selection.NewLogReporter(log.Logger.With().Str("selector", "cur").Logger())
	}

	return &selection.Greedy{
		Count:          count,
		ScoreThreshold: s.cfg.ScoreThreshold,
		ZeroTolerance:  s.cfg.ScoreZeroTolerance,
		Reporter:       reporter,
	}
}

func wrapFitError(err error) error {
	if errors.Is(err, selection.ErrInvalidCount) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return err
}
