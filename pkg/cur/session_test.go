package cur

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/curselect/pkg/randomstate"
	"github.com/tensorplex-labs/curselect/pkg/selection"
)

// SessionTestSuite exercises the stage transitions of a Session without the
// CUR scores deciding what gets selected.
type SessionTestSuite struct {
	suite.Suite
	x       *mat.Dense
	y       *mat.Dense
	session *Session
}

func (s *SessionTestSuite) SetupTest() {
	s.x = randomMatrix(12, 4, 21)
	s.y = randomMatrix(12, 2, 22)
	s.session = NewSession(LeverageScorer{Rank: 2, RandomState: randomstate.Seed(3)}, true)
}

// priorState selects the given rows through the generic greedy loop.
func (s *SessionTestSuite) priorState(rows ...int) *selection.State {
	scores := make([]float64, 12)
	for k, r := range rows {
		scores[r] = float64(len(rows) - k)
	}
	fixed := selection.ScorerFunc(func(*mat.Dense, *mat.Dense) ([]float64, error) {
		return append([]float64(nil), scores...), nil
	})

	st, err := (&selection.Greedy{Count: selection.Absolute(len(rows))}).Fit(s.x, s.y, selection.ScorerHooks{Scorer: fixed})
	s.Require().NoError(err)
	s.Require().Equal(rows, st.Selected())
	return st
}

func (s *SessionTestSuite) TestScoresBeforeInit() {
	_, err := s.session.Scores(s.x, nil, nil)
	s.ErrorIs(err, selection.ErrNotFitted)
}

func (s *SessionTestSuite) TestInitSearchCopiesInput() {
	s.Require().NoError(s.session.InitSearch(s.x, s.y, nil))

	wx, wy := s.session.Working()
	s.True(mat.Equal(s.x, wx))
	s.True(mat.Equal(s.y, wy))

	s.x.Set(0, 0, 1000)
	wx, _ = s.session.Working()
	s.NotEqual(1000.0, wx.At(0, 0), "working matrix must not alias the input")

	s.Len(s.session.Importance(), 12)
}

func (s *SessionTestSuite) TestInitSearchWithoutTargets() {
	s.Require().NoError(s.session.InitSearch(s.x, nil, nil))
	_, wy := s.session.Working()
	s.Nil(wy)
}

func (s *SessionTestSuite) TestContinueSearchOrthogonalizesAgainstPriorSelections() {
	st := s.priorState(3, 7)
	s.Require().NoError(s.session.ContinueSearch(s.x, s.y, st))

	wx, wy := s.session.Working()
	s.NotNil(wy)
	for i := range 12 {
		for _, sel := range []int{3, 7} {
			s.InDelta(0, floats.Dot(mat.Row(nil, i, wx), mat.Row(nil, sel, s.x)), 1e-9)
		}
	}

	pi := s.session.Importance()
	s.Len(pi, 12)
	s.Zero(pi[3])
	s.Zero(pi[7])
}

func (s *SessionTestSuite) TestContinueSearchWithoutPriorSelections() {
	st, err := (&selection.Greedy{Count: selection.Absolute(0)}).Fit(s.x, nil, selection.ScorerHooks{
		Scorer: selection.ScorerFunc(func(x, _ *mat.Dense) ([]float64, error) {
			rows, _ := x.Dims()
			return make([]float64, rows), nil
		}),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.session.ContinueSearch(s.x, nil, st))
	wx, _ := s.session.Working()
	s.True(mat.Equal(s.x, wx))
}

func (s *SessionTestSuite) TestPostSelectionZeroesSelectedScore() {
	st := s.priorState(5)
	s.Require().NoError(s.session.InitSearch(s.x, s.y, st))
	s.Require().NoError(s.session.PostSelection(s.x, s.y, st, 5))

	pi := s.session.Importance()
	s.Zero(pi[5])

	wx, _ := s.session.Working()
	s.InDelta(0, floats.Norm(mat.Row(nil, 5, wx), 2), 1e-12)
}

func TestSessionTestSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}
