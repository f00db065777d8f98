package selection

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// fixedScores always returns the same scores, regardless of the data.
func fixedScores(scores ...float64) Scorer {
	return ScorerFunc(func(*mat.Dense, *mat.Dense) ([]float64, error) {
		return append([]float64(nil), scores...), nil
	})
}

func data(rows int) *mat.Dense {
	x := mat.NewDense(rows, 2, nil)
	for i := range rows {
		x.Set(i, 0, float64(i))
		x.Set(i, 1, float64(i*i))
	}
	return x
}

type recordingReporter struct {
	started  [2]int
	steps    []int
	selected int
	reason   StopReason
}

func (r *recordingReporter) Start(already, target int)      { r.started = [2]int{already, target} }
func (r *recordingReporter) Step(_ int, idx int, _ float64) { r.steps = append(r.steps, idx) }
func (r *recordingReporter) Done(n int, reason StopReason)  { r.selected, r.reason = n, reason }

func TestCountResolve(t *testing.T) {
	tests := []struct {
		name    string
		count   Count
		n       int
		want    int
		wantErr bool
	}{
		{"default half", Count{}, 11, 5, false},
		{"absolute", Absolute(3), 10, 3, false},
		{"absolute all", Absolute(10), 10, 10, false},
		{"absolute too many", Absolute(11), 10, 0, true},
		{"negative", Absolute(-1), 10, 0, true},
		{"fraction", Fraction(0.25), 10, 2, false},
		{"fraction one", Fraction(1), 10, 0, true},
		{"fraction zero", Fraction(0), 10, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.count.Resolve(tt.n)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCount(t *testing.T) {
	c, err := ParseCount("4")
	require.NoError(t, err)
	assert.Equal(t, Absolute(4), c)

	c, err = ParseCount("0.5")
	require.NoError(t, err)
	assert.Equal(t, Fraction(0.5), c)

	c, err = ParseCount("")
	require.NoError(t, err)
	assert.Equal(t, "half", c.String())

	_, err = ParseCount("1.5")
	assert.ErrorIs(t, err, ErrInvalidCount)
	_, err = ParseCount("lots")
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestGreedyPicksInScoreOrder(t *testing.T) {
	rep := &recordingReporter{}
	g := &Greedy{Count: Absolute(3), Reporter: rep}

	st, err := g.Fit(data(5), nil, ScorerHooks{Scorer: fixedScores(0.1, 0.9, 0.3, 0.7, 0.5)})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3, 4}, st.Selected())
	assert.Equal(t, []bool{false, true, false, true, true}, st.Support())
	assert.Equal(t, []int{0, 2}, st.EligibleIndices())
	assert.Equal(t, [2]int{0, 3}, rep.started)
	assert.Equal(t, []int{1, 3, 4}, rep.steps)
	assert.Equal(t, StopCountReached, rep.reason)

	xs := st.XSelected()
	r, _ := xs.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, []float64{1, 1}, mat.Row(nil, 0, xs))
	assert.Nil(t, st.YSelected())
}

func TestGreedyTiesPreferLowestIndex(t *testing.T) {
	g := &Greedy{Count: Absolute(4), ZeroTolerance: 1e-12}

	st, err := g.Fit(data(4), nil, ScorerHooks{Scorer: fixedScores(0, 1e-14, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, st.Selected())
}

func TestGreedyScoreThresholdStopsEarly(t *testing.T) {
	threshold := 0.4
	rep := &recordingReporter{}
	g := &Greedy{Count: Absolute(4), ScoreThreshold: &threshold, Reporter: rep}

	st, err := g.Fit(data(5), nil, ScorerHooks{Scorer: fixedScores(0.1, 0.9, 0.3, 0.7, 0.4)})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, st.Selected())
	assert.Equal(t, StopScoreThreshold, rep.reason)
	assert.Equal(t, []bool{true, false, true, false, true}, st.Eligible())
}

func TestGreedyWithoutReporterIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	global := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = global }()

	threshold := 0.4
	g := &Greedy{Count: Absolute(4), ScoreThreshold: &threshold}

	_, err := g.Fit(data(5), nil, ScorerHooks{Scorer: fixedScores(0.1, 0.9, 0.3, 0.7, 0.4)})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestGreedyRecordsTargets(t *testing.T) {
	y := mat.NewDense(3, 1, []float64{10, 20, 30})
	g := &Greedy{Count: Absolute(2)}

	st, err := g.Fit(data(3), y, ScorerHooks{Scorer: fixedScores(1, 3, 2)})
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 30}, mat.Col(nil, 0, st.YSelected()))
}

func TestGreedyShapeErrors(t *testing.T) {
	g := &Greedy{Count: Absolute(1)}
	hooks := ScorerHooks{Scorer: fixedScores(1, 2, 3)}

	_, err := g.Fit(data(3), mat.NewDense(2, 1, nil), hooks)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = g.Fit(data(4), nil, hooks)
	assert.ErrorIs(t, err, ErrShapeMismatch, "scorer returned too few scores")

	_, err = (&Greedy{Count: Absolute(5)}).Fit(data(3), nil, hooks)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestGreedyPropagatesScorerErrors(t *testing.T) {
	boom := errors.New("boom")
	g := &Greedy{Count: Absolute(1)}

	_, err := g.Fit(data(2), nil, ScorerHooks{Scorer: ScorerFunc(func(*mat.Dense, *mat.Dense) ([]float64, error) {
		return nil, boom
	})})
	assert.ErrorIs(t, err, boom)
}

func TestGreedyContinue(t *testing.T) {
	hooks := ScorerHooks{Scorer: fixedScores(0.1, 0.9, 0.3, 0.7, 0.5)}
	x := data(5)

	first, err := (&Greedy{Count: Absolute(2)}).Fit(x, nil, hooks)
	require.NoError(t, err)

	more, err := (&Greedy{Count: Absolute(4)}).Continue(x, nil, first, hooks)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, first.Selected(), "previous state is not modified")
	assert.Equal(t, []int{1, 3, 4, 2}, more.Selected())

	_, err = (&Greedy{Count: Absolute(4)}).Continue(x, nil, nil, hooks)
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = (&Greedy{Count: Absolute(4)}).Continue(data(6), nil, first, hooks)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = (&Greedy{Count: Absolute(4)}).Continue(x, mat.NewDense(5, 1, nil), first, hooks)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	g := &Greedy{Count: Absolute(2), Reporter: NewLogReporter(zerolog.New(&buf))}

	_, err := g.Fit(data(3), nil, ScorerHooks{Scorer: fixedScores(1, 3, 2)})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"selection started"`)
	assert.Contains(t, out, `"index":1`)
	assert.Contains(t, out, `"progress":100`)
	assert.Contains(t, out, `"reason":"count_reached"`)

	buf.Reset()
	threshold := 2.5
	g.ScoreThreshold = &threshold

	_, err = g.Fit(data(3), nil, ScorerHooks{Scorer: fixedScores(1, 3, 2)})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"reason":"score_threshold"`)
}
