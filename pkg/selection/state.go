package selection

import (
	"gonum.org/v1/gonum/mat"
)

// State is the bookkeeping of one selection run: which samples are still
// eligible and which were selected, in order, together with their rows.
type State struct {
	nSamples  int
	eligible  []bool
	selected  []int
	xSelected [][]float64
	ySelected [][]float64
	hasY      bool
}

func newState(nSamples int, hasY bool) *State {
	eligible := make([]bool, nSamples)
	for i := range eligible {
		eligible[i] = true
	}
	return &State{
		nSamples: nSamples,
		eligible: eligible,
		hasY:     hasY,
	}
}

func (s *State) NSelected() int {
	return len(s.selected)
}

// Eligible returns a copy of the eligibility mask.
func (s *State) Eligible() []bool {
	return append([]bool(nil), s.eligible...)
}

// EligibleIndices returns the eligible sample indices in increasing order.
func (s *State) EligibleIndices() []int {
	idx := make([]int, 0, s.nSamples-len(s.selected))
	for i, ok := range s.eligible {
		if ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// Selected returns the selected sample indices in selection order.
func (s *State) Selected() []int {
	return append([]int(nil), s.selected...)
}

// Support returns the mask of selected samples.
func (s *State) Support() []bool {
	support := make([]bool, s.nSamples)
	for _, i := range s.selected {
		support[i] = true
	}
	return support
}

// XSelected returns the selected rows in selection order, or nil before
// the first selection.
func (s *State) XSelected() *mat.Dense {
	return stack(s.xSelected)
}

// YSelected returns the targets of the selected rows, or nil when the run
// has no targets or nothing was selected yet.
func (s *State) YSelected() *mat.Dense {
	if !s.hasY {
		return nil
	}
	return stack(s.ySelected)
}

func (s *State) record(x, y *mat.Dense, idx int) {
	s.selected = append(s.selected, idx)
	s.eligible[idx] = false
	s.xSelected = append(s.xSelected, mat.Row(nil, idx, x))
	if s.hasY {
		s.ySelected = append(s.ySelected, mat.Row(nil, idx, y))
	}
}

func (s *State) clone() *State {
	c := &State{
		nSamples:  s.nSamples,
		eligible:  append([]bool(nil), s.eligible...),
		selected:  append([]int(nil), s.selected...),
		xSelected: append([][]float64(nil), s.xSelected...),
		ySelected: append([][]float64(nil), s.ySelected...),
		hasY:      s.hasY,
	}
	return c
}

func stack(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return nil
	}
	out := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, r := range rows {
		out.SetRow(i, r)
	}
	return out
}
