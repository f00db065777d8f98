package cur

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/curselect/pkg/linalg"
	"github.com/tensorplex-labs/curselect/pkg/randomstate"
)

// LeverageScorer scores each row by its squared length in the span of the
// top Rank left singular vectors, found by randomized SVD. Targets do not
// enter the score.
type LeverageScorer struct {
	Rank            int
	PowerIterations linalg.PowerIterations
	RandomState     randomstate.State
	// Singular directions with a singular value at or below Cutoff are
	// treated as exhausted and contribute nothing.
	Cutoff float64
}

func (s LeverageScorer) Score(x, _ *mat.Dense) ([]float64, error) {
	rows, _ := x.Dims()

	svd, err := linalg.RandomizedSVD(x, s.Rank, linalg.RandomizedOptions{
		PowerIterations: s.PowerIterations,
		FlipSign:        true,
		RandomState:     s.RandomState,
	})
	if err != nil {
		return nil, err
	}

	pi := make([]float64, rows)
	for j := range svd.Rank() {
		if svd.S[j] <= s.Cutoff {
			continue
		}
		for i := range rows {
			u := svd.U.At(i, j)
			pi[i] += u * u
		}
	}
	return pi, nil
}
