package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Pinv returns the Moore-Penrose pseudo-inverse of a. Singular values at or
// below rcond times the largest singular value are treated as zero.
func Pinv(a mat.Matrix, rcond float64) (*mat.Dense, error) {
	rows, cols := a.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("pinv: %w: empty %dx%d matrix", ErrDimensionMismatch, rows, cols)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("pinv: %w", ErrFactorization)
	}

	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	out := mat.NewDense(cols, rows, nil)
	if len(values) == 0 {
		return out, nil
	}

	cutoff := rcond * floats.Max(values)
	for i, s := range values {
		if s <= cutoff {
			continue
		}
		out.RankOne(out, 1/s, v.ColView(i), u.ColView(i))
	}
	return out, nil
}
