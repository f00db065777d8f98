package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/tensorplex-labs/curselect/pkg/randomstate"
)

const DefaultOversamples = 10

type RandomizedOptions struct {
	Oversamples     int // extra random vectors; DefaultOversamples when <= 0
	PowerIterations PowerIterations
	FlipSign        bool
	RandomState     randomstate.State
}

// TruncatedSVD holds the leading singular triplets of a matrix. U is m×k,
// V is n×k and S has length k, with k <= min(m, n).
type TruncatedSVD struct {
	U *mat.Dense
	S []float64
	V *mat.Dense
}

func (t *TruncatedSVD) Rank() int {
	return len(t.S)
}

// RandomizedSVD approximates the top rank singular triplets of a using a
// randomized range finder with power iterations (Halko, Martinsson and
// Tropp, 2011).
func RandomizedSVD(a mat.Matrix, rank int, opts RandomizedOptions) (*TruncatedSVD, error) {
	if rank <= 0 {
		return nil, fmt.Errorf("randomized svd: %w, got %d", ErrInvalidRank, rank)
	}
	if err := opts.PowerIterations.Validate(); err != nil {
		return nil, fmt.Errorf("randomized svd: %w", err)
	}

	rows, cols := a.Dims()
	if rows == 0 || cols == 0 {
		return &TruncatedSVD{}, nil
	}

	// Work on the tall orientation so the range finder's QR is well posed.
	work := a
	transpose := rows < cols
	if transpose {
		work = a.T()
		rows, cols = cols, rows
	}

	oversamples := opts.Oversamples
	if oversamples <= 0 {
		oversamples = DefaultOversamples
	}
	k := min(rank, cols)
	size := min(k+oversamples, cols)
	iterations := opts.PowerIterations.Resolve(rank, rows, cols)

	q := rangeFinder(work, size, iterations, opts.RandomState)

	var b mat.Dense
	b.Mul(q.T(), work)

	var svd mat.SVD
	if ok := svd.Factorize(&b, mat.SVDThin); !ok {
		return nil, fmt.Errorf("randomized svd: %w", ErrFactorization)
	}

	var uHat, v mat.Dense
	svd.UTo(&uHat)
	svd.VTo(&v)
	values := svd.Values(nil)

	var u mat.Dense
	u.Mul(q, &uHat)

	left := mat.DenseCopyOf(u.Slice(0, rows, 0, k))
	right := mat.DenseCopyOf(v.Slice(0, cols, 0, k))
	if transpose {
		left, right = right, left
	}

	if opts.FlipSign {
		flipSigns(left, right)
	}

	return &TruncatedSVD{
		U: left,
		S: append([]float64(nil), values[:k]...),
		V: right,
	}, nil
}

// rangeFinder returns an orthonormal rows×size basis approximating the
// range of a.
func rangeFinder(a mat.Matrix, size, iterations int, state randomstate.State) *mat.Dense {
	_, cols := a.Dims()

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: state.Source()}
	omega := mat.NewDense(cols, size, nil)
	for i := range cols {
		for j := range size {
			omega.Set(i, j, normal.Rand())
		}
	}

	var y mat.Dense
	y.Mul(a, omega)
	q := orthonormalColumns(&y)

	for range iterations {
		var z mat.Dense
		z.Mul(a.T(), q)
		zq := orthonormalColumns(&z)

		var next mat.Dense
		next.Mul(a, zq)
		q = orthonormalColumns(&next)
	}

	return q
}

// orthonormalColumns returns the thin Q factor of m, which must have at
// least as many rows as columns.
func orthonormalColumns(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()

	var qr mat.QR
	qr.Factorize(m)

	var q mat.Dense
	qr.QTo(&q)

	return mat.DenseCopyOf(q.Slice(0, rows, 0, cols))
}

// flipSigns makes the largest-magnitude entry of every left singular vector
// positive, negating the paired right vector to keep the factorization.
func flipSigns(left, right *mat.Dense) {
	rows, k := left.Dims()
	rightRows, _ := right.Dims()

	for j := range k {
		best, bestAbs := 0, -1.0
		for i := range rows {
			if v := math.Abs(left.At(i, j)); v > bestAbs {
				best, bestAbs = i, v
			}
		}
		if left.At(best, j) >= 0 {
			continue
		}
		for i := range rows {
			left.Set(i, j, -left.At(i, j))
		}
		for i := range rightRows {
			right.Set(i, j, -right.At(i, j))
		}
	}
}
