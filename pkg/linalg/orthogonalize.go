package linalg

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultTolerance is the norm below which a reference direction is
// treated as already exhausted.
const DefaultTolerance = 1e-12

// OrthogonalizeRows returns a copy of x with the component of every row that
// lies in the span of the rows of ref removed.
func OrthogonalizeRows(x, ref mat.Matrix, tol float64) (*mat.Dense, error) {
	_, cols := x.Dims()
	refRows, refCols := ref.Dims()
	if refCols != cols {
		return nil, fmt.Errorf("orthogonalize rows: %w: x has %d columns, reference has %d",
			ErrDimensionMismatch, cols, refCols)
	}

	refs := make([][]float64, refRows)
	for i := range refRows {
		refs[i] = mat.Row(nil, i, ref)
	}

	out := mat.DenseCopyOf(x)
	projectOut(out, orthonormalBasis(refs, tol))
	return out, nil
}

// OrthogonalizeRowsAgainst returns a copy of x with every row orthogonalized
// against x's own row idx.
func OrthogonalizeRowsAgainst(x mat.Matrix, idx int, tol float64) (*mat.Dense, error) {
	rows, _ := x.Dims()
	if idx < 0 || idx >= rows {
		return nil, fmt.Errorf("orthogonalize rows: index %d out of range [0, %d)", idx, rows)
	}

	out := mat.DenseCopyOf(x)
	projectOut(out, orthonormalBasis([][]float64{mat.Row(nil, idx, x)}, tol))
	return out, nil
}

// orthonormalBasis runs modified Gram-Schmidt over vecs. Vectors whose
// residual norm falls below tol, or is zero, are skipped.
func orthonormalBasis(vecs [][]float64, tol float64) [][]float64 {
	basis := make([][]float64, 0, len(vecs))
	for i, v := range vecs {
		r := append([]float64(nil), v...)
		for _, b := range basis {
			floats.AddScaled(r, -floats.Dot(b, r), b)
		}

		norm := floats.Norm(r, 2)
		if norm < tol || norm == 0 {
			log.Trace().Int("reference", i).Float64("norm", norm).Msg("skipping exhausted reference direction")
			continue
		}
		floats.Scale(1/norm, r)
		basis = append(basis, r)
	}
	return basis
}

func projectOut(x *mat.Dense, basis [][]float64) {
	rows, _ := x.Dims()
	coeffs := make([]float64, rows)
	for _, b := range basis {
		bv := mat.NewVecDense(len(b), b)
		cv := mat.NewVecDense(rows, coeffs)
		cv.MulVec(x, bv)
		x.RankOne(x, -1, cv, bv)
	}
}

// RegressOutSamples removes from y the part linearly explained by the
// reference samples: y - x·xRefᵀ·pinv(xRef·xRefᵀ)·yRef. Singular values of
// the reference Gram matrix at or below tol times the largest are ignored.
func RegressOutSamples(y, x, yRef, xRef mat.Matrix, tol float64) (*mat.Dense, error) {
	yRows, yCols := y.Dims()
	xRows, xCols := x.Dims()
	yRefRows, yRefCols := yRef.Dims()
	xRefRows, xRefCols := xRef.Dims()

	switch {
	case yRows != xRows:
		return nil, fmt.Errorf("regress out samples: %w: y has %d rows, x has %d", ErrDimensionMismatch, yRows, xRows)
	case yRefRows != xRefRows:
		return nil, fmt.Errorf("regress out samples: %w: reference y has %d rows, reference x has %d",
			ErrDimensionMismatch, yRefRows, xRefRows)
	case xCols != xRefCols:
		return nil, fmt.Errorf("regress out samples: %w: x has %d columns, reference x has %d",
			ErrDimensionMismatch, xCols, xRefCols)
	case yCols != yRefCols:
		return nil, fmt.Errorf("regress out samples: %w: y has %d columns, reference y has %d",
			ErrDimensionMismatch, yCols, yRefCols)
	}

	if xRefRows == 0 {
		return mat.DenseCopyOf(y), nil
	}

	var gram mat.Dense
	gram.Mul(xRef, xRef.T())

	gramInv, err := Pinv(&gram, tol)
	if err != nil {
		return nil, fmt.Errorf("regress out samples: %w", err)
	}

	var cross, weights, fragment mat.Dense
	cross.Mul(x, xRef.T())
	weights.Mul(gramInv, yRef)
	fragment.Mul(&cross, &weights)

	out := mat.DenseCopyOf(y)
	out.Sub(out, &fragment)
	return out, nil
}
