package linalg

import "errors"

var (
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidRank       = errors.New("rank must be positive")
	ErrFactorization     = errors.New("factorization failed")
)
