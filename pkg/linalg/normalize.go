package linalg

import (
	"gonum.org/v1/gonum/floats"
)

func L1Normalize(arr []float64) []float64 {
	result := make([]float64, len(arr))
	copy(result, arr)

	sum := floats.Sum(result)
	if sum > 0 {
		floats.Scale(1.0/sum, result)
	}

	return result
}

// MinMaxScale maps scores linearly onto [0, 1]. A constant vector maps to
// all zeros.
func MinMaxScale(scores []float64) []float64 {
	if len(scores) == 0 {
		return []float64{}
	}

	lo, hi := floats.Min(scores), floats.Max(scores)
	result := make([]float64, len(scores))
	if hi == lo {
		return result
	}

	scale := 1 / (hi - lo)
	floats.ScaleTo(result, scale, scores)
	floats.AddConst(-lo*scale, result)
	return result
}
