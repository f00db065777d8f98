package datasets

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tensorplex-labs/curselect/pkg/randomstate"
)

// DegenerateManifold generates samples on a closed one-dimensional curve
// embedded in nFeatures dimensions. Only a third of the samples are distinct,
// every other sample repeats one of them exactly, so selection quickly
// exhausts the information in the data. Y holds the curve parameter.
func DegenerateManifold(nSamples, nFeatures int, state randomstate.State) (*Dataset, error) {
	if nSamples <= 0 || nFeatures <= 0 {
		return nil, fmt.Errorf("degenerate manifold: need positive dimensions, got %dx%d", nSamples, nFeatures)
	}

	rng := state.Rand()
	distinct := max(1, nSamples/3)
	params := make([]float64, distinct)
	for i := range params {
		params[i] = 2 * math.Pi * rng.Float64()
	}

	x := mat.NewDense(nSamples, nFeatures, nil)
	y := mat.NewDense(nSamples, 1, nil)
	names := make([]string, nFeatures)
	for j := range nFeatures {
		harmonic := j/2 + 1
		if j%2 == 0 {
			names[j] = fmt.Sprintf("cos%d", harmonic)
		} else {
			names[j] = fmt.Sprintf("sin%d", harmonic)
		}
	}

	for i := range nSamples {
		t := params[i%distinct]
		y.Set(i, 0, t)
		for j := range nFeatures {
			harmonic := float64(j/2 + 1)
			if j%2 == 0 {
				x.Set(i, j, math.Cos(harmonic*t))
			} else {
				x.Set(i, j, math.Sin(harmonic*t))
			}
		}
	}

	return &Dataset{X: x, Y: y, Names: names}, nil
}
