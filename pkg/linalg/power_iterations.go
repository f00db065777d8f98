package linalg

import (
	"fmt"
	"strconv"
	"strings"
)

// PowerIterations is the number of power iterations run by RandomizedSVD,
// or an automatic choice based on the requested rank.
type PowerIterations struct {
	n   int
	set bool
}

// AutoPowerIterations picks 7 iterations for ranks below a tenth of the
// smaller matrix dimension and 4 otherwise.
var AutoPowerIterations = PowerIterations{}

func Iterations(n int) PowerIterations {
	return PowerIterations{n: n, set: true}
}

func (p PowerIterations) IsAuto() bool {
	return !p.set
}

func (p PowerIterations) Validate() error {
	if p.set && p.n < 0 {
		return fmt.Errorf("power iterations must be >= 0, got %d", p.n)
	}
	return nil
}

func (p PowerIterations) Resolve(rank, rows, cols int) int {
	if p.set {
		return p.n
	}
	if float64(rank) < 0.1*float64(min(rows, cols)) {
		return 7
	}
	return 4
}

func (p PowerIterations) String() string {
	if !p.set {
		return "auto"
	}
	return strconv.Itoa(p.n)
}

// ParsePowerIterations accepts "auto" (or an empty string) or a non-negative
// integer.
func ParsePowerIterations(s string) (PowerIterations, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "auto" {
		return AutoPowerIterations, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return PowerIterations{}, fmt.Errorf("invalid power iterations %q: %w", s, err)
	}
	p := Iterations(n)
	if err := p.Validate(); err != nil {
		return PowerIterations{}, err
	}
	return p, nil
}
