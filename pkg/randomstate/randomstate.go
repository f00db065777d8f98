// Package randomstate normalizes the different ways a caller can seed a
// randomized computation into a reusable generator.
package randomstate

import (
	"math/rand/v2"
)

type kind int

const (
	kindEntropy kind = iota
	kindSeed
	kindSource
)

// State is either an integer seed, an existing source, or nothing.
// The zero value draws from system entropy.
type State struct {
	kind kind
	seed uint64
	src  rand.Source
}

// Seed returns a State that yields identical generators on every call to
// Rand, so repeated computations over the same data are reproducible.
func Seed(seed uint64) State {
	return State{kind: kindSeed, seed: seed}
}

// FromSource wraps an existing source. Consecutive calls to Rand share the
// source and advance it.
func FromSource(src rand.Source) State {
	if src == nil {
		return Entropy()
	}
	return State{kind: kindSource, src: src}
}

// Entropy returns a State seeded from the runtime's entropy on every use.
func Entropy() State {
	return State{kind: kindEntropy}
}

func (s State) IsSeeded() bool {
	return s.kind == kindSeed
}

// Rand returns a generator for one randomized computation.
func (s State) Rand() *rand.Rand {
	switch s.kind {
	case kindSeed:
		return rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	case kindSource:
		return rand.New(s.src)
	default:
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

// Source returns a source suitable for gonum distributions.
func (s State) Source() rand.Source {
	if s.kind == kindSource {
		return s.src
	}
	return s.Rand()
}
