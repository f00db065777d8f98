package selection

import (
	"fmt"
	"strconv"
	"strings"
)

// Count is the number of samples to select: an absolute number, a fraction
// of the sample count, or (zero value) half of the samples.
type Count struct {
	n        int
	fraction float64
	kind     countKind
}

type countKind int

const (
	countHalf countKind = iota
	countAbsolute
	countFraction
)

func Absolute(n int) Count {
	return Count{n: n, kind: countAbsolute}
}

func Fraction(f float64) Count {
	return Count{fraction: f, kind: countFraction}
}

// ParseCount reads "12" as an absolute count and "0.25" as a fraction.
func ParseCount(s string) (Count, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Count{}, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		c := Absolute(n)
		return c, c.Validate()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Count{}, fmt.Errorf("%w: %q", ErrInvalidCount, s)
	}
	c := Fraction(f)
	return c, c.Validate()
}

// Validate checks what can be checked without knowing the sample count.
func (c Count) Validate() error {
	switch c.kind {
	case countAbsolute:
		if c.n < 0 {
			return fmt.Errorf("%w: count must be >= 0, got %d", ErrInvalidCount, c.n)
		}
	case countFraction:
		if !(c.fraction > 0 && c.fraction < 1) {
			return fmt.Errorf("%w: fraction must be in (0, 1), got %g", ErrInvalidCount, c.fraction)
		}
	}
	return nil
}

// Resolve returns the absolute number of samples to select out of nSamples.
func (c Count) Resolve(nSamples int) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	switch c.kind {
	case countAbsolute:
		if c.n > nSamples {
			return 0, fmt.Errorf("%w: cannot select %d of %d samples", ErrInvalidCount, c.n, nSamples)
		}
		return c.n, nil
	case countFraction:
		return int(c.fraction * float64(nSamples)), nil
	default:
		return nSamples / 2, nil
	}
}

func (c Count) String() string {
	switch c.kind {
	case countAbsolute:
		return strconv.Itoa(c.n)
	case countFraction:
		return strconv.FormatFloat(c.fraction, 'g', -1, 64)
	default:
		return "half"
	}
}
