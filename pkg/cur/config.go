package cur

import (
	"errors"
	"fmt"
	"math"

	"github.com/tensorplex-labs/curselect/pkg/linalg"
	"github.com/tensorplex-labs/curselect/pkg/randomstate"
	"github.com/tensorplex-labs/curselect/pkg/selection"
)

var ErrInvalidConfig = errors.New("invalid CUR configuration")

const DefaultScoreZeroTolerance = 1e-12

type Config struct {
	Count              selection.Count
	ScoreThreshold     *float64
	Iterative          bool
	Rank               int
	ScoreZeroTolerance float64
	PowerIterations    linalg.PowerIterations
	RandomState        randomstate.State
	Progress           bool
	// Reporter overrides the progress reporter installed by Progress.
	Reporter selection.Reporter
}

func DefaultConfig() Config {
	return Config{
		Iterative:          true,
		Rank:               1,
		ScoreZeroTolerance: DefaultScoreZeroTolerance,
		PowerIterations:    linalg.AutoPowerIterations,
		RandomState:        randomstate.Entropy(),
	}
}

type Option func(*Config)

// WithCount sets how many samples to select. Defaults to half of them.
func WithCount(count selection.Count) Option {
	return func(c *Config) {
		c.Count = count
	}
}

// WithScoreThreshold stops selection once the best remaining importance
// is at or below threshold.
func WithScoreThreshold(threshold float64) Option {
	return func(c *Config) {
		c.ScoreThreshold = &threshold
	}
}

// WithIterative controls whether the working matrix is re-orthogonalized
// after every selection.
func WithIterative(iterative bool) Option {
	return func(c *Config) {
		c.Iterative = iterative
	}
}

// WithRank sets the number of left singular vectors in the importance
// score.
func WithRank(rank int) Option {
	return func(c *Config) {
		c.Rank = rank
	}
}

func WithScoreZeroTolerance(tol float64) Option {
	return func(c *Config) {
		c.ScoreZeroTolerance = tol
	}
}

func WithPowerIterations(p linalg.PowerIterations) Option {
	return func(c *Config) {
		c.PowerIterations = p
	}
}

func WithRandomState(state randomstate.State) Option {
	return func(c *Config) {
		c.RandomState = state
	}
}

// WithSeed is shorthand for WithRandomState(randomstate.Seed(seed)).
func WithSeed(seed uint64) Option {
	return WithRandomState(randomstate.Seed(seed))
}

// WithProgress logs one event per selection.
func WithProgress(progress bool) Option {
	return func(c *Config) {
		c.Progress = progress
	}
}

func WithReporter(r selection.Reporter) Option {
	return func(c *Config) {
		c.Reporter = r
	}
}

func (c Config) Validate() error {
	if c.Rank <= 0 {
		return fmt.Errorf("%w: rank must be positive, got %d", ErrInvalidConfig, c.Rank)
	}
	if err := c.Count.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.ScoreThreshold != nil && (math.IsNaN(*c.ScoreThreshold) || math.IsInf(*c.ScoreThreshold, 0)) {
		return fmt.Errorf("%w: score threshold must be finite, got %g", ErrInvalidConfig, *c.ScoreThreshold)
	}
	if c.ScoreZeroTolerance < 0 || math.IsNaN(c.ScoreZeroTolerance) {
		return fmt.Errorf("%w: score zero tolerance must be >= 0, got %g", ErrInvalidConfig, c.ScoreZeroTolerance)
	}
	if err := c.PowerIterations.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
