// Package config defines environment configuration structs and loaders.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/tensorplex-labs/curselect/pkg/cur"
	"github.com/tensorplex-labs/curselect/pkg/linalg"
	"github.com/tensorplex-labs/curselect/pkg/randomstate"
	"github.com/tensorplex-labs/curselect/pkg/selection"
	"github.com/tensorplex-labs/curselect/pkg/utils/logger"
)

type AppConfig struct {
	LoggingEnvConfig
	SelectionEnvConfig
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFrom parses cfg from the given variables instead of the process
// environment.
func LoadConfigFrom(environ map[string]string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoggingEnvConfig configures the global loggers.
type LoggingEnvConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"prod"`
	LogLevel    string `env:"LOG_LEVEL"`
}

func (c LoggingEnvConfig) LoggerOptions() logger.Options {
	return logger.Options{Environment: c.Environment, Level: c.LogLevel}
}

// SelectionEnvConfig holds defaults for CUR sample selection.
type SelectionEnvConfig struct {
	Count              string   `env:"CUR_COUNT"`
	ScoreThreshold     *float64 `env:"CUR_SCORE_THRESHOLD"`
	Iterative          bool     `env:"CUR_ITERATIVE" envDefault:"true"`
	Rank               int      `env:"CUR_RANK" envDefault:"1"`
	ScoreZeroTolerance float64  `env:"CUR_SCORE_ZERO_TOLERANCE" envDefault:"1e-12"`
	PowerIterations    string   `env:"CUR_POWER_ITERATIONS" envDefault:"auto"`
	RandomSeed         *uint64  `env:"CUR_RANDOM_SEED"`
	Progress           bool     `env:"CUR_PROGRESS" envDefault:"false"`
}

// Options converts the environment values into selector options.
func (c SelectionEnvConfig) Options() ([]cur.Option, error) {
	count, err := selection.ParseCount(c.Count)
	if err != nil {
		return nil, fmt.Errorf("CUR_COUNT: %w", err)
	}

	power, err := linalg.ParsePowerIterations(c.PowerIterations)
	if err != nil {
		return nil, fmt.Errorf("CUR_POWER_ITERATIONS: %w", err)
	}

	opts := []cur.Option{
		cur.WithCount(count),
		cur.WithIterative(c.Iterative),
		cur.WithRank(c.Rank),
		cur.WithScoreZeroTolerance(c.ScoreZeroTolerance),
		cur.WithPowerIterations(power),
		cur.WithProgress(c.Progress),
	}
	if c.ScoreThreshold != nil {
		opts = append(opts, cur.WithScoreThreshold(*c.ScoreThreshold))
	}
	if c.RandomSeed != nil {
		opts = append(opts, cur.WithRandomState(randomstate.Seed(*c.RandomSeed)))
	}

	return opts, nil
}

// NewSelector builds a CUR selector from the environment defaults, with
// extra options applied last.
func (c SelectionEnvConfig) NewSelector(extra ...cur.Option) (*cur.Selector, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return cur.New(append(opts, extra...)...)
}
