// Package logger provides a global logger for the application
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/zap"
)

// Logger backs Sugar. It discards everything until Setup runs.
var Logger = zap.NewNop()

type Options struct {
	// Environment is one of dev, test or prod. Defaults to $ENVIRONMENT,
	// then prod.
	Environment string
	// Level overrides the environment's level (trace, debug, info, ...).
	Level string
	// EnvFiles are loaded into the process environment. When empty, a
	// .env file in the working directory is loaded if it exists.
	EnvFiles []string
}

func setup(opts Options) error {
	if len(opts.EnvFiles) > 0 {
		if err := godotenv.Load(opts.EnvFiles...); err != nil {
			return fmt.Errorf("load env files: %w", err)
		}
	} else if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

	environment := strings.ToLower(opts.Environment)
	if environment == "" {
		environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	}
	if environment == "" {
		environment = "prod"
	}

	var logLevel zerolog.Level
	zapConfig := zap.NewProductionConfig()
	switch environment {
	case "dev", "test":
		logLevel = zerolog.TraceLevel
		zapConfig = zap.NewDevelopmentConfig()
		log.Info().Str("environment", environment).Msg("Development/Test environment detected - enabling all log levels")
	case "prod":
		logLevel = zerolog.InfoLevel
		log.Info().Str("environment", environment).Msg("Production environment detected - enabling info level and above")
	default:
		logLevel = zerolog.InfoLevel
		log.Warn().Str("environment", environment).Msg("Unknown environment - defaulting to production log level (info and above)")
	}

	if opts.Level != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return fmt.Errorf("parse log level: %w", err)
		}
		logLevel = level
		log.Info().Str("level", level.String()).Msg("Log level override detected - overriding environment log level")
	}

	// Apply the log level globally
	zerolog.SetGlobalLevel(logLevel)

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return fmt.Errorf("build zap logger: %w", err)
	}
	Logger = zapLogger

	log.Debug().Str("environment", environment).Str("level", logLevel.String()).Msg("logging configured")
	return nil
}

// Setup configures the global zerolog logger and the zap logger behind
// Sugar.
// Example usage:
//
//	if err := logger.Setup(logger.Options{Level: "debug"}); err != nil { ... }
func Setup(opts Options) error {
	return setup(opts)
}

// Init is Setup with the environment's defaults and LOG_LEVEL.
func Init() error {
	return setup(Options{Level: os.Getenv("LOG_LEVEL")})
}

// Sugar returns a sugared logger for easier use
// TODO: replace with zerolog
func Sugar() *zap.SugaredLogger {
	return Logger.Sugar()
}
