package scenario

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrScenarioParse   = errors.New("scenario parse error")
	ErrUnknownTarget   = errors.New("step references unknown target")
)

// Config controls how a scenario is run.
type Config struct {
	// Strict turns steps referencing unknown entities or peers into errors.
	// Otherwise such steps are logged and skipped.
	Strict bool `yaml:"strict"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Strict:   true,
		LogLevel: "info",
	}
}

func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
}
