// Package config loads command-line configuration for the srx tools.
//
// Values are layered, lowest precedence first: built-in defaults, a YAML
// file, SRX_* environment variables, then flags set on the command line.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Default values.
const (
	DefaultLanguage  = "en"
	DefaultLogLevel  = "info"
	DefaultTolerance = 1
	// Stdio is the input or output path meaning stdin or stdout.
	Stdio = "-"
)

// BenchConfig holds settings of the ruleset benchmark.
type BenchConfig struct {
	Corpus          string  `koanf:"corpus"`
	Tolerance       int     `koanf:"tolerance"`
	PrecisionWeight float64 `koanf:"precision_weight"`
	RecallWeight    float64 `koanf:"recall_weight"`
}

// Config holds all CLI configuration options.
type Config struct {
	Language     string        `koanf:"language"`
	SRXFile      string        `koanf:"srxfile"`
	Input        string        `koanf:"input"`
	Output       string        `koanf:"output"`
	Verbose      bool          `koanf:"verbose"`
	LogLevel     string        `koanf:"log_level"`
	MatchTimeout time.Duration `koanf:"match_timeout"`
	Bench        BenchConfig   `koanf:"bench"`
}

// Validate checks the settings shared by all commands. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Language) == "" {
		errs = append(errs, errors.New("language is required"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.MatchTimeout < 0 {
		errs = append(errs, fmt.Errorf("match_timeout must not be negative, got %s", c.MatchTimeout))
	}
	if c.Bench.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("bench.tolerance must not be negative, got %d", c.Bench.Tolerance))
	}
	if c.Bench.PrecisionWeight < 0 || c.Bench.RecallWeight < 0 {
		errs = append(errs, errors.New("bench weights must not be negative"))
	} else if c.Bench.PrecisionWeight+c.Bench.RecallWeight == 0 {
		errs = append(errs, errors.New("bench weights must not both be zero"))
	}

	return errors.Join(errs...)
}

// ValidateSplit checks the settings needed to segment text.
func (c *Config) ValidateSplit() error {
	err := c.Validate()
	if strings.TrimSpace(c.SRXFile) == "" {
		err = errors.Join(err, errors.New("srxfile is required\nHint: pass --srxfile or set srxfile in srx.yaml"))
	}
	return err
}

// Level returns the log level. Verbose forces debug.
func (c *Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return lvl, nil
}
