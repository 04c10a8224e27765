package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "SRX_"

// configNames are looked up in the working directory when no file is given.
var configNames = []string{"srx.yaml", "srx.yml"}

// flagKeys maps flag names whose config key is not the snake_case name.
var flagKeys = map[string]string{
	"corpus":           "bench.corpus",
	"tolerance":        "bench.tolerance",
	"precision-weight": "bench.precision_weight",
	"recall-weight":    "bench.recall_weight",
}

// Result is a loaded configuration and the file it was read from, if any.
type Result struct {
	Config   *Config
	FileUsed string
}

// findConfigFile finds the config file to use.
// Priority: explicit path > srx.yaml > srx.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration from defaults, file, environment and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Result, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"language":               DefaultLanguage,
		"input":                  Stdio,
		"output":                 Stdio,
		"verbose":                false,
		"log_level":              DefaultLogLevel,
		"match_timeout":          "0s",
		"bench.tolerance":        DefaultTolerance,
		"bench.precision_weight": 1.0,
		"bench.recall_weight":    1.0,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment variables
	// Transform: SRX_MATCH_TIMEOUT -> match_timeout, SRX_BENCH_CORPUS -> bench.corpus
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &Result{Config: &cfg, FileUsed: used}, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "bench_"); ok {
		return "bench." + rest
	}
	return key
}

func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}
