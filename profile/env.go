package profile

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/plainlog/plainlog/logger"
)

// envPrefix is the prefix for environment overrides: PLAINLOG_PROFILE,
// PLAINLOG_LEVEL, PLAINLOG_FILENAME and so on.
const envPrefix = "PLAINLOG_"

// Load reads profile configuration from an optional YAML file and the
// environment. Environment variables win over the file; both win over the
// profile defaults.
//
// A missing file is not an error; a file that exists but fails to parse
// is.
func Load(configPath string) (Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
		} else if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	// PLAINLOG_ACTION_LEVEL -> action_level
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// FromEnv builds a logger purely from PLAINLOG_ environment variables.
func FromEnv() (*logger.Logger, error) {
	cfg, err := Load("")
	if err != nil {
		return nil, err
	}
	return Build(cfg)
}
