// SPDX-License-Identifier: AGPL-3.0-or-later

// Package analysisconfig loads the sonarprep settings file.
package analysisconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvToken names the environment variable that overrides the token
// from the settings file, so secrets can stay out of the repository.
const EnvToken = "SONARPREP_TOKEN"

const (
	DefaultTimeout  = 120 * time.Second
	DefaultInterval = 2 * time.Second
)

// Duration parses Go duration strings ("90s", "2m") from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root of the settings file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Coverage CoverageConfig `yaml:"coverage"`
	RuleSet  RuleSetConfig  `yaml:"ruleset"`
}

// ServerConfig describes the build server and the credentials used
// against it.
type ServerConfig struct {
	URL       string `yaml:"url"`
	Username  string `yaml:"username"`
	Token     string `yaml:"token"`
	UserAgent string `yaml:"user_agent"`
}

// CoverageConfig tunes the coverage polling loop.
type CoverageConfig struct {
	Timeout  Duration `yaml:"timeout"`
	Interval Duration `yaml:"interval"`
}

// RuleSetConfig lists the CheckIds emitted into the rule-set file and
// the default output path.
type RuleSetConfig struct {
	Rules  []string `yaml:"rules"`
	Output string   `yaml:"output"`
}

// Default returns the configuration used when no settings file is
// given.
func Default() Config {
	return Config{
		Coverage: CoverageConfig{
			Timeout:  Duration(DefaultTimeout),
			Interval: Duration(DefaultInterval),
		},
	}
}

// Load reads and validates a settings file. Values absent from the
// file keep their defaults; EnvToken, when set, overrides the token.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path supplied by the operator
	if err != nil {
		return Config{}, fmt.Errorf("reading settings file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing settings file %s: %w", path, err)
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if token := os.Getenv(EnvToken); token != "" {
		cfg.Server.Token = token
	}
}

// Validate checks the invariants every command relies on. Server
// presence is checked separately by ValidateServer, since rule-set
// generation works offline.
func (c Config) Validate() error {
	if c.Coverage.Timeout <= 0 {
		return fmt.Errorf("coverage.timeout must be positive, got %s", c.Coverage.Timeout.Std())
	}
	if c.Coverage.Interval <= 0 {
		return fmt.Errorf("coverage.interval must be positive, got %s", c.Coverage.Interval.Std())
	}
	return nil
}

// ValidateServer checks the settings needed by commands that talk to
// the build server.
func (c Config) ValidateServer() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	return nil
}
