// Package config loads the YAML run configuration and turns it into
// engine options. Every knob has a sane default so a missing or empty
// file still yields a runnable setup; credentials can also come from the
// environment so they stay out of config files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/loschmidt/BenchStab/pkg/predictor"
	"github.com/loschmidt/BenchStab/pkg/scheduler"
)

// Duration wraps time.Duration so YAML values like "90s" or "2m" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode duration: %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// PredictorConfig overrides the general settings for one predictor.
// Pointer fields distinguish "not set" from an explicit zero.
type PredictorConfig struct {
	BatchSize    *int      `yaml:"batch_size"`
	MaxRetries   *int      `yaml:"max_retries"`
	WaitInterval *Duration `yaml:"wait_interval"`
	Username     string    `yaml:"username"`
	Password     string    `yaml:"password"`
}

// Config is the full run configuration.
type Config struct {
	BatchSize    int      `yaml:"batch_size"`
	MaxRetries   int      `yaml:"max_retries"`
	WaitInterval Duration `yaml:"wait_interval"`

	Permissive bool `yaml:"permissive"`
	SkipHeader bool `yaml:"skip_header"`

	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	OutFolder string `yaml:"outfolder"`
	Database  string `yaml:"database"`

	Predictors map[string]PredictorConfig `yaml:"predictors"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		BatchSize:    scheduler.DefaultBatchSize,
		MaxRetries:   scheduler.DefaultMaxRetries,
		WaitInterval: Duration(scheduler.DefaultWaitInterval),
		OutFolder:    ".",
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BatchSize == 0 || c.BatchSize < -1 {
		return fmt.Errorf("batch_size must be positive or -1, got %d", c.BatchSize)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be positive, got %d", c.MaxRetries)
	}
	if c.WaitInterval <= 0 {
		return fmt.Errorf("wait_interval must be positive, got %s", c.WaitInterval.Std())
	}
	return nil
}

// SchedulerOptions converts the configuration into engine options,
// resolving per-predictor overrides and credentials. Credentials missing
// from the file fall back to BENCHSTAB_<NAME>_USERNAME and
// BENCHSTAB_<NAME>_PASSWORD environment variables.
func (c *Config) SchedulerOptions() scheduler.Options {
	opts := scheduler.Options{
		BatchSize:    c.BatchSize,
		MaxRetries:   c.MaxRetries,
		WaitInterval: c.WaitInterval.Std(),
		Credentials:  make(map[string]predictor.Credentials),
		PerPredictor: make(map[string]scheduler.Tuning),
	}
	for name, pc := range c.Predictors {
		// Registry names are case-insensitive, so the option maps use
		// the folded name too.
		key := strings.ToLower(name)
		if pc.BatchSize != nil || pc.MaxRetries != nil || pc.WaitInterval != nil {
			t := scheduler.Tuning{
				BatchSize:  pc.BatchSize,
				MaxRetries: pc.MaxRetries,
			}
			if pc.WaitInterval != nil {
				wi := pc.WaitInterval.Std()
				t.WaitInterval = &wi
			}
			opts.PerPredictor[key] = t
		}
		creds := predictor.Credentials{
			Username: getEnv(credEnvKey(name, "USERNAME"), pc.Username),
			Password: getEnv(credEnvKey(name, "PASSWORD"), pc.Password),
		}
		if creds != (predictor.Credentials{}) {
			opts.Credentials[key] = creds
		}
	}
	return opts
}

func credEnvKey(name, field string) string {
	name = strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return "BENCHSTAB_" + name + "_" + field
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
