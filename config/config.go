// Package config loads the cspipe configuration from a YAML file, applies
// CSP_ prefixed environment overrides and validates the result.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/imishinist/go-csp/flow"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "CSP_"

type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Workers  WorkersConfig  `yaml:"workers"`
}

type PipelineConfig struct {
	Marker     string `yaml:"marker" validate:"len=1"`
	Collapsed  string `yaml:"collapsed" validate:"len=1"`
	Separator  string `yaml:"separator" validate:"len=1"`
	Pad        string `yaml:"pad" validate:"len=1"`
	LineLength int    `yaml:"line_length" validate:"gt=0"`
	Capacity   int    `yaml:"capacity" validate:"gte=-1"`
	BlankTail  bool   `yaml:"blank_tail"`
	Mode       string `yaml:"mode" validate:"oneof=direct concurrent emulated"`
	Policy     string `yaml:"policy" validate:"oneof=strict tolerant"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type MetricsConfig struct {
	// Listen is the address serving /metrics; empty disables it.
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
}

type WorkersConfig struct {
	Parallelism uint `yaml:"parallelism" validate:"gt=0"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := flow.DefaultOptions()
	return &Config{
		Pipeline: PipelineConfig{
			Marker:     string(opts.Marker),
			Collapsed:  string(opts.Collapsed),
			Separator:  string(opts.Separator),
			Pad:        string(opts.Pad),
			LineLength: opts.LineLength,
			Capacity:   opts.Capacity,
			Mode:       flow.Direct.String(),
			Policy:     flow.Tolerant.String(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Workers: WorkersConfig{
			Parallelism: 4,
		},
	}
}

// Load reads configuration from file on top of Default and applies
// environment variable overrides. An empty path skips the file.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	if err := applyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return cfg, nil
}

var validate = validator.New()

// ValidationErrors holds every invalid field.
type ValidationErrors struct {
	Errors []string
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(v.Errors, "; "))
}

// Validate checks every section.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationErrors{}
	for _, e := range verrs {
		out.Errors = append(out.Errors, fmt.Sprintf("%s: failed %q", e.Namespace(), e.ActualTag()))
	}
	return out
}

// Options converts the pipeline section into stage options.
func (p *PipelineConfig) Options() flow.Options {
	return flow.Options{
		Marker:     firstRune(p.Marker),
		Collapsed:  firstRune(p.Collapsed),
		Separator:  firstRune(p.Separator),
		Pad:        firstRune(p.Pad),
		LineLength: p.LineLength,
		Capacity:   p.Capacity,
		BlankTail:  p.BlankTail,
	}
}

// ReformatMode returns the configured flow.Mode.
func (p *PipelineConfig) ReformatMode() (flow.Mode, error) {
	return flow.ParseMode(p.Mode)
}

// SquashPolicy returns the configured flow.Policy.
func (p *PipelineConfig) SquashPolicy() flow.Policy {
	if p.Policy == flow.Strict.String() {
		return flow.Strict
	}
	return flow.Tolerant
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// applyEnvOverrides checks for environment variables with the CSP_ prefix.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	env := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return v, ok && v != ""
	}
	atoi := func(name string, dst *int) error {
		v, ok := env(name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s%s", EnvPrefix, name)
		}
		*dst = n
		return nil
	}

	// Pipeline overrides
	if v, ok := env("PIPELINE_MODE"); ok {
		cfg.Pipeline.Mode = v
	}
	if v, ok := env("PIPELINE_POLICY"); ok {
		cfg.Pipeline.Policy = v
	}
	if err := atoi("PIPELINE_LINE_LENGTH", &cfg.Pipeline.LineLength); err != nil {
		return err
	}
	if err := atoi("PIPELINE_CAPACITY", &cfg.Pipeline.Capacity); err != nil {
		return err
	}

	// Logging overrides
	if v, ok := env("LOGGING_LEVEL"); ok {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v, ok := env("LOGGING_FORMAT"); ok {
		cfg.Logging.Format = strings.ToLower(v)
	}

	if v, ok := env("METRICS_LISTEN"); ok {
		cfg.Metrics.Listen = v
	}

	parallelism := int(cfg.Workers.Parallelism)
	if err := atoi("WORKERS_PARALLELISM", &parallelism); err != nil {
		return err
	}
	if parallelism < 0 {
		return errors.Errorf("invalid %sWORKERS_PARALLELISM: %d", EnvPrefix, parallelism)
	}
	cfg.Workers.Parallelism = uint(parallelism)
	return nil
}
