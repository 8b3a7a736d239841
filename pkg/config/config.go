// Package config loads the settings of the noisegraph command line tool.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/chazu/noisegraph/pkg/engine"
	"github.com/chazu/noisegraph/pkg/graph"
)

// Environment variables that override file settings.
const (
	EnvEvalTimeout = "NOISEGRAPH_EVAL_TIMEOUT"
	EnvVerbosity   = "NOISEGRAPH_VERBOSITY"
)

// DefaultResolution is the preview grid width and height.
const DefaultResolution = 16

var validate = validator.New()

// Config is the top-level configuration file.
type Config struct {
	EvalTimeout time.Duration `yaml:"eval_timeout" validate:"gt=0"`
	Verbosity   int           `yaml:"verbosity" validate:"gte=0,lte=4"`
	Preview     Preview       `yaml:"preview"`
}

// Preview controls how `noisegraph eval` samples a root's viewport.
type Preview struct {
	Scale      float64 `yaml:"scale" validate:"gt=0"`
	Resolution int     `yaml:"resolution" validate:"gte=1,lte=1024"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		EvalTimeout: engine.DefaultEvalTimeout,
		Preview: Preview{
			Scale:      graph.DefaultImageScale,
			Resolution: DefaultResolution,
		},
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := decode(data, &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, c.Validate()
}

func decode(data []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvEvalTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvEvalTimeout, err)
		}
		c.EvalTimeout = d
	}
	if v := os.Getenv(EnvVerbosity); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVerbosity, err)
		}
		c.Verbosity = n
	}
	return nil
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
