// Package config loads analysis settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of one analysis run.
type Config struct {
	Ingroup         string  `yaml:"ingroup"`
	Outgroup        string  `yaml:"outgroup"`
	RegionType      string  `yaml:"region_type"`
	Coding          bool    `yaml:"coding"`
	JukesCantor     bool    `yaml:"jukes_cantor"`
	SingletonCutoff float64 `yaml:"singleton_cutoff"`
	IncludeTerminal bool    `yaml:"include_terminal"`
	ExcludeTerminal bool    `yaml:"exclude_terminal"`
	CodonTable      string  `yaml:"codon_table"`
	Workers         int     `yaml:"workers"`
	MinSamples      int     `yaml:"min_samples"`
	Database        string  `yaml:"database"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Workers:    runtime.NumCPU(),
		MinSamples: 2,
	}
}

// ValidationError reports an out-of-range setting.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

// Validate checks the ranges of numeric settings.
func (c Config) Validate() error {
	if c.SingletonCutoff < 0 || c.SingletonCutoff > 1 {
		return &ValidationError{Field: "singleton_cutoff", Reason: "must be within [0, 1]"}
	}
	if c.Workers < 1 {
		return &ValidationError{Field: "workers", Reason: "must be at least 1"}
	}
	if c.MinSamples < 2 {
		return &ValidationError{Field: "min_samples", Reason: "must be at least 2"}
	}
	if c.Coding && c.RegionType != "" {
		return &ValidationError{Field: "region_type", Reason: "cannot be combined with coding"}
	}
	return nil
}

// Parse reads YAML over the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Save writes c as YAML.
func Save(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
