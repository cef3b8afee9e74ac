package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/fadamon/fadacron/internal/model"
)

// ConfigYAMLRepository loads wrapper configuration from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetConfig loads a wrapper configuration from a YAML file and returns a
// validated domain model.
func (r *ConfigYAMLRepository) GetConfig(ctx context.Context, path string) (model.WrapperConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.WrapperConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.WrapperConfig{}, ctx.Err()
	}

	var cfg WrapperConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.WrapperConfig{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return model.WrapperConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg.toModel(), nil
}

// WrapperConfig represents the YAML structure for wrapper configuration.
// All fields are optional, empty fields fall back to the conventions.
type WrapperConfig struct {
	Script        string `yaml:"script"`
	Runner        string `yaml:"runner"`
	VenvDir       string `yaml:"venv_dir"`
	LogsDir       string `yaml:"logs_dir"`
	EnvFile       string `yaml:"env_file"`
	RetentionDays int    `yaml:"retention_days"`
}

func (c WrapperConfig) validate() error {
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative, got: %d", c.RetentionDays)
	}
	return nil
}

func (c WrapperConfig) toModel() model.WrapperConfig {
	return model.WrapperConfig{
		Script:        c.Script,
		Runner:        c.Runner,
		VenvDir:       c.VenvDir,
		LogsDir:       c.LogsDir,
		EnvFile:       c.EnvFile,
		RetentionDays: c.RetentionDays,
	}
}
