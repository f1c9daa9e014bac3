// Package config handles tile splitter configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all splitter settings.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig holds the source document and destination directory.
type PathsConfig struct {
	Source    string `yaml:"source"`     // Combined glTF scene to split
	OutputDir string `yaml:"output_dir"` // Must already exist
}

// ExportConfig holds tile emission settings.
type ExportConfig struct {
	Workers int `yaml:"workers"` // 1 = sequential
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the asset tree's standard locations.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Source:    "assets/asset_src/tiles.gltf",
			OutputDir: "assets/tiles/",
		},
		Export: ExportConfig{
			Workers: 1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that the config can drive a run.
func (c *Config) Validate() error {
	var errs []error
	if c.Paths.Source == "" {
		errs = append(errs, errors.New("paths.source is empty"))
	}
	if c.Paths.OutputDir == "" {
		errs = append(errs, errors.New("paths.output_dir is empty"))
	}
	if c.Export.Workers < 1 {
		errs = append(errs, fmt.Errorf("export.workers must be at least 1, got %d", c.Export.Workers))
	}
	return errors.Join(errs...)
}
