// Package config loads the on-disk YAML configuration for the server and
// dataset tooling.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
	Dataset    DatasetConfig    `yaml:"dataset"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type SimulationConfig struct {
	DefaultSteps      int   `yaml:"default_steps"`
	DefaultPopulation int   `yaml:"default_population"`
	DefaultSeed       int64 `yaml:"default_seed"`
	DetectorWindow    int   `yaml:"detector_window"`
}

type DatasetConfig struct {
	OutDir string `yaml:"out_dir"`
	DBPath string `yaml:"db_path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"*"},
		},
		Simulation: SimulationConfig{
			DefaultSteps:      24,
			DefaultPopulation: 100,
			DefaultSeed:       42,
			DetectorWindow:    6,
		},
		Dataset: DatasetConfig{
			OutDir: "data",
			DBPath: "data/runs.db",
		},
	}
}

// Load reads and validates a YAML config, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyDefaults fills zero values left by partial config files.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = def.Server.CORSOrigins
	}
	if c.Simulation.DefaultSteps == 0 {
		c.Simulation.DefaultSteps = def.Simulation.DefaultSteps
	}
	if c.Simulation.DefaultPopulation == 0 {
		c.Simulation.DefaultPopulation = def.Simulation.DefaultPopulation
	}
	if c.Simulation.DefaultSeed == 0 {
		c.Simulation.DefaultSeed = def.Simulation.DefaultSeed
	}
	if c.Simulation.DetectorWindow == 0 {
		c.Simulation.DetectorWindow = def.Simulation.DetectorWindow
	}
	if c.Dataset.OutDir == "" {
		c.Dataset.OutDir = def.Dataset.OutDir
	}
	if c.Dataset.DBPath == "" {
		c.Dataset.DBPath = def.Dataset.DBPath
	}
}

// Validate rejects configurations that would fail downstream.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Simulation.DefaultSteps < 1 {
		return errors.New("simulation.default_steps must be positive")
	}
	if c.Simulation.DefaultPopulation < 1 {
		return errors.New("simulation.default_population must be positive")
	}
	if c.Simulation.DetectorWindow < 1 {
		return errors.New("simulation.detector_window must be positive")
	}
	return nil
}
