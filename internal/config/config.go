// Package config loads the dashboard's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the dashboard server.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Runs     RunsConfig     `yaml:"runs"`
	History  HistoryConfig  `yaml:"history"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
	BodyLimit    string `yaml:"bodyLimit"`
	EnableCORS   bool   `yaml:"enableCORS"`
	AllowOrigins string `yaml:"allowOrigins"`
}

// AnalysisConfig configures access to the external analysis service.
type AnalysisConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

// RunsConfig controls in-memory run lifecycle.
type RunsConfig struct {
	MaxRuns                int `yaml:"maxRuns"`
	TimeoutMinutes         int `yaml:"timeoutMinutes"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// HistoryConfig controls the DuckDB run-history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			BindAddress:  "0.0.0.0",
			ReadTimeout:  60,
			WriteTimeout: 120,
			IdleTimeout:  120,
			BodyLimit:    "200M",
			EnableCORS:   true,
			AllowOrigins: "",
		},
		Analysis: AnalysisConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 120 * time.Second,
		},
		Runs: RunsConfig{
			MaxRuns:                25,
			TimeoutMinutes:         30,
			CleanupIntervalMinutes: 5,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "./data/history.duckdb",
		},
	}
}

// Load reads the YAML file at path, layered over defaults and environment
// overrides. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DASHBOARD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ANALYSIS_SERVICE_URL"); v != "" {
		cfg.Analysis.BaseURL = v
	}
	if v := os.Getenv("HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Analysis.BaseURL == "" {
		return errors.New("analysis.baseURL must be set")
	}
	if c.Analysis.Timeout <= 0 {
		c.Analysis.Timeout = Default().Analysis.Timeout
	}
	if c.Runs.MaxRuns <= 0 {
		c.Runs.MaxRuns = Default().Runs.MaxRuns
	}
	return nil
}

// ServerAddr returns the listen address.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates the directories the server writes into.
func (c *Config) EnsureDirectories() error {
	if !c.History.Enabled {
		return nil
	}
	dir := filepath.Dir(c.History.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating history directory %s: %w", dir, err)
	}
	return nil
}
