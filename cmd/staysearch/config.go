package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"staysearch/internal/storage"
)

// Config holds the server configuration.
type Config struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// SeedFile is an optional YAML file of property listings loaded into the
	// store at startup. Useful with the in-memory backend.
	SeedFile string `yaml:"seed_file"`
	// CandidateDefaultLimit caps candidate resolution when a request carries
	// no override; CandidateMaxLimit is the ceiling any override is clamped
	// to.
	CandidateDefaultLimit int `yaml:"candidate_default_limit"`
	CandidateMaxLimit     int `yaml:"candidate_max_limit"`
}

// LoadConfig loads configuration from a YAML file and environment variables.
// Environment variables override YAML values.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:                  ":8080",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
		ShutdownTimeout:       15 * time.Second,
		CandidateDefaultLimit: storage.DefaultCandidateLimit,
		CandidateMaxLimit:     storage.MaxCandidateLimit,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := os.Getenv("STAYSEARCH_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("PORT"); v != "" { // Heroku-style
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("STAYSEARCH_SEED_FILE"); v != "" {
		cfg.SeedFile = v
	}
	if v := os.Getenv("STAYSEARCH_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = d
		}
	}
	if v := os.Getenv("STAYSEARCH_CANDIDATE_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CandidateDefaultLimit = n
		}
	}
	if v := os.Getenv("STAYSEARCH_CANDIDATE_MAX_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CandidateMaxLimit = n
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Limits returns the candidate cap policy stores resolve under.
func (c *Config) Limits() storage.Limits {
	return storage.Limits{Default: c.CandidateDefaultLimit, Max: c.CandidateMaxLimit}
}

// Validate checks that required configuration fields are sane.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required (set STAYSEARCH_ADDR or yaml)")
	}
	if c.ShutdownTimeout < time.Second {
		return errors.New("shutdown_timeout must be at least 1 second")
	}
	if c.CandidateDefaultLimit < 1 {
		return errors.New("candidate_default_limit must be at least 1")
	}
	if c.CandidateMaxLimit < c.CandidateDefaultLimit {
		return errors.New("candidate_max_limit must be at least candidate_default_limit")
	}
	return nil
}
