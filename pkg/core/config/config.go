// Package config loads dashboard settings from a YAML file with
// environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Config holds the dashboard runtime settings.
type Config struct {
	Port            int    `yaml:"port"`
	ReportsDir      string `yaml:"reports_dir"`
	QuoteURL        string `yaml:"quote_url"`
	PollIntervalSec int    `yaml:"poll_interval_sec"`

	// RawDollarThreshold tunes the "values above this are raw dollars,
	// not millions" heuristic. Kept configurable because legitimately
	// large per-share values can trip it.
	RawDollarThreshold float64 `yaml:"raw_dollar_threshold"`

	// Holdings is the display-side portfolio filter. The core never
	// consumes it; it is passed through to the rendering layer.
	Holdings []string `yaml:"holdings"`
}

// Default returns the built-in settings used when no config file
// exists.
func Default() Config {
	return Config{
		Port:               8080,
		ReportsDir:         "reports",
		PollIntervalSec:    300,
		RawDollarThreshold: 100000,
	}
}

// Load reads the YAML file at path (missing file is fine, defaults
// apply) and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No file, defaults + env only.
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.Port <= 0 {
		cfg.Port = Default().Port
	}
	if cfg.PollIntervalSec <= 0 {
		cfg.PollIntervalSec = Default().PollIntervalSec
	}
	if cfg.RawDollarThreshold <= 0 {
		cfg.RawDollarThreshold = Default().RawDollarThreshold
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("REPORTS_DIR"); v != "" {
		cfg.ReportsDir = v
	}
	if v := os.Getenv("QUOTE_URL"); v != "" {
		cfg.QuoteURL = v
	}
	if v := os.Getenv("POLL_INTERVAL_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PollIntervalSec = n
		}
	}
	if v := os.Getenv("RAW_DOLLAR_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RawDollarThreshold = f
		}
	}
	if v := os.Getenv("HOLDINGS"); v != "" {
		var holdings []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
				holdings = append(holdings, t)
			}
		}
		cfg.Holdings = holdings
	}
}
