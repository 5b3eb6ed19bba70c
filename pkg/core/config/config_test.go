package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	content := `
port: 9090
reports_dir: /data/reports
quote_url: https://quotes.example.com/latest.csv
poll_interval_sec: 60
raw_dollar_threshold: 250000
holdings:
  - ECOM
  - NVDA
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9090 || cfg.ReportsDir != "/data/reports" || cfg.PollIntervalSec != 60 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.RawDollarThreshold != 250000 {
		t.Errorf("threshold = %v, want 250000", cfg.RawDollarThreshold)
	}
	if !reflect.DeepEqual(cfg.Holdings, []string{"ECOM", "NVDA"}) {
		t.Errorf("holdings = %v", cfg.Holdings)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	if err := os.WriteFile(path, []byte("port: 9090\nreports_dir: /file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7777")
	t.Setenv("REPORTS_DIR", "/env")
	t.Setenv("HOLDINGS", " ecom, nvda ,")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7777 {
		t.Errorf("port = %d, env must win", cfg.Port)
	}
	if cfg.ReportsDir != "/env" {
		t.Errorf("reportsDir = %q, env must win", cfg.ReportsDir)
	}
	if !reflect.DeepEqual(cfg.Holdings, []string{"ECOM", "NVDA"}) {
		t.Errorf("holdings = %v, want normalized tickers", cfg.Holdings)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	if err := os.WriteFile(path, []byte("port: -1\npoll_interval_sec: 0\nraw_dollar_threshold: -5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.Port != def.Port || cfg.PollIntervalSec != def.PollIntervalSec || cfg.RawDollarThreshold != def.RawDollarThreshold {
		t.Errorf("invalid values must fall back to defaults, got %+v", cfg)
	}
}
