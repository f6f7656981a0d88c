package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const validConfig = `
app:
  name: "backtest_go"
  version: "0.1.0"
backtest:
  initial_cash: "50000"
  use_adjusted_values: true
  strict_ordering: false
commission:
  scheme: "fixed"
  fixed_amount: "1.5"
journal:
  enabled: true
  path: "data/test.db"
logging:
  level: "debug"
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.App.Name != "backtest_go" {
		t.Errorf("app name: got %q", cfg.App.Name)
	}
	if !cfg.Backtest.InitialCash.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("initial cash: expected 50000, got %s", cfg.Backtest.InitialCash)
	}
	if !cfg.Backtest.UseAdjustedValues {
		t.Error("use_adjusted_values should be true")
	}
	if cfg.Backtest.StrictOrdering {
		t.Error("strict_ordering should be false")
	}
	if cfg.Commission.Scheme != "fixed" || !cfg.Commission.FixedAmount.Equal(decimal.NewFromFloat(1.5)) {
		t.Errorf("commission: got %s %s", cfg.Commission.Scheme, cfg.Commission.FixedAmount)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path != "data/test.db" {
		t.Errorf("journal: got %+v", cfg.Journal)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level: got %q", cfg.Logging.Level)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("BACKTEST_INITIAL_CASH", "777")
	t.Setenv("BACKTEST_LOG_LEVEL", "warn")
	t.Setenv("BACKTEST_JOURNAL_PATH", "/tmp/override.db")

	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.Backtest.InitialCash.Equal(decimal.NewFromInt(777)) {
		t.Errorf("initial cash override: got %s", cfg.Backtest.InitialCash)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level override: got %q", cfg.Logging.Level)
	}
	if cfg.Journal.Path != "/tmp/override.db" {
		t.Errorf("journal path override: got %q", cfg.Journal.Path)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative cash", "backtest:\n  initial_cash: \"-1\"\n"},
		{"unknown commission scheme", "commission:\n  scheme: \"percent\"\n"},
		{"journal without path", "journal:\n  enabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
