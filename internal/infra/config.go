package infra

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the engine. Values loaded from
// the YAML file can be overridden through environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Backtest struct {
		InitialCash       decimal.Decimal `yaml:"initial_cash"`
		UseAdjustedValues bool            `yaml:"use_adjusted_values"`
		StrictOrdering    bool            `yaml:"strict_ordering"`
	} `yaml:"backtest"`

	Commission struct {
		Scheme      string          `yaml:"scheme"` // "none", "fixed", "flat_rate"
		FixedAmount decimal.Decimal `yaml:"fixed_amount"`
	} `yaml:"commission"`

	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and validates the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Backtest.InitialCash.IsNegative() {
		return fmt.Errorf("initial cash must not be negative: %s", c.Backtest.InitialCash)
	}

	switch c.Commission.Scheme {
	case "", "none", "fixed", "flat_rate":
	default:
		return fmt.Errorf("unknown commission scheme: %s", c.Commission.Scheme)
	}
	if c.Commission.Scheme == "fixed" && c.Commission.FixedAmount.IsNegative() {
		return fmt.Errorf("fixed commission must not be negative: %s", c.Commission.FixedAmount)
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal enabled but no path configured")
	}

	return nil
}

// overrideWithEnv applies environment overrides when present.
func overrideWithEnv(cfg *Config) {
	if cash := os.Getenv("BACKTEST_INITIAL_CASH"); cash != "" {
		if v, err := decimal.NewFromString(cash); err == nil {
			cfg.Backtest.InitialCash = v
		}
	}
	if level := os.Getenv("BACKTEST_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if path := os.Getenv("BACKTEST_JOURNAL_PATH"); path != "" {
		cfg.Journal.Path = path
	}
}
