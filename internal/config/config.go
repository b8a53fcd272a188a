package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Ledger   LedgerConfig   `yaml:"ledger"`
	Fiscal   FiscalConfig   `yaml:"fiscal"`
	Accounts AccountsConfig `yaml:"accounts"`
	Storage  StorageConfig  `yaml:"storage"`
}

// LedgerConfig identifies the set of books. ID is stamped once at init
// and carried by the store as its instance id for the lifetime of the
// ledger.
type LedgerConfig struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, e.g. "01-01"
}

// AccountsConfig names the special accounts the reports need.
type AccountsConfig struct {
	RetainedEarnings string   `yaml:"retained_earnings"`
	Cash             []string `yaml:"cash"`
}

// StorageConfig locates the chart and journal files, relative to the
// ledger directory.
type StorageConfig struct {
	Chart   string `yaml:"chart"`
	Journal string `yaml:"journal"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default(name string) *Config {
	return &Config{
		Ledger: LedgerConfig{Name: name, ID: uuid.NewString()},
		Fiscal: FiscalConfig{YearStart: "01-01"},
		Accounts: AccountsConfig{
			RetainedEarnings: "Retained Earnings",
			Cash:             []string{"Cash"},
		},
		Storage: StorageConfig{
			Chart:   "chart.csv",
			Journal: "journal.csv",
		},
	}
}
