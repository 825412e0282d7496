package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/moneydairy/moneydairy/internal/model"
)

// FileName is the config file name inside a data root.
const FileName = "moneydairy.yaml"

// Environment variables that override the file.
const (
	EnvDB       = "MONEYDAIRY_DB"
	EnvLogLevel = "MONEYDAIRY_LOG_LEVEL"
)

// Config represents the top-level moneydairy.yaml configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Import   ImportConfig   `yaml:"import"`
	Log      LogConfig      `yaml:"log"`
	Git      GitConfig      `yaml:"git"`
	Banks    []BankConfig   `yaml:"banks,omitempty"`
}

// DatabaseConfig locates the SQLite database, relative to the data root
// unless absolute.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ImportConfig controls statement import.
type ImportConfig struct {
	WatchSchedule     string `yaml:"watch_schedule"` // cron spec, e.g. "@every 5m"
	TimeZone          string `yaml:"time_zone"`
	NearDuplicateDays int    `yaml:"near_duplicate_days"`
	MoveProcessed     bool   `yaml:"move_processed"`
	Workers           int    `yaml:"workers"` // files processed in parallel
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// GitConfig controls versioning of the rule files.
type GitConfig struct {
	Enabled     bool   `yaml:"enabled"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// BankConfig overrides the display text of a bank and adds column aliases
// for export variants the built-in layout does not know.
type BankConfig struct {
	Slug               string        `yaml:"slug"`
	DisplayDescription string        `yaml:"display_description,omitempty"`
	Columns            ColumnsConfig `yaml:"columns,omitempty"`
}

// ColumnsConfig lists extra column labels per canonical field.
type ColumnsConfig struct {
	Date        []string `yaml:"date,omitempty"`
	Description []string `yaml:"description,omitempty"`
	Amount      []string `yaml:"amount,omitempty"`
	Charge      []string `yaml:"charge,omitempty"`
	Deposit     []string `yaml:"deposit,omitempty"`
	OperationID []string `yaml:"operation_id,omitempty"`
}

// ColumnMap converts the aliases to a model.ColumnMap. The sign policy is
// left to the bank's layout.
func (c ColumnsConfig) ColumnMap() model.ColumnMap {
	return model.ColumnMap{
		Date:        c.Date,
		Description: c.Description,
		Amount:      c.Amount,
		Charge:      c.Charge,
		Deposit:     c.Deposit,
		OperationID: c.OperationID,
	}
}

// Load reads a moneydairy.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
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

// ApplyEnv loads envFile when it exists, without overriding variables that
// are already set, then applies the MONEYDAIRY_* overrides.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("loading %s: %w", envFile, err)
			}
		}
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Bank returns the config entry for slug, if any.
func (c *Config) Bank(slug string) (BankConfig, bool) {
	for _, b := range c.Banks {
		if b.Slug == slug {
			return b, true
		}
	}
	return BankConfig{}, false
}

// Default returns a Config with sensible defaults for a new data root.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "moneydairy.db",
		},
		Import: ImportConfig{
			WatchSchedule:     "@every 5m",
			TimeZone:          "America/Santiago",
			NearDuplicateDays: 7,
			MoveProcessed:     true,
			Workers:           4,
		},
		Log: LogConfig{
			Level: "info",
		},
		Git: GitConfig{
			Enabled:     true,
			AuthorName:  "moneydairy",
			AuthorEmail: "moneydairy@localhost",
		},
	}
}
