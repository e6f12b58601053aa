// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/jimelj/mailApp/internal/export"
	"github.com/jimelj/mailApp/internal/schemas"
)

// Environment variables read by ApplyEnv.
const (
	EnvFacilityReport = "FACILITY_REPORT"
	EnvDatabaseURL    = "DATABASE_URL"
	EnvScratchDir     = "MAILAPP_SCRATCH_DIR"
	EnvInboxDir       = "MAILAPP_INBOX_DIR"
	EnvOutDir         = "MAILAPP_OUT_DIR"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	FacilityReport string `json:"facility_report,omitempty"` // Facility reference workbook or CSV
	ScratchDir     string `json:"scratch_dir,omitempty"`     // Root for per-run scratch directories
	OutDir         string `json:"out_dir,omitempty"`         // Where reports are written

	// Limits
	BatchSize int `json:"batch_size,omitempty" validate:"gte=0"`
	Workers   int `json:"workers,omitempty" validate:"gte=0,lte=64"`

	// Behavior
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Verbose     bool   `json:"verbose,omitempty"`

	Inbox    InboxConfig   `json:"inbox,omitempty"`
	Server   ServerConfig  `json:"server,omitempty"`
	Capstone export.Origin `json:"capstone,omitempty" validate:"-"`
}

// InboxConfig controls the archive watcher.
type InboxConfig struct {
	Dir        string `json:"dir,omitempty"`
	Schedule   string `json:"schedule,omitempty"` // cron spec or descriptor such as "@every 5m"
	MaxPerTick int    `json:"max_per_tick,omitempty" validate:"gte=0"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port int `json:"port,omitempty" validate:"gte=0,lte=65535"`
}

// DefaultFacilityReport is looked up relative to the working directory.
const DefaultFacilityReport = "facilityReport.xlsx"

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		FacilityReport: DefaultFacilityReport,
		ScratchDir:     filepath.Join(os.TempDir(), "mailapp"),
		OutDir:         ".",
		BatchSize:      500,
		Workers:        4,
		Inbox: InboxConfig{
			Schedule:   "@every 5m",
			MaxPerTick: 6,
		},
		Server:   ServerConfig{Port: 8080},
		Capstone: export.Origin{PickupTime: export.DefaultPickupTime},
	}
}

// LoadConfig loads configuration from a JSON file.
// The file is checked against the embedded config schema before parsing.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := schemas.Validate(schemas.Config, data); err != nil {
		return nil, fmt.Errorf("config file %s does not match schema: %w", path, err)
	}

	return &cfg, nil
}

// ApplyEnv overlays values from the environment onto c.
func (c *Config) ApplyEnv() {
	overlay := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	overlay(&c.FacilityReport, EnvFacilityReport)
	overlay(&c.DatabaseURL, EnvDatabaseURL)
	overlay(&c.ScratchDir, EnvScratchDir)
	overlay(&c.Inbox.Dir, EnvInboxDir)
	overlay(&c.OutDir, EnvOutDir)
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Inbox.Schedule != "" {
		if _, err := cron.ParseStandard(c.Inbox.Schedule); err != nil {
			return fmt.Errorf("config error: invalid inbox schedule %q: %w", c.Inbox.Schedule, err)
		}
	}

	if c.ScratchDir != "" && c.OutDir != "" && filepath.Clean(c.ScratchDir) == filepath.Clean(c.OutDir) {
		return fmt.Errorf("config error: 'scratch_dir' and 'out_dir' must differ")
	}

	return nil
}

// CapstoneOrigin returns the Capstone shipper block after checking that its
// required fields are set.
func (c *Config) CapstoneOrigin() (export.Origin, error) {
	validate := validator.New()
	if err := validate.Struct(c.Capstone); err != nil {
		return export.Origin{}, fmt.Errorf("config error: capstone origin: %w", err)
	}
	return c.Capstone, nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.FacilityReport, defaults.FacilityReport)
	mergeString(&result.ScratchDir, defaults.ScratchDir)
	mergeString(&result.OutDir, defaults.OutDir)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.Inbox.Dir, defaults.Inbox.Dir)
	mergeString(&result.Inbox.Schedule, defaults.Inbox.Schedule)

	o, d := &result.Capstone, defaults.Capstone
	mergeString(&o.CustomerNumber, d.CustomerNumber)
	mergeString(&o.Name, d.Name)
	mergeString(&o.Address, d.Address)
	mergeString(&o.Suite, d.Suite)
	mergeString(&o.City, d.City)
	mergeString(&o.State, d.State)
	mergeString(&o.ZIP, d.ZIP)
	mergeString(&o.Phone, d.Phone)
	mergeString(&o.Remarks, d.Remarks)
	mergeString(&o.Email, d.Email)
	mergeString(&o.PickupTime, d.PickupTime)

	// Int fields: use default if zero
	if result.BatchSize == 0 {
		result.BatchSize = defaults.BatchSize
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.Inbox.MaxPerTick == 0 {
		result.Inbox.MaxPerTick = defaults.Inbox.MaxPerTick
	}
	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}
