package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jimelj/mailApp/internal/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath     string
	facilityReport string
	scratchDir     string
	outDir         string
	databaseURL    string
	batchSize      int
	workers        int
	verbose        bool
}

var flags globalFlags

func registerGlobalFlags(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.StringVar(&flags.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	fs.StringVarP(&flags.facilityReport, "facility-report", "f", "", "Facility reference workbook or CSV (defaults to FACILITY_REPORT env var)")
	fs.StringVar(&flags.scratchDir, "scratch-dir", "", "Directory for per-run scratch files")
	fs.StringVarP(&flags.outDir, "out-dir", "o", "", "Directory reports are written to")
	fs.StringVar(&flags.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	fs.IntVar(&flags.batchSize, "batch-size", 0, "Records decoded per batch")
	fs.IntVar(&flags.workers, "workers", 0, "Files processed concurrently in batch mode")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "Print detailed summaries")
}

// resolveConfig builds the effective configuration: the config file, then
// environment variables, then explicitly set flags, then built-in defaults.
func resolveConfig(fs *pflag.FlagSet, f globalFlags) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if f.verbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", f.configPath)
		}
	}

	cfg.ApplyEnv()

	// Only override if the flag was explicitly set
	if fs.Changed("facility-report") {
		cfg.FacilityReport = f.facilityReport
	}
	if fs.Changed("scratch-dir") {
		cfg.ScratchDir = f.scratchDir
	}
	if fs.Changed("out-dir") {
		cfg.OutDir = f.outDir
	}
	if fs.Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if fs.Changed("batch-size") {
		cfg.BatchSize = f.batchSize
	}
	if fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fs.Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func commandConfig(cmd *cobra.Command) (config.Config, error) {
	return resolveConfig(cmd.Flags(), flags)
}
