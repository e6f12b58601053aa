package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimelj/mailApp/internal/config"
)

// parseFlags registers the global flags on a fresh command and parses args.
func parseFlags(t *testing.T, args ...string) (*cobra.Command, globalFlags) {
	t.Helper()
	var f globalFlags
	cmd := &cobra.Command{Use: "test"}
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "")
	fs.StringVarP(&f.facilityReport, "facility-report", "f", "", "")
	fs.StringVar(&f.scratchDir, "scratch-dir", "", "")
	fs.StringVarP(&f.outDir, "out-dir", "o", "", "")
	fs.StringVar(&f.databaseURL, "db-url", "", "")
	fs.IntVar(&f.batchSize, "batch-size", 0, "")
	fs.IntVar(&f.workers, "workers", 0, "")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "")
	require.NoError(t, fs.Parse(args))
	return cmd, f
}

func clearEnv(t *testing.T) {
	for _, key := range []string{
		config.EnvFacilityReport, config.EnvDatabaseURL, config.EnvScratchDir,
		config.EnvInboxDir, config.EnvOutDir,
	} {
		t.Setenv(key, "")
	}
}

func TestResolveConfig_Defaults(t *testing.T) {
	clearEnv(t)
	cmd, f := parseFlags(t)

	cfg, err := resolveConfig(cmd.Flags(), f)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultFacilityReport, cfg.FacilityReport)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, ".", cfg.OutDir)
	assert.Equal(t, "@every 5m", cfg.Inbox.Schedule)
	assert.False(t, cfg.Verbose)
}

func TestResolveConfig_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"facility_report": "file.xlsx", "out_dir": "file-out", "batch_size": 100, "verbose": true}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv(config.EnvFacilityReport, "env.xlsx")
	t.Setenv(config.EnvOutDir, "env-out")

	cmd, f := parseFlags(t, "--config", path, "-o", "flag-out", "--workers", "2")

	cfg, err := resolveConfig(cmd.Flags(), f)
	require.NoError(t, err)
	assert.Equal(t, "env.xlsx", cfg.FacilityReport) // env over file
	assert.Equal(t, "flag-out", cfg.OutDir)         // flag over env
	assert.Equal(t, 100, cfg.BatchSize)             // file over default
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.Verbose)
}

func TestResolveConfig_Invalid(t *testing.T) {
	clearEnv(t)

	cmd, f := parseFlags(t, "--workers", "100")
	_, err := resolveConfig(cmd.Flags(), f)
	assert.Error(t, err)

	cmd, f = parseFlags(t, "--config", filepath.Join(t.TempDir(), "missing.json"))
	_, err = resolveConfig(cmd.Flags(), f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
