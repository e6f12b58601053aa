package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimelj/mailApp/internal/export"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"facility_report": "facilityReport.xlsx",
		"batch_size": 250,
		"workers": 2,
		"verbose": true,
		"inbox": {"dir": "inbox", "schedule": "@every 1m"},
		"capstone": {"customer_number": "10001", "name": "Example Mailers"}
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "facilityReport.xlsx", cfg.FacilityReport)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "inbox", cfg.Inbox.Dir)
	assert.Equal(t, "@every 1m", cfg.Inbox.Schedule)
	assert.Equal(t, "10001", cfg.Capstone.CustomerNumber)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_SchemaViolation(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"facilty_report": "typo.xlsx"}`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "does not match schema")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"negative batch", Config{BatchSize: -1}, "BatchSize"},
		{"too many workers", Config{Workers: 65}, "Workers"},
		{"bad port", Config{Server: ServerConfig{Port: 70000}}, "Port"},
		{"bad schedule", Config{Inbox: InboxConfig{Schedule: "every so often"}}, "invalid inbox schedule"},
		{"same dirs", Config{ScratchDir: "out", OutDir: "out/"}, "must differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCapstoneOrigin(t *testing.T) {
	cfg := Config{}
	_, err := cfg.CapstoneOrigin()
	assert.Error(t, err)

	cfg.Capstone = export.Origin{
		CustomerNumber: "10001",
		Name:           "Example Mailers",
		Address:        "1 Dock Rd",
		City:           "Edison",
		State:          "NJ",
		ZIP:            "08837",
	}
	origin, err := cfg.CapstoneOrigin()
	require.NoError(t, err)
	assert.Equal(t, "Example Mailers", origin.Name)

	cfg.Capstone.ZIP = "8837"
	_, err = cfg.CapstoneOrigin()
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvFacilityReport, "/data/facilityReport.xlsx")
	t.Setenv(EnvInboxDir, "/data/inbox")
	t.Setenv(EnvOutDir, "")

	cfg := Config{FacilityReport: "from-file.xlsx", OutDir: "reports"}
	cfg.ApplyEnv()

	assert.Equal(t, "/data/facilityReport.xlsx", cfg.FacilityReport)
	assert.Equal(t, "/data/inbox", cfg.Inbox.Dir)
	assert.Equal(t, "reports", cfg.OutDir)
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		FacilityReport: "custom.xlsx",
		Workers:        8,
		Capstone:       export.Origin{Name: "Custom"},
	}

	merged := partial.MergeWithDefaults(Defaults())

	// Custom values should be preserved
	assert.Equal(t, "custom.xlsx", merged.FacilityReport)
	assert.Equal(t, 8, merged.Workers)
	assert.Equal(t, "Custom", merged.Capstone.Name)

	// Default values should fill in empty fields
	assert.Equal(t, 500, merged.BatchSize)
	assert.Equal(t, "@every 5m", merged.Inbox.Schedule)
	assert.Equal(t, 6, merged.Inbox.MaxPerTick)
	assert.Equal(t, 8080, merged.Server.Port)
	assert.Equal(t, export.DefaultPickupTime, merged.Capstone.PickupTime)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{FacilityReport: "x.xlsx", BatchSize: 10}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "x.xlsx", merged.FacilityReport)
	assert.Equal(t, 10, merged.BatchSize)
}
