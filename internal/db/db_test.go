package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactStepConstants(t *testing.T) {
	steps := []string{
		StepDecodedCSM,
		StepDisplayCSM,
		StepParsedCSV,
		StepReportAggregate,
	}

	seen := make(map[string]bool)
	for _, step := range steps {
		assert.NotEmpty(t, step, "step constant should not be empty")
		assert.False(t, seen[step], "duplicate step %s", step)
		seen[step] = true
	}
}

func TestRunType(t *testing.T) {
	run := Run{
		Kind:   KindCSM,
		Source: "MailDate 0115.zip",
		Status: StatusRunning,
	}

	assert.Equal(t, "csm", run.Kind)
	assert.Equal(t, "MailDate 0115.zip", run.Source)
	assert.Equal(t, "running", run.Status)
	assert.Nil(t, run.CompletedAt)
}

func TestSchemaEmbedded(t *testing.T) {
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS mail_runs")
	assert.Contains(t, schemaSQL, "UNIQUE (run_id, step)")
}

func TestRunLifecycle_Integration(t *testing.T) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := Connect(ctx, databaseURL)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.EnsureSchema(ctx))

	runID, err := database.CreateRun(ctx, KindCSM, "integration.csm")
	require.NoError(t, err)

	require.NoError(t, database.SaveArtifact(ctx, runID, StepDisplayCSM, map[string]int{"rows": 3}))
	content, err := database.GetArtifact(ctx, runID, StepDisplayCSM)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows": 3}`, string(content))

	require.NoError(t, database.CompleteRun(ctx, runID, StatusCompleted))
	run, err := database.GetRun(ctx, runID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.NotNil(t, run.CompletedAt)
}
