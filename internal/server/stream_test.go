package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimelj/mailApp/internal/pipeline"
)

type streamEvent struct {
	name string
	data string
}

func readEvents(t *testing.T, body string) []streamEvent {
	t.Helper()
	var events []streamEvent
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		lines := strings.Split(block, "\n")
		require.Len(t, lines, 2, "malformed event %q", block)
		require.True(t, strings.HasPrefix(lines[0], "event: "))
		require.True(t, strings.HasPrefix(lines[1], "data: "))
		events = append(events, streamEvent{
			name: strings.TrimPrefix(lines[0], "event: "),
			data: strings.TrimPrefix(lines[1], "data: "),
		})
	}
	return events
}

func TestCSMStream_EventSequence(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, nil)
	s.cfg.FacilityReport = writeFacilityCSV(t, dir)

	w := post(t, s.Handler(), "/csm/stream", map[string]any{"path": writeCSMFile(t, dir)})
	require.Equal(t, http.StatusOK, w.Code)

	events := readEvents(t, w.Body.String())
	require.Len(t, events, 6)

	wantSteps := []string{pipeline.StepDecode, pipeline.StepPersist, pipeline.StepEnrich, pipeline.StepProject}
	var runID string
	for i, want := range wantSteps {
		require.Equal(t, eventStep, events[i].name)
		var step StepEvent
		require.NoError(t, json.Unmarshal([]byte(events[i].data), &step))
		assert.Equal(t, i+1, step.Seq)
		assert.Equal(t, want, step.Step)
		runID = step.RunID
	}

	assert.Equal(t, eventResult, events[4].name)
	var resp CSMResponse
	require.NoError(t, json.Unmarshal([]byte(events[4].data), &resp))
	assert.Equal(t, 1, resp.Matched)

	assert.Equal(t, eventComplete, events[5].name)
	var done StreamComplete
	require.NoError(t, json.Unmarshal([]byte(events[5].data), &done))
	assert.Equal(t, runID, done.RunID)
	assert.Equal(t, 1, done.Rows)
}

func TestCSMStream_FailureCarriesStatus(t *testing.T) {
	s := newTestServer(t, nil)

	w := post(t, s.Handler(), "/csm/stream", map[string]any{"path": filepath.Join(t.TempDir(), "missing.csm")})
	require.Equal(t, http.StatusOK, w.Code)

	events := readEvents(t, w.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, eventError, events[0].name)

	var failure StreamError
	require.NoError(t, json.Unmarshal([]byte(events[0].data), &failure))
	assert.Equal(t, http.StatusNotFound, failure.Status)
	assert.Contains(t, failure.Error, "missing.csm")
}
