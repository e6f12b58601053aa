package ingestion

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestExtract_FindsMailDatCSM(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "MailDate 0115 Acme.zip")
	writeZip(t, zipPath, map[string]string{
		"other/stray.csm":     "stray",
		"MailDats/job.csm":    "record",
		"MailDats/job.hdr":    "header",
		"Reports/RptList.txt": "Report Totals:",
	})

	a, err := Extract(zipPath, filepath.Join(dir, "out"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "out", "MailDats", "job.csm"), a.CSMPath)
	assert.Equal(t, filepath.Join(dir, "out", "Reports", "RptList.txt"), a.ReportPath)

	data, err := os.ReadFile(a.CSMPath)
	require.NoError(t, err)
	assert.Equal(t, "record", string(data))
	assert.FileExists(t, filepath.Join(dir, "out", "MailDats", "job.hdr"))
}

func TestExtractCSM_FallsBackToAnyCSM(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "a.zip")
	writeZip(t, zipPath, map[string]string{"data/JOB.CSM": "x"})

	path, err := ExtractCSM(zipPath, filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "data", "JOB.CSM"), path)
}

func TestExtract_NoCSM(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "a.zip")
	writeZip(t, zipPath, map[string]string{"MailDats/job.hdr": "x"})

	_, err := Extract(zipPath, filepath.Join(dir, "out"))
	assert.True(t, errors.Is(err, ErrNoCSM))
}

func TestExtract_RejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "a.zip")
	writeZip(t, zipPath, map[string]string{"../evil.csm": "x"})

	_, err := Extract(zipPath, filepath.Join(dir, "out"))
	var archiveErr *ArchiveError
	require.True(t, errors.As(err, &archiveErr))
	assert.NoFileExists(t, filepath.Join(dir, "evil.csm"))
}

func TestExtract_NotAZip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	_, err := Extract(path, filepath.Join(dir, "out"))
	var archiveErr *ArchiveError
	assert.True(t, errors.As(err, &archiveErr))
}

func TestJobName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MailDate 0115 Acme.zip", "0115 Acme"},
		{"maildate 0115.zip", "0115"},
		{"MAILDATE 0115.ZIP", "0115"},
		{"/inbox/Acme Weekly.zip", "Acme Weekly"},
		{"MailDates.zip", "MailDates"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, JobName(tt.in))
		})
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "job.csm")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0644))

	a, err := Resolve(plain, filepath.Join(dir, "unused"))
	require.NoError(t, err)
	assert.Equal(t, plain, a.CSMPath)
	assert.Empty(t, a.ReportPath)
	assert.NoDirExists(t, filepath.Join(dir, "unused"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ReportFileName), []byte("Report Totals:"), 0644))
	a, err = Resolve(plain, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ReportFileName), a.ReportPath)

	zipPath := filepath.Join(dir, "job.ZIP")
	writeZip(t, zipPath, map[string]string{"MailDats/job.csm": "record"})
	a, err = Resolve(zipPath, filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "MailDats", "job.csm"), a.CSMPath)
}
