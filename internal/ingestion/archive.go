// Package ingestion unpacks mailing archives and locates the files the
// pipelines read from them.
package ingestion

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MailDatDir is the archive folder holding MailDat files.
const MailDatDir = "MailDats"

// ReportFileName is the postage report bundled with a mailing.
const ReportFileName = "RptList.txt"

// ErrNoCSM is returned when an archive holds no .csm file.
var ErrNoCSM = errors.New("no .csm file found in archive")

// Archive describes an extracted mailing archive.
type Archive struct {
	Dir        string `json:"dir"`
	CSMPath    string `json:"csm_path"`
	ReportPath string `json:"report_path,omitempty"`
}

// ArchiveError reports an archive that could not be extracted.
type ArchiveError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ArchiveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Message, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Message, e.Path)
}

func (e *ArchiveError) Unwrap() error {
	return e.Cause
}

// Extract unpacks zipPath into destDir and locates the CSM file, preferring
// one under MailDats/. The postage report is optional.
func Extract(zipPath, destDir string) (*Archive, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, &ArchiveError{Path: zipPath, Message: "failed to open archive", Cause: err}
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}

	var csmFiles, reports []string
	for _, f := range r.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return nil, &ArchiveError{Path: zipPath, Message: "unsafe entry in archive", Cause: err}
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, fmt.Errorf("failed to create %s: %w", target, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return nil, &ArchiveError{Path: zipPath, Message: "failed to extract " + f.Name, Cause: err}
		}

		switch {
		case strings.EqualFold(filepath.Ext(f.Name), ".csm"):
			csmFiles = append(csmFiles, f.Name)
		case strings.EqualFold(filepath.Base(f.Name), ReportFileName):
			reports = append(reports, target)
		}
	}

	csmName, ok := pickCSM(csmFiles)
	if !ok {
		return nil, fmt.Errorf("%s: %w", zipPath, ErrNoCSM)
	}

	a := &Archive{Dir: destDir, CSMPath: filepath.Join(destDir, filepath.FromSlash(csmName))}
	if len(reports) > 0 {
		a.ReportPath = reports[0]
	}
	return a, nil
}

// ExtractCSM unpacks zipPath into destDir and returns the CSM file path.
func ExtractCSM(zipPath, destDir string) (string, error) {
	a, err := Extract(zipPath, destDir)
	if err != nil {
		return "", err
	}
	return a.CSMPath, nil
}

// Resolve returns the Archive for input. A .zip is extracted into destDir;
// any other path is taken as the CSM file itself, with a RptList.txt beside
// it used as the postage report when present.
func Resolve(input, destDir string) (*Archive, error) {
	if strings.EqualFold(filepath.Ext(input), ".zip") {
		return Extract(input, destDir)
	}
	a := &Archive{Dir: filepath.Dir(input), CSMPath: input}
	report := filepath.Join(a.Dir, ReportFileName)
	if info, err := os.Stat(report); err == nil && !info.IsDir() {
		a.ReportPath = report
	}
	return a, nil
}

// JobName derives the job name from an archive file name by removing the
// extension and a leading "MailDate " in any case.
func JobName(zipName string) string {
	name := strings.TrimSpace(filepath.Base(zipName))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	const prefix = "maildate "
	if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
		name = name[len(prefix):]
	}
	return strings.TrimSpace(name)
}

// pickCSM chooses the first CSM by name under MailDats/, falling back to the
// first anywhere in the archive.
func pickCSM(names []string) (string, bool) {
	if len(names) == 0 {
		return "", false
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for _, n := range sorted {
		dir := filepath.Base(filepath.Dir(filepath.FromSlash(n)))
		if strings.EqualFold(dir, MailDatDir) {
			return n, true
		}
	}
	return sorted[0], true
}

func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes destination", name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
