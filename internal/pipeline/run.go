// Package pipeline provides the high-level orchestration for turning a CSM
// file into a display-ready table.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jimelj/mailApp/internal/csm"
	"github.com/jimelj/mailApp/internal/db"
	"github.com/jimelj/mailApp/internal/facility"
	"github.com/jimelj/mailApp/internal/observability"
	"github.com/jimelj/mailApp/internal/table"
)

// ScratchFileName is the intermediate CSV written inside a run's scratch directory.
const ScratchFileName = "parsed_csm.csv"

// Progress steps
const (
	StepDecode  = "decode"
	StepPersist = "persist"
	StepEnrich  = "enrich"
	StepProject = "project"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for one pipeline run
type Options struct {
	InputPath      string
	FacilityReport string
	ScratchDir     string
	BatchSize      int
	DatabaseURL    string
	Verbose        bool
	OnProgress     ProgressCallback
	// Out receives step and warning lines. Defaults to os.Stdout.
	Out io.Writer
}

// InputError reports a CSM file that could not be read.
type InputError struct {
	Path  string
	Cause error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("failed to read CSM input %s: %v", e.Path, e.Cause)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// Result is the output of one run. Records holds every decoded field (plus
// Address when enrichment succeeded); Display is the projection shown to
// users and exported.
type Result struct {
	RunID         string      `json:"run_id"`
	InputPath     string      `json:"input_path"`
	Records       table.Table `json:"-"`
	Display       table.Table `json:"-"`
	Matched       int         `json:"matched"`
	EnrichmentErr error       `json:"-"`
	ScratchPath   string      `json:"scratch_path,omitempty"`
}

// Empty reports whether the input held no records.
func (r *Result) Empty() bool {
	return r.Records.Empty()
}

// Cleanup removes the run's scratch directory.
func (r *Result) Cleanup() error {
	if r.ScratchPath == "" {
		return nil
	}
	return os.RemoveAll(filepath.Dir(r.ScratchPath))
}

// CSMPipeline decodes, enriches and projects one CSM file.
type CSMPipeline struct {
	opts Options
}

// New validates options. It does no I/O.
func New(opts Options) (*CSMPipeline, error) {
	if strings.TrimSpace(opts.InputPath) == "" {
		return nil, errors.New("input path is required")
	}
	if opts.BatchSize < 0 {
		return nil, fmt.Errorf("batch size must not be negative, got %d", opts.BatchSize)
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = csm.DefaultBatchSize
	}
	if opts.ScratchDir == "" {
		opts.ScratchDir = filepath.Join(os.TempDir(), "mailapp")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &CSMPipeline{opts: opts}, nil
}

// emitProgress calls the progress callback if configured
func (p *CSMPipeline) emitProgress(runID, step, message string, content any) {
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(ProgressEvent{
			Step:    step,
			Message: message,
			RunID:   runID,
			Content: content,
		})
	}
}

// Run executes the pipeline. An unreadable input returns *InputError. A
// facility report that cannot be loaded does not fail the run; it is
// reported on Result.EnrichmentErr and the display table has no addresses.
func (p *CSMPipeline) Run(ctx context.Context) (*Result, error) {
	opts := p.opts
	runID := uuid.New().String()
	out := opts.Out

	store := connectStore(ctx, opts, out)
	defer store.close()

	result := &Result{RunID: runID, InputPath: opts.InputPath}

	fmt.Fprintf(out, "Step 1/4: Decoding CSM records from %s...\n", opts.InputPath)
	rows, err := p.decode(ctx, runID)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		fmt.Fprintf(out, "No CSM records found in %s\n", opts.InputPath)
		result.Records = table.New(csm.FieldNames(), nil)
		result.Display = table.New(csm.DisplayColumns, nil)
		return result, nil
	}

	store.begin(ctx, db.KindCSM, opts.InputPath)

	fmt.Fprintf(out, "Step 2/4: Writing %d records to scratch storage...\n", len(rows))
	records, scratchPath, err := p.persist(runID, table.New(csm.FieldNames(), rows))
	if err != nil {
		store.finish(ctx, db.StatusFailed)
		return nil, err
	}
	result.ScratchPath = scratchPath
	p.emitProgress(runID, StepPersist, fmt.Sprintf("Persisted %d records", records.Len()), scratchPath)
	store.saveText(ctx, db.StepParsedCSV, scratchPath)

	fmt.Fprintf(out, "Step 3/4: Matching facility addresses...\n")
	enriched, err := enrich(records, opts.FacilityReport)
	if err != nil {
		fmt.Fprintf(out, "Warning: Facility enrichment failed: %v\n", err)
		fmt.Fprintf(out, "Continuing without addresses...\n")
		result.EnrichmentErr = err
	}
	result.Records = enriched
	p.emitProgress(runID, StepEnrich, fmt.Sprintf("Matched %d of %d records", enriched.Count(csm.FieldAddress), enriched.Len()), nil)

	fmt.Fprintf(out, "Step 4/4: Building display table...\n")
	result.Display = enriched.Project(csm.DisplayColumns)
	result.Matched = result.Display.Count(csm.FieldAddress)
	p.emitProgress(runID, StepProject, fmt.Sprintf("Built display table with %d rows", result.Display.Len()), nil)

	store.save(ctx, db.StepDecodedCSM, map[string]any{
		"input":   opts.InputPath,
		"records": records.Len(),
		"columns": records.Columns(),
	})
	store.save(ctx, db.StepDisplayCSM, result.Display.Rows())
	store.finish(ctx, db.StatusCompleted)

	if opts.Verbose {
		observability.NewPrinter(out).PrintCSMSummary(opts.InputPath, result.Display, result.EnrichmentErr)
	}
	return result, nil
}

func (p *CSMPipeline) decode(ctx context.Context, runID string) ([]table.Row, error) {
	f, err := os.Open(p.opts.InputPath)
	if err != nil {
		return nil, &InputError{Path: p.opts.InputPath, Cause: err}
	}
	defer f.Close()

	var rows []table.Row
	batches := 0
	_, err = csm.Decode(f, p.opts.BatchSize, func(batch []csm.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, rec := range batch {
			rows = append(rows, table.Row(rec))
		}
		batches++
		p.emitProgress(runID, StepDecode, fmt.Sprintf("Decoded batch %d (%d records so far)", batches, len(rows)), nil)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &InputError{Path: p.opts.InputPath, Cause: err}
	}
	return rows, nil
}

// persist writes the decoded table to the run's scratch namespace and reads
// it back, so later stages work from the same file an operator can inspect.
func (p *CSMPipeline) persist(runID string, decoded table.Table) (table.Table, string, error) {
	dir := filepath.Join(p.opts.ScratchDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return table.Table{}, "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	path := filepath.Join(dir, ScratchFileName)

	f, err := os.Create(path)
	if err != nil {
		return table.Table{}, "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	if err := decoded.WriteCSV(f); err != nil {
		f.Close()
		return table.Table{}, "", err
	}
	if err := f.Close(); err != nil {
		return table.Table{}, "", fmt.Errorf("failed to close scratch file: %w", err)
	}

	rf, err := os.Open(path)
	if err != nil {
		return table.Table{}, "", fmt.Errorf("failed to reopen scratch file: %w", err)
	}
	defer rf.Close()

	restored, err := table.ReadCSV(rf, csm.RestoreCell)
	if err != nil {
		return table.Table{}, "", err
	}
	return restored, path, nil
}

// enrich joins facility addresses onto records. A run with no facility
// report configured is an enrichment failure, not an empty match.
func enrich(records table.Table, facilityReport string) (table.Table, error) {
	if strings.TrimSpace(facilityReport) == "" {
		return records, &facility.LoadError{Message: "no facility report configured"}
	}
	facilities, err := facility.Load(facilityReport)
	if err != nil {
		return records, err
	}
	return facility.NewResolver(facilities).Enrich(records), nil
}
