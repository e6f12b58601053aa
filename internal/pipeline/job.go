package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jimelj/mailApp/internal/export"
	"github.com/jimelj/mailApp/internal/ingestion"
	"github.com/jimelj/mailApp/internal/report"
)

// JobOptions configures RunJob. Options.InputPath may name a mailing archive
// (.zip) or a bare CSM file.
type JobOptions struct {
	Options
	// OutDir receives the exported files. Nothing is written when empty.
	OutDir string
	// Capstone, when set, also writes the Capstone upload CSV.
	Capstone *export.Origin
}

// JobResult is the outcome of RunJob.
type JobResult struct {
	*Result
	Job          string            `json:"job"`
	Archive      ingestion.Archive `json:"archive"`
	ReportPath   string            `json:"report_path,omitempty"`
	CapstonePath string            `json:"capstone_path,omitempty"`
	Postage      *report.Aggregate `json:"postage,omitempty"`
}

// RunJob processes one mailing: it resolves the CSM file, runs the pipeline,
// writes the exports and aggregates the bundled postage report if there is
// one. Extracted archive contents are removed before it returns.
func RunJob(ctx context.Context, opts JobOptions) (*JobResult, error) {
	input := opts.InputPath
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("input path is required")
	}

	scratch := opts.ScratchDir
	if scratch == "" {
		scratch = filepath.Join(os.TempDir(), "mailapp")
	}
	extractDir := filepath.Join(scratch, "archives", uuid.New().String())
	defer os.RemoveAll(extractDir)

	archive, err := ingestion.Resolve(input, extractDir)
	if err != nil {
		return nil, err
	}

	runOpts := opts.Options
	runOpts.InputPath = archive.CSMPath
	p, err := New(runOpts)
	if err != nil {
		return nil, err
	}
	res, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}

	jr := &JobResult{Result: res, Job: ingestion.JobName(input), Archive: *archive}
	out := p.opts.Out

	if archive.ReportPath != "" {
		agg, err := report.AggregateFiles(ctx, []string{archive.ReportPath})
		if err != nil {
			return nil, err
		}
		jr.Postage = agg
		RecordReport(ctx, opts.DatabaseURL, []string{archive.ReportPath}, agg, out)
		for _, fe := range agg.Errors {
			fmt.Fprintf(out, "Warning: %v\n", fe)
		}
	}

	if opts.OutDir == "" {
		return jr, nil
	}
	if res.Empty() {
		fmt.Fprintf(out, "No records to export for %s\n", jr.Job)
		return jr, nil
	}
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	jr.ReportPath = filepath.Join(opts.OutDir, export.ReportFileName(jr.Job))
	if err := export.WriteXLSX(res.Display, jr.ReportPath); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Wrote %s\n", jr.ReportPath)

	if opts.Capstone != nil {
		jr.CapstonePath = filepath.Join(opts.OutDir, export.CapstoneFileName(jr.Job))
		if err := export.WriteCSV(export.Capstone(res.Display, *opts.Capstone), jr.CapstonePath); err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "Wrote %s\n", jr.CapstonePath)
	}

	return jr, nil
}
