package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jimelj/mailApp/internal/export"
	"github.com/jimelj/mailApp/internal/ingestion"
	"github.com/jimelj/mailApp/internal/observability"
	"github.com/jimelj/mailApp/internal/pipeline"
)

var batchNoExport bool

var batchCommand = &cobra.Command{
	Use:   "batch <file.csm>...",
	Short: "Decode several CSM files concurrently",
	Long: `Runs the CSM pipeline over every input with at most --workers files in flight.
A failing file does not stop the others; all failures are listed at the end.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatchCmd,
}

func init() {
	batchCommand.Flags().BoolVar(&batchNoExport, "no-export", false, "Print the summary without writing files")
	rootCmd.AddCommand(batchCommand)
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		FacilityReport: cfg.FacilityReport,
		ScratchDir:     cfg.ScratchDir,
		BatchSize:      cfg.BatchSize,
		DatabaseURL:    cfg.DatabaseURL,
		Verbose:        cfg.Verbose,
		Out:            os.Stdout,
	}

	results, runErr := pipeline.RunBatch(ctx, args, opts, cfg.Workers)

	var failures []error
	var batchErrs pipeline.BatchErrors
	if errors.As(runErr, &batchErrs) {
		for _, e := range batchErrs {
			failures = append(failures, e)
		}
	} else if runErr != nil {
		return runErr
	}

	for _, res := range results {
		fmt.Printf("%s: %d records, %d with facility address\n", res.InputPath, res.Display.Len(), res.Matched)
		if !batchNoExport && !res.Empty() {
			if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			path := filepath.Join(cfg.OutDir, export.ReportFileName(ingestion.JobName(res.InputPath)))
			if err := export.WriteXLSX(res.Display, path); err != nil {
				failures = append(failures, err)
			} else {
				fmt.Printf("  wrote %s\n", path)
			}
		}
		if err := res.Cleanup(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove scratch data: %v\n", err)
		}
	}

	observability.NewPrinter(os.Stdout).PrintErrors("BATCH ERRORS", failures)
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d inputs failed", len(failures), len(args))
	}
	return nil
}
