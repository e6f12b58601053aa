package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jimelj/mailApp/internal/observability"
	"github.com/jimelj/mailApp/internal/pipeline"
)

var (
	csmCapstone bool
	csmNoExport bool
)

var csmCommand = &cobra.Command{
	Use:   "csm <archive.zip|file.csm>",
	Short: "Decode a CSM file and export the CSM report",
	Long: `Decodes every container record in a CSM file (or the CSM inside a mailing
archive), attaches facility addresses and writes "CSM_Report <job>.xlsx" to the
output directory. With --capstone the Capstone upload CSV is written as well,
using the origin block from the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runCSMCmd,
}

func init() {
	csmCommand.Flags().BoolVar(&csmCapstone, "capstone", false, "Also write the Capstone upload CSV")
	csmCommand.Flags().BoolVar(&csmNoExport, "no-export", false, "Print the summary without writing files")
	rootCmd.AddCommand(csmCommand)
}

func runCSMCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	opts := pipeline.JobOptions{
		Options: pipeline.Options{
			InputPath:      args[0],
			FacilityReport: cfg.FacilityReport,
			ScratchDir:     cfg.ScratchDir,
			BatchSize:      cfg.BatchSize,
			DatabaseURL:    cfg.DatabaseURL,
			Verbose:        cfg.Verbose,
			Out:            os.Stdout,
		},
	}
	if !csmNoExport {
		opts.OutDir = cfg.OutDir
	}
	if csmCapstone {
		origin, err := cfg.CapstoneOrigin()
		if err != nil {
			return err
		}
		opts.Capstone = &origin
	}

	jr, err := pipeline.RunJob(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := jr.Cleanup(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove scratch data: %v\n", err)
		}
	}()

	if !cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintCSMSummary(jr.Job, jr.Display, jr.EnrichmentErr)
	}
	if jr.Postage != nil {
		observability.NewPrinter(os.Stdout).PrintReport(jr.Postage)
	}

	fmt.Printf("Processed %d records from %s (%d with facility address)\n", jr.Display.Len(), args[0], jr.Matched)
	if jr.ReportPath != "" {
		fmt.Printf("CSM report: %s\n", jr.ReportPath)
	}
	if jr.CapstonePath != "" {
		fmt.Printf("Capstone report: %s\n", jr.CapstonePath)
	}
	return nil
}
