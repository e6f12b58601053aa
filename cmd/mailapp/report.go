package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jimelj/mailApp/internal/export"
	"github.com/jimelj/mailApp/internal/observability"
	"github.com/jimelj/mailApp/internal/pipeline"
	"github.com/jimelj/mailApp/internal/report"
)

var reportXLSX string

var reportCommand = &cobra.Command{
	Use:   "report <RptList.txt>...",
	Short: "Aggregate postage reports",
	Long: `Parses one or more postage reports into per-entry-point rows with CPM and
average piece weight. The totals row is taken from each report's declared
"Report Totals:" line; with several reports it is labelled "Grand Totals:".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReportCmd,
}

func init() {
	reportCommand.Flags().StringVar(&reportXLSX, "xlsx", "", "Also write the aggregated table to this workbook")
	rootCmd.AddCommand(reportCommand)
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	agg, err := report.AggregateFiles(ctx, args)
	if err != nil {
		return err
	}

	pipeline.RecordReport(ctx, cfg.DatabaseURL, args, agg, os.Stdout)

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintReport(agg)
	if cfg.Verbose {
		printer.PrintSkipped(agg.Skipped)
	}

	errs := make([]error, 0, len(agg.Errors))
	for _, fe := range agg.Errors {
		errs = append(errs, fe)
	}
	if len(errs) > 0 {
		printer.PrintErrors("UNREADABLE REPORTS", errs)
	}
	if len(errs) == len(args) {
		return fmt.Errorf("no report could be read")
	}

	if reportXLSX != "" {
		if err := export.WriteXLSX(agg.Table(), reportXLSX); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", reportXLSX)
	}
	return nil
}
