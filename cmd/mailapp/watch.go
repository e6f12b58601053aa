package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jimelj/mailApp/internal/inbox"
	"github.com/jimelj/mailApp/internal/pipeline"
)

var (
	watchDir      string
	watchSchedule string
	watchOnce     bool
	watchCapstone bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process new mailing archives from an inbox directory",
	Long: `Scans the inbox on a cron schedule (default "@every 5m") and runs every new
.zip archive through the CSM pipeline, newest first and at most six per scan.
Reports are written to the output directory.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "Inbox directory (defaults to MAILAPP_INBOX_DIR env var)")
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "Cron spec or descriptor, e.g. \"@every 5m\"")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Scan once and exit")
	watchCmd.Flags().BoolVar(&watchCapstone, "capstone", false, "Also write Capstone upload CSVs")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dir") {
		cfg.Inbox.Dir = watchDir
	}
	if cmd.Flags().Changed("schedule") {
		cfg.Inbox.Schedule = watchSchedule
	}
	if cfg.Inbox.Dir == "" {
		return fmt.Errorf("inbox directory is required (via --dir, MAILAPP_INBOX_DIR or config)")
	}

	job := pipeline.JobOptions{
		Options: pipeline.Options{
			FacilityReport: cfg.FacilityReport,
			ScratchDir:     cfg.ScratchDir,
			BatchSize:      cfg.BatchSize,
			DatabaseURL:    cfg.DatabaseURL,
			Verbose:        cfg.Verbose,
			Out:            os.Stdout,
		},
		OutDir: cfg.OutDir,
	}
	if watchCapstone {
		origin, err := cfg.CapstoneOrigin()
		if err != nil {
			return err
		}
		job.Capstone = &origin
	}

	w, err := inbox.New(inbox.Options{
		Dir:        cfg.Inbox.Dir,
		Schedule:   cfg.Inbox.Schedule,
		MaxPerTick: cfg.Inbox.MaxPerTick,
		Job:        job,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchOnce {
		results, err := w.Scan(ctx)
		fmt.Printf("Processed %d archive(s)\n", len(results))
		return err
	}
	return w.Run(ctx)
}
