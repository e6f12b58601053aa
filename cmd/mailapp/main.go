// Package main provides the mailapp command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// binaryName is the command name and the file name `go build -o bin/` produces.
const binaryName = "mailapp"

var rootCmd = &cobra.Command{
	Use:   binaryName,
	Short: "CSM manifest decoding and postage report aggregation",
	Long: `mailapp decodes MailDat CSM container files into display tables, attaches
facility addresses, exports CSM and Capstone reports, and aggregates postage
reports (RptList.txt) into per-entry-point totals.`,
	SilenceUsage: true,
}

func init() {
	registerGlobalFlags(rootCmd)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
