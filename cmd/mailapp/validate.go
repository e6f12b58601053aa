package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jimelj/mailApp/internal/config"
	"github.com/jimelj/mailApp/internal/schemas"
)

var (
	validateSchema string
	validateJSON   string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON file against a JSON Schema",
	Long: `Validates --json against --schema. Without --schema the file is checked as a
mailapp config file.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Path to JSON Schema file")
	validateCmd.Flags().StringVar(&validateJSON, "json", "", "Path to JSON file to validate")
	_ = validateCmd.MarkFlagRequired("json")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	if validateSchema != "" {
		if err := schemas.ValidateJSON(validateSchema, validateJSON); err != nil {
			return err
		}
		fmt.Println("Validation passed")
		return nil
	}

	cfg, err := config.LoadConfig(validateJSON)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Println("Validation passed")
	return nil
}
