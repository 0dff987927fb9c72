// =============================================================================
// Takeoff Summary - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks every profile
// without reading any input spreadsheet.
//
// COMMAND USAGE:
//   takeoff validate [--log path]
//
// CHECKS:
//   - parser_type and output_type are registered
//   - include keys are present and not empty
//   - size patterns compile and have the right number of capture groups
//   - text rules and description order are known
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kardamoony/specification-table-summary/internal/parser"
	"github.com/kardamoony/specification-table-summary/internal/report"
	"github.com/kardamoony/specification-table-summary/internal/validation"
)

// validationLog, if set, receives the formatted problems.
var validationLog string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate all takeoff profiles",
	Long: `Validate loads the main configuration and every profile, then reports
problems that would stop or silently weaken a run. Errors make the command
fail; warnings are listed but do not.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		out := cmd.OutOrStdout()
		result := validation.NewValidator(parser.DefaultRegistry(), report.DefaultRegistry()).
			ValidateAll(env.profiles)

		fmt.Fprint(out, validation.FormatErrors(result.Errors))
		if len(result.Errors) == 0 {
			fmt.Fprintln(out)
		}

		if validationLog != "" && len(result.Errors) > 0 {
			if err := validation.WriteErrorLog(result.Errors, validationLog); err != nil {
				return err
			}
		}

		if !result.IsValid {
			return fmt.Errorf("%d profile error(s), %d warning(s)", result.ErrorCount, result.WarningCount)
		}
		fmt.Fprintf(out, "%d profile(s) OK, %d warning(s)\n", len(env.profiles), result.WarningCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(
		&validationLog,
		"log",
		"",
		"Also write the problems to this file",
	)
}
