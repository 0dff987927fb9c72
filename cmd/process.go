// =============================================================================
// Takeoff Summary - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs one takeoff profile
// over the input directory and writes the summary report.
//
// COMMAND USAGE:
//   takeoff process [flags]
//
// FLAGS:
//   --profile  : Profile to run. If omitted and only one profile exists it
//                is used; otherwise a numbered list is shown to choose from.
//   --dry-run  : Aggregate and print statistics without writing any file
//
// PROCESSING PIPELINE:
//   1. Load the main configuration and profiles
//   2. Choose and validate the profile
//   3. Run the takeoff (group discovery, per-file parsing, aggregation)
//   4. Write the report, review log and summary log
//   5. Print a run summary
//
// =============================================================================

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kardamoony/specification-table-summary/internal/config"
	"github.com/kardamoony/specification-table-summary/internal/parser"
	"github.com/kardamoony/specification-table-summary/internal/report"
	"github.com/kardamoony/specification-table-summary/internal/takeoff"
	"github.com/kardamoony/specification-table-summary/internal/validation"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// profileName selects the profile to run.
var profileName string

// dryRun aggregates without writing output files.
var dryRun bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run a takeoff profile over the input directory",
	Long: `The process command scans the input directory, reads every spreadsheet
with the chosen profile and writes one summary report.

Every subfolder of the input directory is a group and becomes a column of
the report. Spreadsheets placed directly in the input directory are groups
of their own.

Files that cannot be read are skipped and listed in the summary; the rest
of the run is not affected.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(
		&profileName,
		"profile",
		"p",
		"",
		"Profile to run (prompted for when several exist)",
	)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Aggregate without writing any output file",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(in io.Reader, out io.Writer) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.logger.Sync()

	// =========================================================================
	// STEP 2: CHOOSE AND VALIDATE THE PROFILE
	// =========================================================================

	profile, err := chooseProfile(in, out, env.profiles, profileName)
	if err != nil {
		return err
	}

	parsers := parser.DefaultRegistry()
	writers := report.DefaultRegistry()

	result := validation.NewValidator(parsers, writers).ValidateProfile(profile)
	for _, ve := range result.Errors {
		if ve.Severity == validation.SeverityWarning {
			env.logger.Warn("profile warning", zap.String("problem", ve.Error()))
		}
	}
	if !result.IsValid {
		fmt.Fprint(out, validation.FormatErrors(result.Errors))
		return fmt.Errorf("profile %q is invalid", profile.Name)
	}

	// =========================================================================
	// STEP 3: RUN
	// =========================================================================

	fmt.Fprintf(out, "=== Takeoff Summary: %s ===\n", profile.Name)

	runner, err := takeoff.New(takeoff.Options{
		Main:    env.main,
		Profile: profile,
		Parsers: parsers,
		Writers: writers,
		Logger:  env.logger,
		DryRun:  dryRun,
	})
	if err != nil {
		return err
	}

	run, err := runner.Run()
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	for _, f := range run.Files {
		if f.Success {
			fmt.Fprintf(out, "  ✓ %s/%s: %d row(s)\n", f.Group, filepath.Base(f.Path), f.RowsMatched)
		} else {
			fmt.Fprintf(out, "  ✗ %s/%s: %v\n", f.Group, filepath.Base(f.Path), f.Error)
		}
	}

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Groups:          %d\n", run.Stats.Groups)
	fmt.Fprintf(out, "Total files:     %d\n", run.Stats.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", run.Stats.SuccessfulFiles)
	fmt.Fprintf(out, "Failed:          %d\n", run.Stats.FailedFiles)
	fmt.Fprintf(out, "Entries:         %d\n", run.Stats.Entries)
	fmt.Fprintf(out, "Manual review:   %d\n", run.Stats.ReviewMarkers)
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime))

	if run.ReportFile != "" {
		fmt.Fprintf(out, "Report:          %s\n", run.ReportFile)
	}
	if run.ReviewFile != "" {
		fmt.Fprintf(out, "Review log:      %s\n", run.ReviewFile)
	}

	return nil
}

// =============================================================================
// PROFILE SELECTION
// =============================================================================

// chooseProfile returns the profile to run.
//
// SELECTION:
//   - name given: that profile, or config.ErrProfileNotFound
//   - exactly one profile: that profile
//   - several profiles: a numbered list is written to out and a number or a
//     name is read from in
func chooseProfile(in io.Reader, out io.Writer, profiles map[string]*config.ProfileConfig, name string) (*config.ProfileConfig, error) {
	if name != "" || len(profiles) == 1 {
		return config.SelectProfile(profiles, name)
	}
	if len(profiles) == 0 {
		return nil, errors.New("no profiles found")
	}

	names := config.ProfileNames(profiles)
	fmt.Fprintln(out, "Available profiles:")
	for i, n := range names {
		fmt.Fprintf(out, "  %d. %s\n", i+1, n)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "Choose a profile [1-%d]: ", len(names))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("failed to read profile choice: %w", err)
			}
			return nil, errors.New("no profile chosen")
		}

		answer := strings.TrimSpace(scanner.Text())
		if i, err := strconv.Atoi(answer); err == nil && i >= 1 && i <= len(names) {
			return profiles[names[i-1]], nil
		}
		if p, ok := profiles[answer]; ok {
			return p, nil
		}
		fmt.Fprintf(out, "Unknown profile %q\n", answer)
	}
}
