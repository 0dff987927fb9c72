// =============================================================================
// Takeoff Summary - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (takeoff)
//   ├── processCmd  (takeoff process)
//   ├── validateCmd (takeoff validate)
//   ├── profilesCmd (takeoff profiles)
//   └── versionCmd  (takeoff version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the main configuration and the profiles
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kardamoony/specification-table-summary/internal/config"
	"github.com/kardamoony/specification-table-summary/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "takeoff",
	Short: "Takeoff Summary - Sum up quantities from specification spreadsheets",
	Long: `Takeoff Summary scans specification spreadsheets (.xlsx, .csv), picks out
the rows describing relevant items (ducts, dampers, fittings) by keyword,
extracts their size, unit and quantity, and sums the quantities per item
across files and folders.

Key Features:
  - Named takeoff profiles with include/exclude keywords and size patterns
  - Every input subfolder becomes a column of the summary
  - Duct surface area computed from diameter or dimensions and length
  - Rows that cannot be read reliably are listed for manual review
  - CSV, XLSX and XML reports

Example Usage:
  takeoff process                      # Prompt for a profile and run it
  takeoff process --profile ducts      # Run the "ducts" profile
  takeoff validate                     # Check every profile without reading input
  takeoff profiles                     # List the available profiles`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// environment is what every command loads before doing its work.
type environment struct {
	main     *config.MainConfig
	profiles map[string]*config.ProfileConfig
	logger   *zap.Logger
}

// loadEnvironment loads the main config, builds the logger and loads the
// profiles. Any failure here is fatal for the command.
func loadEnvironment() (*environment, error) {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	level := mainConfig.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, mainConfig.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	profiles, err := config.LoadProfiles(mainConfig.ProfilesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	logger.Debug("loaded profiles",
		zap.String("dir", mainConfig.ProfilesDir),
		zap.Strings("profiles", config.ProfileNames(profiles)))

	return &environment{main: mainConfig, profiles: profiles, logger: logger}, nil
}
