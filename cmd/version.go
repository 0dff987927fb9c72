// =============================================================================
// Takeoff Summary - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   takeoff version
//
// OUTPUT:
//   Takeoff Summary
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Go Version: go1.22.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/kardamoony/specification-table-summary/cmd.Version=1.0.0'"

// Version is the application version.
// Set at build time using ldflags.
var Version = "0.3.0"

// BuildDate is the date the application was built.
// Set at build time using ldflags.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, and Go runtime version.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Takeoff Summary")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the version command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}
