// =============================================================================
// Takeoff Summary - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Takeoff Summary CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   takeoff process       - Run a profile over the input directory
//   takeoff validate      - Validate profiles without reading input
//   takeoff profiles      - List the available profiles
//   takeoff version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic (grids, parsers, aggregation, reports)
//   - pkg/           : Shared file utilities
//   - profiles/      : Takeoff profile YAML files
//
// =============================================================================

package main

import (
	"github.com/kardamoony/specification-table-summary/cmd"
)

func main() {
	cmd.Execute()
}
