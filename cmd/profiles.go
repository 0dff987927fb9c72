// =============================================================================
// Takeoff Summary - Profiles Command
// =============================================================================
//
// This file defines the 'profiles' command, which lists the profiles found
// in the profiles directory.
//
// COMMAND USAGE:
//   takeoff profiles
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kardamoony/specification-table-summary/internal/config"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the available takeoff profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		return listProfiles(cmd.OutOrStdout(), env.profiles)
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

// listProfiles writes one line per profile in name order.
func listProfiles(out io.Writer, profiles map[string]*config.ProfileConfig) error {
	if len(profiles) == 0 {
		_, err := fmt.Fprintln(out, "No profiles found.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPARSER\tOUTPUT\tITEMS\tFILE")
	for _, name := range config.ProfileNames(profiles) {
		p := profiles[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.Name, p.ParserType, p.OutputType, len(p.IncludeKeys), p.SourceFile)
	}
	return tw.Flush()
}
