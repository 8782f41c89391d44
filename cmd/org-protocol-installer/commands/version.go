package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/org-protocol/cmd"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, and build date of org-protocol-installer.`,
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, _ []string) {
		w := c.OutOrStdout()
		fmt.Fprintf(w, "org-protocol-installer version %s\n", cmd.Version)
		fmt.Fprintf(w, "  commit: %s\n", cmd.Commit)
		fmt.Fprintf(w, "  built:  %s\n", cmd.Date)
		fmt.Fprintf(w, "  os:     %s\n", cmd.Platform())
	},
}
