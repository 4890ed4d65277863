package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X github.com/spigell/gigmatch/cmd.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gigmatch build version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", app, version)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
