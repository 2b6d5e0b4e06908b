package main

import (
	"github.com/spf13/cobra"

	"gdgen/internal/output"
	"gdgen/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		return output.Write(cmd.OutOrStdout(), format, versionOutput{Details: version.Get()})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
