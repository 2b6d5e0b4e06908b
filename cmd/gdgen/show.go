package main

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print a generated unit",
	Long: `Prints the text of one generated unit. The key may be given with or
without directories and the .cs extension, e.g. Game.Player.MakeInterface.g.

The unit is read from the manifest; when it is not recorded there a fresh
pass is run in memory.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cli, err := newCLIContext(cmd)
	if err != nil {
		return err
	}
	defer cli.Close()

	sess, err := cli.session()
	if err != nil {
		return err
	}
	unit, err := sess.Show(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return cli.write(cmd, unitOutput{StoredUnit: *unit})
}
