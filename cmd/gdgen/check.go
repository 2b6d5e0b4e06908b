package main

import (
	stderrors "errors"

	"github.com/spf13/cobra"

	"gdgen/internal/errors"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that generated sources are up to date",
	Long: `Runs the generators in memory and compares the result with the output
directory without writing anything. Exits with status 1 when a file is
missing, changed or stale, or when any diagnostic is an error.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cli, err := newCLIContext(cmd)
	if err != nil {
		return err
	}
	defer cli.Close()

	sess, err := cli.session()
	if err != nil {
		return err
	}
	report, err := sess.Check(cmd.Context())
	var ge *errors.GenError
	if err != nil && !(stderrors.As(err, &ge) && ge.Code == errors.OutputDrift) {
		return err
	}
	if werr := cli.write(cmd, checkOutput{CheckReport: *report}); werr != nil {
		return werr
	}
	if err != nil || report.HasErrors() {
		return &exitError{code: 1}
	}
	return nil
}
