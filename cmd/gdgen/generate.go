package main

import (
	"github.com/spf13/cobra"
)

var generateDryRun bool

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate partial C# sources for the project",
	Long: `Runs every enabled generator over the project's C# sources and writes the
results to the output directory. Stale generated files are removed and the
pass is recorded in the manifest.

Exits with status 1 when any diagnostic is an error.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Run the generators without writing anything")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cli, err := newCLIContext(cmd)
	if err != nil {
		return err
	}
	defer cli.Close()

	sess, err := cli.session()
	if err != nil {
		return err
	}
	report, err := sess.Generate(cmd.Context(), generateDryRun)
	if err != nil {
		return err
	}
	if err := cli.write(cmd, generateOutput{GenerateReport: *report, dryRun: generateDryRun}); err != nil {
		return err
	}
	if report.HasErrors() {
		return &exitError{code: 1}
	}
	return nil
}
