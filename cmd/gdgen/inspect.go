package main

import (
	"github.com/spf13/cobra"

	"gdgen/internal/config"
	"gdgen/internal/generators"
	"gdgen/internal/output"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect the manifest, project and generator setup",
}

var (
	passesLimit  int
	tablesEngine bool
)

var inspectUnitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the units recorded in the manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := newCLIContext(cmd)
		if err != nil {
			return err
		}
		defer cli.Close()
		sess, err := cli.session()
		if err != nil {
			return err
		}
		units, err := sess.Units(cmd.Context())
		if err != nil {
			return err
		}
		return cli.write(cmd, unitsOutput{Units: units})
	},
}

var inspectPassesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List recorded generation passes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := newCLIContext(cmd)
		if err != nil {
			return err
		}
		defer cli.Close()
		sess, err := cli.session()
		if err != nil {
			return err
		}
		passes, err := sess.Passes(cmd.Context(), passesLimit)
		if err != nil {
			return err
		}
		return cli.write(cmd, passesOutput{Passes: passes})
	},
}

var inspectProjectCmd = &cobra.Command{
	Use:   "project",
	Short: "Show the detected Godot project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := newCLIContext(cmd)
		if err != nil {
			return err
		}
		defer cli.Close()
		sess, err := cli.session()
		if err != nil {
			return err
		}
		report, err := sess.Project()
		if err != nil {
			return err
		}
		return cli.write(cmd, projectOutput{ProjectReport: *report})
	},
}

var inspectGeneratorsCmd = &cobra.Command{
	Use:   "generators",
	Short: "List generators and the markers they consume",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := newCLIContext(cmd)
		if err != nil {
			return err
		}
		defer cli.Close()
		return cli.write(cmd, generatorsOutput{Generators: generators.List(cli.config())})
	},
}

var inspectTablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the effective project settings tables",
	Long: `Prints the reserved prefixes, builtin inputs and layer categories used for
project.godot, or with --engine the engine type table. Human output is TOML
that can be copied into a tables or types override file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := newCLIContext(cmd)
		if err != nil {
			return err
		}
		defer cli.Close()
		sess, err := cli.session()
		if err != nil {
			return err
		}
		if tablesEngine {
			if cli.format == output.FormatHuman {
				return sess.Engine().Encode(cmd.OutOrStdout())
			}
			return cli.write(cmd, sess.Engine())
		}
		if cli.format == output.FormatHuman {
			return sess.Tables().Encode(cmd.OutOrStdout())
		}
		return cli.write(cmd, sess.Tables())
	},
}

var inspectConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and where it came from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := newCLIContext(cmd)
		if err != nil {
			return err
		}
		defer cli.Close()
		return cli.write(cmd, configOutput{
			Path:         cli.load.ConfigPath,
			UsedDefaults: cli.load.UsedDefaults,
			EnvOverrides: cli.load.EnvOverrides,
			EnvVars:      config.GetSupportedEnvVars(),
			Config:       cli.config(),
		})
	},
}

func init() {
	inspectPassesCmd.Flags().IntVar(&passesLimit, "limit", 10, "Maximum number of passes (0 for all)")
	inspectTablesCmd.Flags().BoolVar(&tablesEngine, "engine", false, "Print the engine type table instead")

	inspectCmd.AddCommand(
		inspectUnitsCmd,
		inspectPassesCmd,
		inspectProjectCmd,
		inspectGeneratorsCmd,
		inspectTablesCmd,
		inspectConfigCmd,
	)
	rootCmd.AddCommand(inspectCmd)
}
