package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gdgen/internal/config"
	"gdgen/internal/errors"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize gdgen configuration",
	Long:  "Creates a .gdgen/ directory with the default configuration in the project root",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

// gitignore keeps the manifest and logs out of version control.
const gitignore = "manifest.db*\nlogs/\n"

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	dir := filepath.Join(root, config.Dir)
	configPath := filepath.Join(dir, "config.json")

	if _, statErr := os.Stat(configPath); statErr == nil && !initForce {
		// Already initialized is success.
		fmt.Fprintln(out, "gdgen already initialized.")
		fmt.Fprintf(out, "Configuration at: %s\n", configPath)
		fmt.Fprintln(out, "\nRun 'gdgen init --force' to reinitialize.")
		return nil
	}

	if err := config.DefaultConfig().Save(root); err != nil {
		return errors.New(errors.InternalError, "failed to write config file", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0644); err != nil {
		return errors.New(errors.InternalError, "failed to write .gitignore", err)
	}

	fmt.Fprintln(out, "gdgen initialized.")
	fmt.Fprintf(out, "Configuration at: %s\n", configPath)
	fmt.Fprintln(out, "\nNext: run 'gdgen generate'.")
	return nil
}
