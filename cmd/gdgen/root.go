package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gdgen/internal/version"
)

var (
	rootFlag    string
	configFlag  string
	formatFlag  string
	verboseFlag int
	quietFlag   bool
	logFileFlag string
)

var rootCmd = &cobra.Command{
	Use:   "gdgen",
	Short: "gdgen - C# source generation for Godot projects",
	Long: `gdgen scans the C# sources of a Godot project and writes partial types next
to them: interfaces from [MakeInterface], _Notification dispatch from
[WhatNotification], scene and shader accessors from [SceneScript] and
[ShaderScript], and input and layer constants from project.godot.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("gdgen version {{.Version}}\n")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlag, "root", "", "Project root (default: nearest directory holding project.godot)")
	pf.StringVar(&configFlag, "config", "", "Config file (default: .gdgen/config.json)")
	pf.StringVar(&formatFlag, "format", "human", "Output format (human, json, yaml)")
	pf.CountVarP(&verboseFlag, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	pf.BoolVarP(&quietFlag, "quiet", "q", false, "Silence log output")
	pf.StringVar(&logFileFlag, "log-file", "", "Also write debug logs to this file")
}

// resetFlags restores every flag to its default so the command tree can be
// executed more than once in a process.
func resetFlags() {
	var reset func(*cobra.Command)
	reset = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.PersistentFlags(), c.LocalNonPersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				if f.Changed {
					_ = f.Value.Set(f.DefValue)
					f.Changed = false
				}
			})
		}
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
}
