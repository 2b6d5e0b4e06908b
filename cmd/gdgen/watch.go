package main

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gdgen/internal/config"
	"gdgen/internal/paths"
	"gdgen/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate whenever project sources change",
	Long: `Runs generate once, then watches C# sources, scenes, shaders, project.godot
and table overrides, regenerating after each burst of changes. Stop with
Ctrl+C. Configuration changes need a restart.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cli, err := newCLIContext(cmd)
	if err != nil {
		return err
	}
	defer cli.Close()
	cfg := cli.config()

	// Each pass opens a fresh session so edited table overrides apply.
	generate := func(ctx context.Context) {
		sess, err := cli.session()
		if err != nil {
			cli.logger.Error("Cannot open project", "error", err.Error())
			return
		}
		report, err := sess.Generate(ctx, false)
		if err != nil {
			if ctx.Err() == nil {
				cli.logger.Error("Generation failed", "error", err.Error())
			}
			return
		}
		if err := cli.write(cmd, generateOutput{GenerateReport: *report}); err != nil {
			cli.logger.Warn("Cannot print report", "error", err.Error())
		}
	}

	if _, err := cli.session(); err != nil {
		return err
	}
	generate(cmd.Context())

	out := path.Clean(paths.NormalizePath(cfg.OutputDir))
	w, err := watcher.New(cli.root, watcher.Config{
		Debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		Ignore: func(rel string) bool {
			return rel == out || strings.HasPrefix(rel, out+"/") ||
				rel == config.Dir || strings.HasPrefix(rel, config.Dir+"/")
		},
	}, cli.logger)
	if err != nil {
		return err
	}
	return w.Run(cmd.Context(), func(ctx context.Context, events []watcher.Event) {
		cli.logger.Info("Regenerating", "changes", len(events), "first", events[0].Path)
		generate(ctx)
	})
}
