package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gdgen/internal/app"
	"gdgen/internal/config"
	"gdgen/internal/errors"
	"gdgen/internal/output"
	"gdgen/internal/project"
	"gdgen/internal/slogutil"
)

// cliContext is what every command needs: the project root, the loaded
// config, a logger and the output format.
type cliContext struct {
	root    string
	load    *config.LoadResult
	factory *slogutil.LoggerFactory
	logger  *slog.Logger
	format  output.Format
}

func newCLIContext(cmd *cobra.Command) (*cliContext, error) {
	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		return nil, err
	}
	root, err := resolveRoot()
	if err != nil {
		return nil, err
	}

	var load *config.LoadResult
	if configFlag != "" {
		load, err = config.LoadConfigFileWithDetails(configFlag)
	} else {
		load, err = config.LoadConfigWithDetails(root)
	}
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "cannot load configuration", err)
	}
	if logFileFlag != "" {
		load.Config.Logging.File = logFileFlag
	}

	factory := slogutil.NewLoggerFactory(root, load.Config)
	if verboseFlag > 0 || quietFlag {
		factory.WithCLILevel(slogutil.LevelFromVerbosity(verboseFlag, quietFlag))
	}
	logger := factory.Logger(cmd.ErrOrStderr())
	logger.Debug("Configuration loaded",
		"root", root,
		"path", load.ConfigPath,
		"defaults", load.UsedDefaults,
		"envOverrides", len(load.EnvOverrides),
	)

	return &cliContext{root: root, load: load, factory: factory, logger: logger, format: format}, nil
}

// resolveRoot returns --root, or the nearest enclosing project, or the
// working directory when there is none.
func resolveRoot() (string, error) {
	if rootFlag != "" {
		return filepath.Abs(rootFlag)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.New(errors.InternalError, "cannot determine working directory", err)
	}
	root, err := project.FindRoot(cwd)
	if stderrors.Is(err, project.ErrNotFound) {
		return cwd, nil
	}
	return root, err
}

func (c *cliContext) config() *config.Config { return c.load.Config }

func (c *cliContext) session() (*app.Session, error) {
	return app.Open(c.root, c.load.Config, c.logger)
}

func (c *cliContext) write(cmd *cobra.Command, v any) error {
	return output.Write(cmd.OutOrStdout(), c.format, v)
}

func (c *cliContext) Close() {
	_ = c.factory.Close()
}

// exitError ends the process with code after the command already reported
// what went wrong.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// exitCode reports err on stderr and maps it to a process exit code.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var exit *exitError
	if stderrors.As(err, &exit) {
		return exit.code
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var ge *errors.GenError
	if stderrors.As(err, &ge) {
		for _, fix := range ge.SuggestedFixes {
			if fix.Command != "" {
				fmt.Fprintf(stderr, "  Try: %s (%s)\n", fix.Command, fix.Description)
			}
		}
	}
	return 1
}
