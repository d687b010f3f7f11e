// Package cli is the criteria command line: one subcommand per pipeline
// operation, all sharing the layout and logging flags.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/criteria/pkg/config"
	"github.com/entrhq/criteria/pkg/logging"
)

// app holds the global flags and the per-invocation layout and logger.
type app struct {
	dir        string
	configPath string
	verbose    bool
	quiet      bool

	cfg *config.Config
	log *logging.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "criteria",
		Short: "Build and validate the criteria taxonomy",
		Long: `criteria maintains a catalogue of criteria stored one JSON document per id.

It validates the authored records against the category taxonomy and regenerates
the master index, one view per category and a statistics summary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	// Global flags
	root.PersistentFlags().StringVar(&a.dir, "dir", ".", "Base directory of the criteria workspace")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Layout file (default <dir>/criteria.yaml if present)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().BoolVar(&a.quiet, "quiet", false, "Only print warnings and errors")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(
		newBuildCmd(a),
		newValidateCmd(a),
		newVerifyCmd(a),
		newEnrichCmd(a),
		newBootstrapCmd(a),
		newInitCmd(a),
		newVersionCmd(version),
	)
	return root
}

// Execute runs the command line and prints any failure as "Error: <message>".
func Execute(ctx context.Context, version string) error {
	root := NewRootCommand(version)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// run wraps a subcommand so that it sees a loaded layout and logger, and the
// logger is flushed when it returns.
func (a *app) run(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.setup(cmd); err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), cmd, args)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.dir, a.configPath)
	if err != nil {
		return err
	}
	switch {
	case a.verbose:
		cfg.Logging.Verbosity = "verbose"
	case a.quiet:
		cfg.Logging.Verbosity = "quiet"
	}

	opts := logging.Options{
		Verbosity: cfg.Logging.Verbosity,
		Writer:    cmd.ErrOrStderr(),
	}
	if cfg.Logging.Dir != "" {
		opts.Dir = cfg.LogPath()
	}
	// A log file that cannot be opened is not fatal; New already warned.
	log, err := logging.New("criteria", opts)
	if log == nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.cfg = cfg
	a.log = log
	a.log.Debugf("run %s in %s", log.RunID(), cfg.BaseDir)
	return nil
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Close()
	}
}
