package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/swot-confluence/offline/internal/cmd/output"
	"github.com/swot-confluence/offline/internal/config"
)

// Execute runs the offline CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// flagKeys maps persistent flags to the configuration keys they override.
var flagKeys = map[string]string{
	"sword-path":  config.KeySWORDPath,
	"swot-dir":    config.KeySWOTDir,
	"flpe-dir":    config.KeyFLPEDir,
	"layout":      config.KeyLayout,
	"run-type":    config.KeyRunType,
	"concurrency": config.KeyConcurrency,
	"output":      config.KeyOutput,
	"log-level":   config.KeyLogLevel,
	"log-format":  config.KeyLogFormat,
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "offline",
		Short:   "Assemble SWOT reach records for offline discharge integration",
		Version: a.version,
		Long: `Offline gathers everything known about a river reach before discharge
integration: its SWOT observation time series, its priors from the SWORD
reach database, and the parameters every FLPE algorithm estimated for it,
reconciled into one record per reach.

FLPE outputs are read from either the per-file layout (one directory per
algorithm) or the integrator layout (one consolidated file per reach).`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "inputs", Title: "Input Commands:"})

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.offline.yaml)")
	flags.String("sword-path", "", "SWORD reach database file")
	flags.String("swot-dir", "", "directory of {reach_id}_SWOT.nc observation files")
	flags.String("flpe-dir", "", "root directory of FLPE algorithm outputs")
	flags.String("layout", "", "FLPE output layout: perfile or integrator")
	flags.String("run-type", "", "run type to report: constrained or unconstrained")
	flags.Int("concurrency", 0, "reaches assembled at once in a batch")
	flags.StringP("output", "o", "", "output format: table, wide, json, yaml, markdown")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("log-format", "", "log format: auto, console, json")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")

	for name, key := range flagKeys {
		if err := a.loader.BindFlag(key, flags.Lookup(name)); err != nil {
			panic("programming error: " + err.Error())
		}
	}

	rootCmd.SetVersionTemplate("offline {{.Version}}\n")
	rootCmd.SetOut(a.stdout)

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs. It resolves the
// configuration with parsed flags applied and rebuilds the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loader.Load(mustGetString(cmd, "config"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := output.ParseFormat(cfg.Output); err != nil {
		return err
	}
	a.config = cfg

	a.verbose = mustGetBool(cmd, "verbose")
	a.quiet = mustGetBool(cmd, "quiet")
	logger := NewLogger(cfg, a.verbose, a.quiet)
	a.logger = &logger

	a.reset()
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.NewRecordCommand())
	rootCmd.AddCommand(a.NewAssembleCommand())

	rootCmd.AddCommand(a.NewObserveCommand())
	rootCmd.AddCommand(a.NewPriorCommand())
	rootCmd.AddCommand(a.NewManifestCommand())

	rootCmd.AddCommand(a.NewVersionCommand())
}

// format returns the output format for the current command.
func (a *App) format() output.Format {
	return output.DetectFormat(a.config.Output)
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
