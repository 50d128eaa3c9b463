package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/initforge/pyinit/pkg/buildinfo"
)

// Execute runs the pyinit CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (gen, plan,
// completion), configures logging based on the --verbose flag, and executes
// the command tree.
//
// Logging:
//   - Default: warn level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext. The given context bounds the whole run; cancel it to
// stop an in-flight command.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "pyinit",
		Short:        "pyinit keeps Python package __init__.py files up to date",
		Long:         `pyinit statically inspects a Python package, discovers its submodules and their public callables, and generates the deterministic import block of the package's __init__.py without ever importing the code.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.WarnLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newGenCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
