package cli

import (
	"context"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/initforge/pyinit/pkg/config"
	"github.com/initforge/pyinit/pkg/pipeline"
	"github.com/initforge/pyinit/pkg/pymodule"
)

// planOpts holds the command-line flags for the plan command.
type planOpts struct {
	modules []string // explicit submodules, in order
}

// newPlanCmd creates the plan command, which shows the import plan for a
// package without writing anything.
func newPlanCmd() *cobra.Command {
	opts := planOpts{}

	cmd := &cobra.Command{
		Use:   "plan [package]",
		Short: "Show the import plan for a package without writing",
		Long: `Show the import plan for a package without writing.

Lists every submodule that would be imported and the public callables that
would be re-exported from each, in the order they would appear in the
generated block.

Examples:
  pyinit plan mypkg
  pyinit plan ./src/mypkg -m util -m io`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) > 0 {
				target = args[0]
			}
			return runPlan(cmd.Context(), target, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.modules, "module", "m", nil, "restrict to these submodules, in the given order")

	return cmd
}

// runPlan executes the plan command against the given target.
func runPlan(ctx context.Context, target string, opts planOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(configDir(target))
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(pymodule.NewResolver(cfg.Resolver.SearchPaths...))
	result, err := runner.Run(ctx, pipeline.Options{
		Target:     target,
		Submodules: opts.modules,
		DryRun:     true,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	if len(result.Plan) == 0 {
		printDetail("no submodules found in %s", result.Root.Name)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Module", "Callables"})
	for _, e := range result.Plan {
		t.AppendRow(table.Row{
			result.Root.Name + "." + e.Module,
			strings.Join(e.Callables, ", "),
		})
	}
	t.Render()

	printDetail("%d submodules · %d callables", len(result.Plan), callableCount(result.Plan))
	return nil
}
