package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/initforge/pyinit/pkg/config"
	"github.com/initforge/pyinit/pkg/merge"
	"github.com/initforge/pyinit/pkg/pipeline"
	"github.com/initforge/pyinit/pkg/plan"
	"github.com/initforge/pyinit/pkg/pymodule"
)

// genOpts holds the command-line flags for the gen command.
type genOpts struct {
	modules []string // explicit submodules, in order
	dry     bool     // print the rendered block instead of writing
	diff    bool     // show the merge as a diff instead of writing
	header  bool     // include the linter/__future__ header block
}

// newGenCmd creates the gen command, which synthesizes the import block for
// a package and merges it into the package's __init__.py.
//
// The target is a package directory or a dotted module name resolved against
// the configured search paths. Without --dry or --diff the init file is
// rewritten in place; everything outside the generated region is preserved.
func newGenCmd() *cobra.Command {
	opts := genOpts{}

	cmd := &cobra.Command{
		Use:   "gen [package]",
		Short: "Generate the __init__.py import block for a package",
		Long: `Generate the __init__.py import block for a package.

The package is given as a directory path or a dotted module name. Submodules
are discovered on disk and their public callables extracted by static parsing,
so the target code is never imported or executed.

Examples:
  pyinit gen mypkg                # resolve by name, update mypkg/__init__.py
  pyinit gen ./src/mypkg          # resolve by path
  pyinit gen mypkg --dry          # print the block without writing
  pyinit gen mypkg --diff         # show the pending change as a diff
  pyinit gen mypkg -m util -m io  # only these submodules, in this order`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) > 0 {
				target = args[0]
			}
			return runGen(cmd.Context(), target, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.modules, "module", "m", nil, "restrict to these submodules, in the given order")
	cmd.Flags().BoolVar(&opts.dry, "dry", false, "print the rendered block instead of writing")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "show the pending change as a diff instead of writing")
	cmd.Flags().BoolVar(&opts.header, "header", false, "include the flake8/__future__ header block")

	return cmd
}

// runGen executes the gen command against the given target.
func runGen(ctx context.Context, target string, opts genOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cfg, err := config.Load(configDir(target))
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(pymodule.NewResolver(cfg.Resolver.SearchPaths...))
	popts := pipeline.Options{
		Target:     target,
		Submodules: opts.modules,
		DryRun:     opts.dry || opts.diff,
		WithHeader: opts.header || cfg.Render.WithHeader,
		Logger:     logger,
	}

	result, err := runner.Run(ctx, popts)
	if err != nil {
		return err
	}

	switch {
	case opts.diff:
		return printMergeDiff(result)
	case opts.dry:
		fmt.Println(result.Rendered)
		return nil
	}

	printSuccess("Updated %s", StyleHighlight.Render(result.Root.Name))
	printFile(result.InitPath)
	printDetail("%d submodules · %d callables", len(result.Plan), callableCount(result.Plan))
	prog.done("Generated import block")
	return nil
}

// printMergeDiff renders the pending merge as a character-level diff between
// the current init file and the would-be result. Nothing is written.
func printMergeDiff(result *pipeline.Result) error {
	before, err := os.ReadFile(result.InitPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	after, _, err := merge.Preview(result.InitPath, result.Rendered, nil)
	if err != nil {
		return err
	}

	if string(before) == after {
		printDetail("no changes")
		return nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(before), after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString(styleDiffInsert.Render(d.Text))
		case diffmatchpatch.DiffDelete:
			b.WriteString(styleDiffDelete.Render(d.Text))
		default:
			b.WriteString(StyleDim.Render(d.Text))
		}
	}
	fmt.Println(b.String())
	return nil
}

// configDir picks the directory to search for a config file: the target
// itself when it is an existing directory, the working directory otherwise.
func configDir(target string) string {
	if fi, err := os.Stat(target); err == nil && fi.IsDir() {
		return target
	}
	return "."
}

// callableCount sums the public callables across all plan entries.
func callableCount(p plan.Plan) int {
	n := 0
	for _, e := range p {
		n += len(e.Callables)
	}
	return n
}
