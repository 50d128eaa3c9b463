// Package pipeline provides the core synthesis pipeline for pyinit.
//
// This package implements the complete resolve → plan → render → merge
// sequence shared by all entry points.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Resolve: map the target path or dotted module name to a package
//     directory and its dotted root name
//  2. Plan: enumerate submodules and extract public callables
//  3. Render: produce the deterministic, line-wrapped import block
//  4. Merge: splice the block into the package's __init__.py
//
// Stages run strictly in order; the merge is the only writer and runs
// only after rendering completed, so a failure in any earlier stage never
// touches the target file. In dry-run mode the merge stage is skipped
// entirely and the target file is neither read nor written.
//
// # Usage
//
//	runner := pipeline.NewRunner(pymodule.NewResolver("src"))
//	result, err := runner.Run(ctx, pipeline.Options{Target: "mypkg"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Rendered)
package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/initforge/pyinit/pkg/errors"
	"github.com/initforge/pyinit/pkg/merge"
	"github.com/initforge/pyinit/pkg/observability"
	"github.com/initforge/pyinit/pkg/plan"
	"github.com/initforge/pyinit/pkg/pymodule"
	"github.com/initforge/pyinit/pkg/render"
)

// Options configures a synthesis run.
type Options struct {
	// Target is a filesystem directory path or a dotted module name
	// identifying the package. An existing path wins over name
	// resolution.
	Target string

	// Submodules restricts and orders the plan to these submodule
	// short names. Empty means enumerate everything.
	Submodules []string

	// DryRun renders without reading or writing the target init file.
	DryRun bool

	// WithHeader includes the linter-suppression and __future__ header
	// block before the imports.
	WithHeader bool

	// Logger receives progress output. Nil discards it.
	Logger *log.Logger
}

// Result contains the outputs of a synthesis run.
type Result struct {
	// Root is the resolved package identity.
	Root plan.Root

	// Plan is the ordered import plan.
	Plan plan.Plan

	// Rendered is the synthesized import block.
	Rendered string

	// InitPath is the target init file. Set even in dry-run mode,
	// where the file is not touched.
	InitPath string

	// Region is the replaced line region. Only meaningful when a
	// merge was performed.
	Region merge.Region

	// Merged reports whether the init file was written.
	Merged bool
}

// Runner executes the synthesis pipeline.
type Runner struct {
	resolver *pymodule.Resolver
}

// NewRunner creates a pipeline runner using the given resolver.
// A nil resolver defaults to probing the current directory.
func NewRunner(res *pymodule.Resolver) *Runner {
	if res == nil {
		res = pymodule.NewResolver()
	}
	return &Runner{resolver: res}
}

// Run executes the full pipeline for opts.
//
// The target is resolved to a package directory: an existing filesystem
// path is used directly, otherwise the target is treated as a dotted
// module name and resolved via the search paths, failing with
// RESOLUTION_FAILED before any target-file I/O. Each call is independent
// and, for unchanged inputs, idempotent.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	rootPath, err := r.resolveTarget(opts.Target)
	if err != nil {
		return nil, err
	}
	observability.Pipeline().OnResolve(ctx, opts.Target, rootPath)

	rootName, err := r.resolver.ResolveName(rootPath)
	if err != nil {
		return nil, err
	}
	root := plan.Root{Name: rootName, Path: rootPath}
	logger.Debug("Resolved package", "name", rootName, "path", rootPath)

	p, err := plan.Build(ctx, r.resolver, root, opts.Submodules)
	if err != nil {
		return nil, err
	}
	for _, entry := range p {
		observability.Pipeline().OnParseFile(ctx, root.Name+"."+entry.Module, len(entry.Callables))
	}
	logger.Debug("Built import plan", "entries", len(p))

	result := &Result{
		Root:     root,
		Plan:     p,
		Rendered: render.Render(p, rootName, opts.WithHeader),
		InitPath: filepath.Join(rootPath, pymodule.InitFile),
	}

	if opts.DryRun {
		return result, nil
	}

	region, err := merge.Merge(result.InitPath, result.Rendered, logger)
	if err != nil {
		return nil, err
	}
	observability.Pipeline().OnMerge(ctx, result.InitPath, region.Start, region.End)

	result.Region = region
	result.Merged = true
	return result, nil
}

// resolveTarget maps the target string to a package directory.
func (r *Runner) resolveTarget(target string) (string, error) {
	if err := errors.ValidateTargetPath(target); err != nil {
		return "", err
	}

	if fi, err := os.Stat(target); err == nil {
		if !fi.IsDir() {
			return "", errors.New(errors.ErrCodeResolution, "%s is not a package directory", target)
		}
		return target, nil
	}

	if err := errors.ValidateModuleName(target); err != nil {
		return "", errors.New(errors.ErrCodeResolution, "%s is neither an existing path nor a valid module name", target)
	}
	path, ok := r.resolver.ResolvePath(target)
	if !ok {
		return "", errors.New(errors.ErrCodeResolution, "cannot resolve module %q", target)
	}
	if fi, err := os.Stat(path); err != nil || !fi.IsDir() {
		return "", errors.New(errors.ErrCodeResolution, "%s resolves to %s, which is not a package directory", target, path)
	}
	return path, nil
}
