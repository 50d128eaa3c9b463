// Package plan builds the ordered import plan for a package: which
// submodules to import and which public callables to re-export from each.
package plan

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/initforge/pyinit/pkg/errors"
	"github.com/initforge/pyinit/pkg/pymodule"
	"github.com/initforge/pyinit/pkg/pysrc"
)

// Root identifies the package being processed.
type Root struct {
	Name string // dotted module name of the package
	Path string // filesystem directory of the package
}

// Entry is one submodule's relative name plus its public callables,
// in definition order.
type Entry struct {
	Module    string
	Callables []string
}

// Plan is an ordered sequence of entries. Order matches submodule
// discovery order, or caller order when explicit submodules were given.
type Plan []Entry

// Build constructs the import plan for the package at root.
//
// When explicit is non-empty, each name is resolved relative to the root
// package in caller order, failing with RESOLUTION_FAILED on any miss.
// Otherwise all submodules are enumerated and those whose relative dotted
// name starts with an underscore are skipped entirely: no import line, no
// callable extraction.
//
// Each retained submodule's source is read and statically parsed; names
// containing a dot or starting with an underscore are filtered out of the
// callable list. Any read or parse failure aborts the whole build.
func Build(ctx context.Context, res *pymodule.Resolver, root Root, explicit []string) (Plan, error) {
	var modules []string
	var paths []string

	if len(explicit) > 0 {
		for _, name := range explicit {
			path, ok := res.ResolvePath(root.Name + "." + name)
			if !ok {
				return nil, errors.New(errors.ErrCodeResolution, "cannot resolve submodule %q of %s", name, root.Name)
			}
			modules = append(modules, name)
			paths = append(paths, path)
		}
	} else {
		subPaths, err := res.PackageModpaths(root.Path)
		if err != nil {
			return nil, err
		}
		for _, subPath := range subPaths {
			subName, err := res.ResolveName(subPath)
			if err != nil {
				return nil, err
			}
			rel := strings.TrimPrefix(subName, root.Name+".")
			if strings.HasPrefix(rel, "_") {
				continue
			}
			modules = append(modules, rel)
			paths = append(paths, subPath)
		}
	}

	p := make(Plan, 0, len(modules))
	for i, module := range modules {
		callables, err := moduleCallables(ctx, paths[i])
		if err != nil {
			return nil, err
		}
		p = append(p, Entry{Module: module, Callables: callables})
	}
	return p, nil
}

// moduleCallables reads one submodule and returns its public callables.
// A package directory stands in for its __init__.py.
func moduleCallables(ctx context.Context, path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResolution, err, "stat %s", path)
	}
	if fi.IsDir() {
		path = filepath.Join(path, pymodule.InitFile)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResolution, err, "read %s", path)
	}

	names, err := pysrc.TopLevelCallables(ctx, source)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse %s", path)
	}

	var public []string
	for _, name := range names {
		if pysrc.IsPublic(name) {
			public = append(public, name)
		}
	}
	return public, nil
}
