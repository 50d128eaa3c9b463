// Package pymodule maps between dotted Python module names and filesystem
// paths, and enumerates the submodules of a package.
//
// All operations are pure filesystem lookups: nothing is imported or
// executed. A directory is a package iff it contains an __init__.py file.
package pymodule

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/initforge/pyinit/pkg/errors"
)

// InitFile is the package initialization file name.
const InitFile = "__init__.py"

// Resolver maps dotted module names to filesystem paths by probing a list
// of search roots, in order. An empty SearchPaths means only the current
// directory is probed.
type Resolver struct {
	SearchPaths []string
}

// NewResolver creates a resolver probing the given search roots in order.
// When no roots are given, the current directory is used.
func NewResolver(searchPaths ...string) *Resolver {
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}
	return &Resolver{SearchPaths: searchPaths}
}

// ResolvePath maps a dotted module name to a filesystem path.
// A name resolves to either a module file ("pkg/mod.py") or a package
// directory containing __init__.py. Module files win over same-named
// packages within a search root; search roots are probed in order.
// The boolean is false when no search root contains the module.
func (r *Resolver) ResolvePath(name string) (string, bool) {
	parts := strings.Split(name, ".")
	for _, base := range r.SearchPaths {
		rel := filepath.Join(parts...)

		if fi, err := os.Stat(filepath.Join(base, rel) + ".py"); err == nil && !fi.IsDir() {
			return filepath.Join(base, rel) + ".py", true
		}

		dir := filepath.Join(base, rel)
		if isPackageDir(dir) {
			return dir, true
		}
	}
	return "", false
}

// ResolveName maps a filesystem path back to a dotted module name.
// For a module file the trailing ".py" is dropped; for a package directory
// the directory name is used. Parent directories are accumulated into the
// dotted prefix for as long as they contain __init__.py.
func (r *Resolver) ResolveName(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}

	fi, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResolution, err, "no such module path: %s", path)
	}

	var parts []string
	dir := abs
	if !fi.IsDir() {
		base := filepath.Base(abs)
		if base != InitFile {
			parts = append(parts, strings.TrimSuffix(base, ".py"))
		}
		dir = filepath.Dir(abs)
	}

	// Walk up while the directory is a package.
	for isPackageDir(dir) {
		parts = append(parts, filepath.Base(dir))
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if len(parts) == 0 {
		return "", errors.New(errors.ErrCodeResolution, "%s is not inside a Python package", path)
	}

	// parts were collected leaf-first.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "."), nil
}

// PackageModpaths enumerates the submodule files of the package rooted at
// root, in discovery order: directory entries are visited sorted, module
// files before subpackage directories, recursing only into directories
// that are themselves packages. The package's own __init__.py files are
// never yielded.
func (r *Resolver) PackageModpaths(root string) ([]string, error) {
	if !isPackageDir(root) {
		return nil, errors.New(errors.ErrCodeResolution, "%s is not a package (no %s)", root, InitFile)
	}
	var paths []string
	if err := walkPackage(root, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

// walkPackage appends the module files under dir to out, depth-first with
// files before subdirectories.
func walkPackage(dir string, out *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResolution, err, "read package dir %s", dir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var subdirs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			sub := filepath.Join(dir, name)
			if isPackageDir(sub) {
				subdirs = append(subdirs, sub)
			}
			continue
		}
		if strings.HasSuffix(name, ".py") && name != InitFile {
			*out = append(*out, filepath.Join(dir, name))
		}
	}
	for _, sub := range subdirs {
		if err := walkPackage(sub, out); err != nil {
			return err
		}
	}
	return nil
}

// isPackageDir reports whether dir is a Python package directory.
func isPackageDir(dir string) bool {
	fi, err := os.Stat(filepath.Join(dir, InitFile))
	return err == nil && !fi.IsDir()
}
