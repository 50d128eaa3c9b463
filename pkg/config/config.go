// Package config loads optional project configuration for pyinit from a
// .pyinit.toml file.
//
// The file is searched for in the target package directory and its
// ancestors; the nearest match wins. A missing file is not an error and
// yields the defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/initforge/pyinit/pkg/errors"
)

// FileName is the configuration file searched for in the package
// directory and its ancestors.
const FileName = ".pyinit.toml"

// Config is the parsed project configuration.
type Config struct {
	Resolver ResolverConfig `toml:"resolver"`
	Render   RenderConfig   `toml:"render"`

	// Dir is the directory the config file was found in; empty when
	// defaults are in effect.
	Dir string `toml:"-"`
}

// ResolverConfig configures module resolution.
type ResolverConfig struct {
	// SearchPaths are module search roots, relative to the config
	// file's directory unless absolute.
	SearchPaths []string `toml:"search_paths"`
}

// RenderConfig configures output rendering.
type RenderConfig struct {
	// WithHeader includes the linter-suppression and __future__ header
	// block before the generated imports.
	WithHeader bool `toml:"with_header"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{}
}

// Load searches dir and its ancestors for a config file and parses the
// nearest one. Search-path entries are rebased onto the config file's
// directory. A missing file yields Default() and no error; a present but
// malformed file is an error.
func Load(dir string) (Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", dir)
	}

	for {
		path := filepath.Join(abs, FileName)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return parse(path, abs)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return Default(), nil
		}
		abs = parent
	}
}

// parse reads and decodes one config file.
func parse(path, dir string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	cfg.Dir = dir

	for i, sp := range cfg.Resolver.SearchPaths {
		if !filepath.IsAbs(sp) {
			cfg.Resolver.SearchPaths[i] = filepath.Join(dir, sp)
		}
	}
	return cfg, nil
}
