package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// dottedModuleRegex matches dotted Python module paths like "pkg.sub.mod".
// Each component must be a valid Python identifier (ASCII subset).
var dottedModuleRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidateModuleName validates a dotted Python module name.
// It rejects empty names, names with invalid identifier components,
// and names that could be used for path traversal.
func ValidateModuleName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidModule, "module name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidModule, "module name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidModule, "module name contains control characters")
		}
	}

	if !dottedModuleRegex.MatchString(name) {
		return New(ErrCodeInvalidModule, "invalid module name: %q", name)
	}

	return nil
}

// ValidateTargetPath validates a filesystem path supplied as a synthesis target.
// It prevents null bytes and other characters that cannot appear in sane paths.
// Relative and absolute paths are both accepted; existence is checked separately.
func ValidateTargetPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "path contains null bytes")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains control characters")
		}
	}

	return nil
}
