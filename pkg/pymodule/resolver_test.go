package pymodule

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/initforge/pyinit/pkg/errors"
)

// writeTree creates the given files (relative path -> content) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestResolvePath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pkg/__init__.py":     "",
		"pkg/alpha.py":        "",
		"pkg/sub/__init__.py": "",
		"pkg/sub/beta.py":     "",
		"notpkg/gamma.py":     "",
	})
	r := NewResolver(root)

	tests := []struct {
		name   string
		module string
		want   string
		wantOK bool
	}{
		{"package dir", "pkg", filepath.Join(root, "pkg"), true},
		{"module file", "pkg.alpha", filepath.Join(root, "pkg", "alpha.py"), true},
		{"subpackage", "pkg.sub", filepath.Join(root, "pkg", "sub"), true},
		{"nested module", "pkg.sub.beta", filepath.Join(root, "pkg", "sub", "beta.py"), true},
		{"missing module", "pkg.missing", "", false},
		{"dir without init", "notpkg", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.ResolvePath(tt.module)
			if ok != tt.wantOK {
				t.Fatalf("ResolvePath(%q) ok = %v, want %v", tt.module, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ResolvePath(%q) = %q, want %q", tt.module, got, tt.want)
			}
		})
	}
}

func TestResolvePathSearchOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeTree(t, first, map[string]string{"pkg/__init__.py": ""})
	writeTree(t, second, map[string]string{"pkg/__init__.py": ""})

	r := NewResolver(first, second)
	got, ok := r.ResolvePath("pkg")
	if !ok {
		t.Fatal("ResolvePath should find pkg")
	}
	if got != filepath.Join(first, "pkg") {
		t.Errorf("ResolvePath = %q, want match from first search root", got)
	}
}

func TestResolveName(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pkg/__init__.py":     "",
		"pkg/alpha.py":        "",
		"pkg/sub/__init__.py": "",
		"pkg/sub/beta.py":     "",
	})
	r := NewResolver(root)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"package dir", filepath.Join(root, "pkg"), "pkg"},
		{"module file", filepath.Join(root, "pkg", "alpha.py"), "pkg.alpha"},
		{"subpackage dir", filepath.Join(root, "pkg", "sub"), "pkg.sub"},
		{"nested module", filepath.Join(root, "pkg", "sub", "beta.py"), "pkg.sub.beta"},
		{"init file maps to package", filepath.Join(root, "pkg", "__init__.py"), "pkg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveName(tt.path)
			if err != nil {
				t.Fatalf("ResolveName(%q) error: %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("ResolveName(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolveNameErrors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"plain/file.txt": ""})
	r := NewResolver(root)

	if _, err := r.ResolveName(filepath.Join(root, "nope")); !errors.Is(err, errors.ErrCodeResolution) {
		t.Errorf("missing path: error = %v, want RESOLUTION_FAILED", err)
	}
	if _, err := r.ResolveName(filepath.Join(root, "plain")); !errors.Is(err, errors.ErrCodeResolution) {
		t.Errorf("non-package dir: error = %v, want RESOLUTION_FAILED", err)
	}
}

func TestPackageModpaths(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"pkg/__init__.py":        "",
		"pkg/beta.py":            "",
		"pkg/alpha.py":           "",
		"pkg/_hidden.py":         "",
		"pkg/data.txt":           "",
		"pkg/sub/__init__.py":    "",
		"pkg/sub/gamma.py":       "",
		"pkg/notapkg/orphan.py":  "",
		"pkg/zz_last/__init__.py": "",
		"pkg/zz_last/delta.py":   "",
	})
	r := NewResolver(root)

	got, err := r.PackageModpaths(filepath.Join(root, "pkg"))
	if err != nil {
		t.Fatalf("PackageModpaths error: %v", err)
	}

	want := []string{
		filepath.Join(root, "pkg", "_hidden.py"),
		filepath.Join(root, "pkg", "alpha.py"),
		filepath.Join(root, "pkg", "beta.py"),
		filepath.Join(root, "pkg", "sub", "gamma.py"),
		filepath.Join(root, "pkg", "zz_last", "delta.py"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PackageModpaths = %v, want %v", got, want)
	}
}

func TestPackageModpathsNotAPackage(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"plain/file.py": ""})
	r := NewResolver(root)

	_, err := r.PackageModpaths(filepath.Join(root, "plain"))
	if !errors.Is(err, errors.ErrCodeResolution) {
		t.Errorf("error = %v, want RESOLUTION_FAILED", err)
	}
}
