package plan

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/initforge/pyinit/pkg/errors"
	"github.com/initforge/pyinit/pkg/pymodule"
)

// fixturePackage creates the scenario package: a.py defines foo and _bar,
// b.py defines nothing, _hidden.py is a private submodule.
func fixturePackage(t *testing.T) (string, Root, *pymodule.Resolver) {
	t.Helper()
	base := t.TempDir()
	files := map[string]string{
		"pkg/__init__.py": "",
		"pkg/a.py":        "def foo():\n    pass\n\ndef _bar():\n    pass\n",
		"pkg/b.py":        "x = 1\n",
		"pkg/_hidden.py":  "def tempting():\n    pass\n",
	}
	for rel, content := range files {
		path := filepath.Join(base, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	root := Root{Name: "pkg", Path: filepath.Join(base, "pkg")}
	return base, root, pymodule.NewResolver(base)
}

func TestBuildEnumerates(t *testing.T) {
	_, root, res := fixturePackage(t)

	got, err := Build(context.Background(), res, root, nil)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	want := Plan{
		{Module: "a", Callables: []string{"foo"}},
		{Module: "b", Callables: nil},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build = %+v, want %+v", got, want)
	}
}

func TestBuildSkipsPrivateSubmodules(t *testing.T) {
	_, root, res := fixturePackage(t)

	got, err := Build(context.Background(), res, root, nil)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	for _, entry := range got {
		if entry.Module == "_hidden" {
			t.Error("private submodule _hidden should be excluded from the plan")
		}
	}
}

func TestBuildExplicitOrder(t *testing.T) {
	_, root, res := fixturePackage(t)

	got, err := Build(context.Background(), res, root, []string{"b", "a"})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	want := Plan{
		{Module: "b", Callables: nil},
		{Module: "a", Callables: []string{"foo"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build = %+v, want %+v", got, want)
	}
}

func TestBuildExplicitUnresolvable(t *testing.T) {
	_, root, res := fixturePackage(t)

	_, err := Build(context.Background(), res, root, []string{"a", "missing"})
	if err == nil {
		t.Fatal("expected error for unresolvable explicit submodule")
	}
	if !errors.Is(err, errors.ErrCodeResolution) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeResolution)
	}
}

func TestBuildNestedSubpackage(t *testing.T) {
	base := t.TempDir()
	files := map[string]string{
		"pkg/__init__.py":     "",
		"pkg/a.py":            "def foo():\n    pass\n",
		"pkg/sub/__init__.py": "",
		"pkg/sub/c.py":        "def baz():\n    pass\n",
	}
	for rel, content := range files {
		path := filepath.Join(base, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	res := pymodule.NewResolver(base)
	root := Root{Name: "pkg", Path: filepath.Join(base, "pkg")}

	got, err := Build(context.Background(), res, root, nil)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	want := Plan{
		{Module: "a", Callables: []string{"foo"}},
		{Module: "sub.c", Callables: []string{"baz"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build = %+v, want %+v", got, want)
	}
}

func TestBuildParseFailureAborts(t *testing.T) {
	base, root, res := fixturePackage(t)
	broken := filepath.Join(base, "pkg", "c.py")
	if err := os.WriteFile(broken, []byte("def broken(:\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Build(context.Background(), res, root, nil)
	if err == nil {
		t.Fatal("expected error when a submodule fails to parse")
	}
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeParse)
	}
}
