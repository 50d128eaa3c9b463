package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/initforge/pyinit/pkg/plan"
)

// testContext returns a context whose logger discards all output.
func testContext() context.Context {
	return withLogger(context.Background(), newLogger(io.Discard, log.ErrorLevel))
}

// fixturePackage creates a small package under a temp dir and returns its path.
func fixturePackage(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	pkg := filepath.Join(base, "mypkg")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files := map[string]string{
		"__init__.py": "",
		"util.py":     "def helper():\n    pass\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(pkg, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return pkg
}

func TestRunGenWritesInitFile(t *testing.T) {
	pkg := fixturePackage(t)

	if err := runGen(testContext(), pkg, genOpts{}); err != nil {
		t.Fatalf("runGen error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(pkg, "__init__.py"))
	if err != nil {
		t.Fatalf("read init: %v", err)
	}
	want := "import mypkg.util\nfrom mypkg.util import helper,"
	if string(data) != want {
		t.Errorf("init file = %q, want %q", string(data), want)
	}
}

func TestRunGenDryDoesNotWrite(t *testing.T) {
	pkg := fixturePackage(t)
	initPath := filepath.Join(pkg, "__init__.py")
	original := "# untouched\n"
	if err := os.WriteFile(initPath, []byte(original), 0o644); err != nil {
		t.Fatalf("write init: %v", err)
	}

	if err := runGen(testContext(), pkg, genOpts{dry: true}); err != nil {
		t.Fatalf("runGen error: %v", err)
	}

	data, err := os.ReadFile(initPath)
	if err != nil {
		t.Fatalf("read init: %v", err)
	}
	if string(data) != original {
		t.Errorf("dry run modified the init file: %q", string(data))
	}
}

func TestRunGenDiffDoesNotWrite(t *testing.T) {
	pkg := fixturePackage(t)
	initPath := filepath.Join(pkg, "__init__.py")
	original := "stale = 1\n"
	if err := os.WriteFile(initPath, []byte(original), 0o644); err != nil {
		t.Fatalf("write init: %v", err)
	}

	if err := runGen(testContext(), pkg, genOpts{diff: true}); err != nil {
		t.Fatalf("runGen error: %v", err)
	}

	data, err := os.ReadFile(initPath)
	if err != nil {
		t.Fatalf("read init: %v", err)
	}
	if string(data) != original {
		t.Errorf("diff mode modified the init file: %q", string(data))
	}
}

func TestRunGenConfigHeader(t *testing.T) {
	pkg := fixturePackage(t)
	cfgPath := filepath.Join(pkg, ".pyinit.toml")
	if err := os.WriteFile(cfgPath, []byte("[render]\nwith_header = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := runGen(testContext(), pkg, genOpts{}); err != nil {
		t.Fatalf("runGen error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(pkg, "__init__.py"))
	if err != nil {
		t.Fatalf("read init: %v", err)
	}
	if !strings.HasPrefix(string(data), "# flake8: noqa\n") {
		t.Errorf("config with_header should prepend the header, got %q", string(data))
	}
}

func TestRunGenUnresolvableTarget(t *testing.T) {
	err := runGen(testContext(), "no.such.module", genOpts{})
	if err == nil {
		t.Fatal("expected error for unresolvable target")
	}
}

func TestRunPlanDoesNotWrite(t *testing.T) {
	pkg := fixturePackage(t)
	initPath := filepath.Join(pkg, "__init__.py")
	original := "# untouched\n"
	if err := os.WriteFile(initPath, []byte(original), 0o644); err != nil {
		t.Fatalf("write init: %v", err)
	}

	if err := runPlan(testContext(), pkg, planOpts{}); err != nil {
		t.Fatalf("runPlan error: %v", err)
	}

	data, err := os.ReadFile(initPath)
	if err != nil {
		t.Fatalf("read init: %v", err)
	}
	if string(data) != original {
		t.Errorf("plan modified the init file: %q", string(data))
	}
}

func TestConfigDir(t *testing.T) {
	dir := t.TempDir()

	if got := configDir(dir); got != dir {
		t.Errorf("configDir(%q) = %q, want the directory itself", dir, got)
	}
	if got := configDir("some.dotted.name"); got != "." {
		t.Errorf("configDir(name) = %q, want %q", got, ".")
	}
}

func TestCallableCount(t *testing.T) {
	p := plan.Plan{
		{Module: "a", Callables: []string{"x", "y"}},
		{Module: "b"},
		{Module: "c", Callables: []string{"z"}},
	}
	if got := callableCount(p); got != 3 {
		t.Errorf("callableCount = %d, want 3", got)
	}
}
