package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/todo-list/internal/core"
)

func setProjectInit(t *testing.T) {
	t.Helper()
	orig := ProjectInit
	ProjectInit = core.NewProjectInitializer()
	t.Cleanup(func() { ProjectInit = orig })
}

func TestInitCmd_WritesConfig(t *testing.T) {
	setProjectInit(t)
	dir := filepath.Join(t.TempDir(), "home-tasks")

	out, err := runCommand(t, "init", dir, "--storage", "yaml", "--priority", "low", "--no-events")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Created "+filepath.Join(dir, ".todoconfig.yaml")) {
		t.Errorf("unexpected output: %s", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, ".todoconfig.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"path: tasks.yaml", "priority: Low", "enabled: false"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config missing %q:\n%s", want, data)
		}
	}

	out, err = runCommand(t, "init", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("second init should skip the config, got: %s", out)
	}
}

func TestInitCmd_InvalidFlags(t *testing.T) {
	setProjectInit(t)

	if _, err := runCommand(t, "init", t.TempDir(), "--priority", "urgent"); err == nil {
		t.Error("expected error for an unknown priority")
	}
	if _, err := runCommand(t, "init", t.TempDir(), "--storage", "xml"); err == nil || !strings.Contains(err.Error(), "storage format") {
		t.Errorf("expected storage format error, got %v", err)
	}
}

func TestInitCmd_NilInitializer(t *testing.T) {
	orig := ProjectInit
	ProjectInit = nil
	defer func() { ProjectInit = orig }()

	if _, err := runCommand(t, "init", t.TempDir()); err == nil {
		t.Error("expected error when ProjectInit is nil")
	}
}
