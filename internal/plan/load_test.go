package plan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseYAML(t *testing.T) {
	data := []byte(`
id: nightly-build
objective: build and package the release
tasks:
  - id: compile
    description: compile all targets
    priority: 5
    estimated_cost: 3.5
    command: ["make", "build"]
  - id: package
    depends_on: [compile]
`)

	spec, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if spec.ID != "nightly-build" {
		t.Errorf("id = %q, want nightly-build", spec.ID)
	}
	if len(spec.Tasks) != 2 {
		t.Fatalf("task count = %d, want 2", len(spec.Tasks))
	}

	compile := spec.Tasks[0]
	if compile.Priority != 5 || compile.EstimatedCost != 3.5 {
		t.Errorf("compile fields not decoded: %+v", compile)
	}
	if len(compile.Command) != 2 || compile.Command[0] != "make" {
		t.Errorf("command not decoded: %v", compile.Command)
	}

	pkg := spec.Tasks[1]
	if len(pkg.DependsOn) != 1 || pkg.DependsOn[0] != "compile" {
		t.Errorf("depends_on not decoded: %v", pkg.DependsOn)
	}
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{
  "id": "p1",
  "tasks": [
    {"id": "a"},
    {"id": "b", "depends_on": ["a"]}
  ]
}`)

	spec, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(spec.Tasks) != 2 {
		t.Errorf("task count = %d, want 2", len(spec.Tasks))
	}
}

func TestParseRejectsEmptyPlan(t *testing.T) {
	if _, err := Parse([]byte(`id: empty`)); err == nil {
		t.Error("expected error for plan without tasks")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte(`{{{not yaml`)); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	content := []byte("tasks:\n  - id: only\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write temp plan: %v", err)
	}

	spec, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(spec.Tasks) != 1 || spec.Tasks[0].ID != "only" {
		t.Errorf("unexpected spec: %+v", spec)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
