package run

import (
	"os"
	"strings"
	"testing"
)

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"My Project", "my-project"},
		{"acme/widget (v2)", "acme-widget-v2"},
		{"  spaces  ", "spaces"},
		{"", "run"},
		{"123-abc", "123-abc"},
		{strings.Repeat("a", 50), strings.Repeat("a", 40)},
	}
	for _, tt := range tests {
		got := sanitizeSlug(tt.input)
		if got != tt.want {
			t.Errorf("sanitizeSlug(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	r, err := New("repo", "acme/widget", "widget")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if r.Meta.Status != "running" {
		t.Errorf("expected status 'running', got %q", r.Meta.Status)
	}
	if r.Meta.Source != "repo" {
		t.Errorf("expected source 'repo', got %q", r.Meta.Source)
	}

	// Verify meta.json was written
	if _, err := os.Stat(r.FilePath("meta.json")); err != nil {
		t.Errorf("meta.json not created: %v", err)
	}

	// Verify latest symlink
	latestTarget, err := os.Readlink(dir + "/.tutorgen/runs/latest")
	if err != nil {
		t.Errorf("latest symlink not created: %v", err)
	}
	if latestTarget != r.ID {
		t.Errorf("latest symlink points to %q, want %q", latestTarget, r.ID)
	}
}

func TestAddNodeResultAccumulatesCost(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	r, err := New("dir", ".", "widget")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	r.AddNodeResult(NodeResult{Name: "IdentifyAbstractions", Status: "completed", Cost: 0.02})
	r.AddNodeResult(NodeResult{Name: "WriteChapters", Status: "completed", Cost: 0.10})

	if len(r.Meta.Nodes) != 2 {
		t.Fatalf("expected 2 node results, got %d", len(r.Meta.Nodes))
	}
	if r.Meta.TotalCost < 0.119 || r.Meta.TotalCost > 0.121 {
		t.Errorf("total cost = %f, want 0.12", r.Meta.TotalCost)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	first, err := New("repo", "acme/widget", "widget")
	if err != nil {
		t.Fatal(err)
	}
	first.Complete()

	metas, err := List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("List() returned %d runs, want 1", len(metas))
	}
	if metas[0].Status != "completed" {
		t.Errorf("status = %q, want completed", metas[0].Status)
	}
}
