package tutorial

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/futureCreator/tutorgen/internal/config"
	"github.com/futureCreator/tutorgen/internal/flow"
)

// TestPipelineEndToEnd runs the whole flow against a local directory with a
// scripted model: two source files become a two-chapter tutorial on disk.
func TestPipelineEndToEnd(t *testing.T) {
	src := t.TempDir()
	for name, content := range map[string]string{
		"main.go":   "package main\n\nfunc main() {}\n",
		"engine.go": "package main\n\ntype Engine struct{}\n",
	} {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	out := t.TempDir()

	cfg := &config.Config{
		Crawl: config.CrawlConfig{
			IncludePatterns: []string{"*.go"},
			MaxFileSize:     "100KB",
			MaxFiles:        50,
		},
		Language:        "english",
		MaxAbstractions: 5,
		OutputDir:       out,
	}
	client := &fakeLLM{responses: []string{
		"```yaml\n- name: Engine\n  description: The core.\n  file_indices: [0]\n- name: Entry Point\n  description: The start.\n  file_indices: [1]\n```",
		"```yaml\nsummary: A tiny project.\nrelationships:\n  - from_abstraction: 1\n    to_abstraction: 0\n    label: Starts\n```",
		"```yaml\n- 1\n- 0\n```",
		"# Chapter 1: Entry Point\n\nWhere it begins.",
		"# Chapter 2: Engine\n\nWhat it drives.",
	}}

	f := Build(context.Background(), Options{
		Config:   cfg,
		LLM:      client,
		LocalDir: src,
	})

	shared := flow.Shared{}
	action, err := flow.Run(f, shared)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if action != flow.DefaultAction {
		t.Errorf("final action = %q", action)
	}
	if len(client.responses) != 0 {
		t.Errorf("%d scripted responses unused", len(client.responses))
	}

	project := filepath.Base(src)
	dir := shared[KeyOutputDir].(string)
	if dir != filepath.Join(out, sanitizeName(project)) {
		t.Errorf("output dir = %q", dir)
	}
	for _, name := range []string{"index.md", "01_entry_point.md", "02_engine.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output file %s: %v", name, err)
		}
	}
}
