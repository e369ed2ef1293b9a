package crawler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestCrawlLocalPatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":           "package main",
		"lib/util.go":       "package lib",
		"lib/util_test.go":  "package lib",
		"README.md":         "# readme",
		"vendor/dep/dep.go": "package dep",
		"notes.txt":         "notes",
	})

	res, err := CrawlLocal(root, Options{
		IncludePatterns: []string{"*.go", "*.md"},
		ExcludePatterns: []string{"vendor/", "*_test.go"},
	})
	if err != nil {
		t.Fatalf("CrawlLocal() error: %v", err)
	}

	want := []string{"main.go", "lib/util.go", "README.md"}
	if len(res.Files) != len(want) {
		t.Errorf("collected %d files, want %d: %v", len(res.Files), len(want), keysOf(res.Files))
	}
	for _, path := range want {
		if _, ok := res.Files[path]; !ok {
			t.Errorf("missing expected file %q", path)
		}
	}
	if _, ok := res.Files["vendor/dep/dep.go"]; ok {
		t.Error("vendor file should be excluded")
	}
	if _, ok := res.Files["lib/util_test.go"]; ok {
		t.Error("test file should be excluded")
	}
}

func TestCrawlLocalMaxFileSize(t *testing.T) {
	root := writeTree(t, map[string]string{
		"small.go": "package a",
		"big.go":   strings.Repeat("x", 2048),
	})

	res, err := CrawlLocal(root, Options{
		IncludePatterns: []string{"*.go"},
		MaxFileSize:     1024,
	})
	if err != nil {
		t.Fatalf("CrawlLocal() error: %v", err)
	}
	if _, ok := res.Files["big.go"]; ok {
		t.Error("oversized file should be skipped")
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
}

func TestCrawlLocalMaxFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.go": "a", "b.go": "b", "c.go": "c",
	})

	res, err := CrawlLocal(root, Options{
		IncludePatterns: []string{"*.go"},
		MaxFiles:        2,
	})
	if err != nil {
		t.Fatalf("CrawlLocal() error: %v", err)
	}
	if len(res.Files) != 2 {
		t.Errorf("collected %d files, want 2", len(res.Files))
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
}

func TestCrawlLocalSkipsHiddenDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":         "package main",
		".git/config.go":  "not really go",
		".cache/stale.go": "stale",
	})

	res, err := CrawlLocal(root, Options{IncludePatterns: []string{"*.go"}})
	if err != nil {
		t.Fatalf("CrawlLocal() error: %v", err)
	}
	if len(res.Files) != 1 {
		t.Errorf("collected %d files, want 1: %v", len(res.Files), keysOf(res.Files))
	}
}

func TestCrawlLocalNoMatches(t *testing.T) {
	root := writeTree(t, map[string]string{"notes.txt": "n"})
	if _, err := CrawlLocal(root, Options{IncludePatterns: []string{"*.go"}}); err == nil {
		t.Fatal("expected error when nothing matches")
	}
}

func TestCrawlLocalNotADirectory(t *testing.T) {
	root := writeTree(t, map[string]string{"f.go": "x"})
	if _, err := CrawlLocal(filepath.Join(root, "f.go"), Options{}); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"100KB", 100 * 1024, false},
		{"2MB", 2 * 1024 * 1024, false},
		{"4096", 4096, false},
		{"", 100 * 1024, false},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func keysOf(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
