package llm

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := OpenCache(path)
	if _, ok := c.Get("p"); ok {
		t.Fatal("fresh cache should be empty")
	}

	c.Put("p", "r")
	if got, ok := c.Get("p"); !ok || got != "r" {
		t.Errorf("Get() = %q, %v; want %q, true", got, ok, "r")
	}

	// Reopen from disk.
	reopened := OpenCache(path)
	if got, ok := reopened.Get("p"); !ok || got != "r" {
		t.Errorf("reopened Get() = %q, %v; want %q, true", got, ok, "r")
	}
	if reopened.Len() != 1 {
		t.Errorf("reopened Len() = %d, want 1", reopened.Len())
	}
}

func TestOpenCacheMissingFile(t *testing.T) {
	c := OpenCache(filepath.Join(t.TempDir(), "absent.json"))
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for missing file", c.Len())
	}
}

func TestOpenCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	c := OpenCache(path)
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for corrupt file", c.Len())
	}
	// Still usable after the bad load.
	c.Put("p", "r")
	if got, _ := c.Get("p"); got != "r" {
		t.Errorf("Get() after corrupt load = %q, want %q", got, "r")
	}
}
