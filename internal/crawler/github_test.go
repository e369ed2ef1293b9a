package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func githubStub(t *testing.T) *httptest.Server {
	t.Helper()
	files := map[string]string{
		"main.go":       "package main",
		"docs/guide.md": "# guide",
		"big.bin":       strings.Repeat("x", 4096),
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/repos/acme/widget":
			json.NewEncoder(w).Encode(map[string]string{"default_branch": "main"})
		case r.URL.Path == "/repos/acme/widget/git/trees/main":
			tree := []map[string]any{}
			for path, content := range files {
				tree = append(tree, map[string]any{"path": path, "type": "blob", "size": len(content)})
			}
			tree = append(tree, map[string]any{"path": "docs", "type": "tree", "size": 0})
			json.NewEncoder(w).Encode(map[string]any{"tree": tree, "truncated": false})
		case strings.HasPrefix(r.URL.Path, "/repos/acme/widget/contents/"):
			path := strings.TrimPrefix(r.URL.Path, "/repos/acme/widget/contents/")
			content, ok := files[path]
			if !ok {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, content)
		default:
			http.NotFound(w, r)
		}
	}))
}

func stubClient(ts *httptest.Server) *GitHub {
	g := NewGitHub("")
	g.BaseURL = ts.URL
	g.HTTPClient = ts.Client()
	return g
}

func TestGitHubFetch(t *testing.T) {
	ts := githubStub(t)
	defer ts.Close()

	res, err := stubClient(ts).Fetch(context.Background(), "acme", "widget", "", Options{
		IncludePatterns: []string{"*.go", "*.md"},
	})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if got := res.Files["main.go"]; got != "package main" {
		t.Errorf("main.go content = %q", got)
	}
	if got := res.Files["docs/guide.md"]; got != "# guide" {
		t.Errorf("docs/guide.md content = %q", got)
	}
	if _, ok := res.Files["big.bin"]; ok {
		t.Error("big.bin should not match include patterns")
	}
}

func TestGitHubFetchSizeLimit(t *testing.T) {
	ts := githubStub(t)
	defer ts.Close()

	res, err := stubClient(ts).Fetch(context.Background(), "acme", "widget", "main", Options{
		IncludePatterns: []string{"*.go", "*.bin"},
		MaxFileSize:     1024,
	})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if _, ok := res.Files["big.bin"]; ok {
		t.Error("oversized blob should be skipped")
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
}

func TestGitHubFetchNoMatches(t *testing.T) {
	ts := githubStub(t)
	defer ts.Close()

	_, err := stubClient(ts).Fetch(context.Background(), "acme", "widget", "main", Options{
		IncludePatterns: []string{"*.rs"},
	})
	if err == nil {
		t.Fatal("expected error when nothing matches")
	}
}

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		in        string
		owner     string
		repo      string
		wantErr   bool
	}{
		{"https://github.com/acme/widget", "acme", "widget", false},
		{"https://github.com/acme/widget.git", "acme", "widget", false},
		{"acme/widget", "acme", "widget", false},
		{"widget", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		owner, repo, err := ParseRepoURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRepoURL(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if owner != tt.owner || repo != tt.repo {
			t.Errorf("ParseRepoURL(%q) = %q/%q, want %q/%q", tt.in, owner, repo, tt.owner, tt.repo)
		}
	}
}
