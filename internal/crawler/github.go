package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	vlog "github.com/futureCreator/tutorgen/internal/log"
)

// fetchConcurrency bounds parallel blob downloads per crawl.
const fetchConcurrency = 8

// GitHub fetches repository files over the REST API.
type GitHub struct {
	HTTPClient *http.Client
	BaseURL    string // defaults to https://api.github.com
	Token      string // optional; raises rate limits and opens private repos
}

// NewGitHub returns a client authenticated with token (may be empty).
func NewGitHub(token string) *GitHub {
	return &GitHub{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    "https://api.github.com",
		Token:      token,
	}
}

// ParseRepoURL extracts owner and repo from a GitHub URL or "owner/repo".
func ParseRepoURL(raw string) (owner, repo string, err error) {
	s := strings.TrimSuffix(strings.TrimSpace(raw), ".git")
	if u, uerr := url.Parse(s); uerr == nil && u.Host != "" {
		s = strings.Trim(u.Path, "/")
	}
	parts := strings.Split(s, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GitHub repo %q, want owner/repo or a github.com URL", raw)
	}
	return parts[0], parts[1], nil
}

type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
		Size int64  `json:"size"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

type repoResponse struct {
	DefaultBranch string `json:"default_branch"`
}

// Fetch lists the repository tree at ref (the default branch when empty) and
// downloads every blob passing opts, up to fetchConcurrency at a time.
func (g *GitHub) Fetch(ctx context.Context, owner, repo, ref string, opts Options) (*Result, error) {
	if ref == "" {
		var err error
		ref, err = g.defaultBranch(ctx, owner, repo)
		if err != nil {
			return nil, err
		}
	}

	var tree treeResponse
	treeURL := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", g.BaseURL, owner, repo, url.PathEscape(ref))
	if err := g.getJSON(ctx, treeURL, &tree); err != nil {
		return nil, fmt.Errorf("listing tree of %s/%s@%s: %w", owner, repo, ref, err)
	}
	if tree.Truncated {
		vlog.Warn("github tree truncated, some files will be missing", "repo", owner+"/"+repo)
	}

	result := &Result{Files: map[string]string{}}
	var wanted []string
	for _, entry := range tree.Tree {
		if entry.Type != "blob" || !opts.matches(entry.Path) {
			continue
		}
		if opts.MaxFileSize > 0 && entry.Size > opts.MaxFileSize {
			result.Skipped++
			continue
		}
		if opts.MaxFiles > 0 && len(wanted) >= opts.MaxFiles {
			result.Skipped++
			continue
		}
		wanted = append(wanted, entry.Path)
	}
	if len(wanted) == 0 {
		return nil, fmt.Errorf("no files matched in %s/%s@%s", owner, repo, ref)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(fetchConcurrency)
	var mu sync.Mutex
	for _, path := range wanted {
		path := path
		eg.Go(func() error {
			content, err := g.fetchFile(ctx, owner, repo, ref, path)
			if err != nil {
				return err
			}
			mu.Lock()
			result.Files[path] = content
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (g *GitHub) defaultBranch(ctx context.Context, owner, repo string) (string, error) {
	var meta repoResponse
	if err := g.getJSON(ctx, fmt.Sprintf("%s/repos/%s/%s", g.BaseURL, owner, repo), &meta); err != nil {
		return "", fmt.Errorf("resolving default branch of %s/%s: %w", owner, repo, err)
	}
	if meta.DefaultBranch == "" {
		return "", fmt.Errorf("repository %s/%s has no default branch", owner, repo)
	}
	return meta.DefaultBranch, nil
}

func (g *GitHub) fetchFile(ctx context.Context, owner, repo, ref, path string) (string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		g.BaseURL, owner, repo, escapePath(path), url.QueryEscape(ref))
	body, err := g.get(ctx, u, "application/vnd.github.raw+json")
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", path, err)
	}
	return string(body), nil
}

func (g *GitHub) getJSON(ctx context.Context, u string, out any) error {
	body, err := g.get(ctx, u, "application/vnd.github+json")
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (g *GitHub) get(ctx context.Context, u, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// escapePath escapes each path segment but keeps the separators.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
