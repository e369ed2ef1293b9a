// Package crawler collects source files from a local directory or a GitHub
// repository, bounded by include/exclude patterns and size limits.
package crawler

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Options bound which files a crawl collects.
type Options struct {
	IncludePatterns []string // filename globs, e.g. "*.go"
	ExcludePatterns []string // path substrings / prefixes, e.g. "vendor/"
	MaxFileSize     int64    // bytes; 0 means no limit
	MaxFiles        int      // 0 means no limit
}

// Result holds the collected files, keyed by path relative to the crawl root.
type Result struct {
	Files   map[string]string
	Skipped int // matched files dropped for size or file-count limits
}

// matches reports whether a relative path passes the include and exclude
// patterns. Excludes match anywhere in the path; includes match the base name.
func (o Options) matches(path string) bool {
	for _, pat := range o.ExcludePatterns {
		if strings.Contains(path, strings.TrimSuffix(pat, "/")) {
			return false
		}
		if ok, _ := filepath.Match(pat, filepath.Base(path)); ok {
			return false
		}
	}
	if len(o.IncludePatterns) == 0 {
		return true
	}
	for _, pat := range o.IncludePatterns {
		if ok, _ := filepath.Match(pat, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

// ParseSize converts a human size string ("100KB", "2MB", "4096") to bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 100 * 1024, nil
	}
	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = s[:len(s)-2]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n * multiplier, nil
}
