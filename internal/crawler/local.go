package crawler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CrawlLocal walks root and collects files passing opts. Paths in the result
// are relative to root with forward slashes, so output is stable across
// platforms and matches what the GitHub crawler produces.
func CrawlLocal(root string, opts Options) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("crawling %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("crawling %s: not a directory", root)
	}

	result := &Result{Files: map[string]string{}}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable paths
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			for _, pat := range opts.ExcludePatterns {
				if strings.Contains(rel+"/", strings.TrimSuffix(pat, "/")+"/") {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !opts.matches(rel) {
			return nil
		}

		if opts.MaxFiles > 0 && len(result.Files) >= opts.MaxFiles {
			result.Skipped++
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		if opts.MaxFileSize > 0 && fi.Size() > opts.MaxFileSize {
			result.Skipped++
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		result.Files[rel] = string(content)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Files) == 0 {
		return nil, fmt.Errorf("no files matched in %s", root)
	}
	return result, nil
}
