package tutorial

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/futureCreator/tutorgen/internal/config"
	"github.com/futureCreator/tutorgen/internal/crawler"
	"github.com/futureCreator/tutorgen/internal/flow"
	vlog "github.com/futureCreator/tutorgen/internal/log"
)

// FetchRepo crawls the source, either a GitHub repository or a local
// directory, and seeds shared state with the indexed file list and the
// project name.
type FetchRepo struct {
	flow.BaseNode

	ctx      context.Context
	cfg      *config.Config
	github   *crawler.GitHub
	repoURL  string
	localDir string
	ref      string
}

type fetchResult struct {
	project string
	files   []FileInfo
	skipped int
}

// NewFetchRepo builds the fetch stage. Exactly one of repoURL and localDir
// should be set; github may be nil when crawling locally.
func NewFetchRepo(ctx context.Context, cfg *config.Config, github *crawler.GitHub, repoURL, localDir, ref string) *FetchRepo {
	return &FetchRepo{
		BaseNode: flow.NewBase(),
		ctx:      ctx,
		cfg:      cfg,
		github:   github,
		repoURL:  repoURL,
		localDir: localDir,
		ref:      ref,
	}
}

func (n *FetchRepo) Exec(prep any) (any, error) {
	opts := crawler.Options{
		IncludePatterns: n.cfg.Crawl.IncludePatterns,
		ExcludePatterns: n.cfg.Crawl.ExcludePatterns,
		MaxFiles:        n.cfg.Crawl.MaxFiles,
	}
	size, err := crawler.ParseSize(n.cfg.Crawl.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("max file size: %w", err)
	}
	opts.MaxFileSize = size

	var res *crawler.Result
	var project string
	switch {
	case n.repoURL != "":
		owner, repo, err := crawler.ParseRepoURL(n.repoURL)
		if err != nil {
			return nil, err
		}
		res, err = n.github.Fetch(n.ctx, owner, repo, n.ref, opts)
		if err != nil {
			return nil, err
		}
		project = repo
	case n.localDir != "":
		res, err = crawler.CrawlLocal(n.localDir, opts)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(n.localDir)
		if err != nil {
			return nil, err
		}
		project = filepath.Base(abs)
	default:
		return nil, fmt.Errorf("no repository or directory to fetch")
	}

	// Sort by path so file indices are stable between runs.
	files := make([]FileInfo, 0, len(res.Files))
	for path, content := range res.Files {
		files = append(files, FileInfo{Path: path, Content: content})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return fetchResult{project: project, files: files, skipped: res.Skipped}, nil
}

func (n *FetchRepo) Post(shared flow.Shared, prep, exec any) (flow.Action, error) {
	res := exec.(fetchResult)
	shared[keyFiles] = res.files
	shared[keyProjectName] = res.project
	vlog.Info("fetched source", "project", res.project, "files", len(res.files), "skipped", res.skipped)
	return flow.DefaultAction, nil
}
