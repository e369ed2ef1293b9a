package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/futureCreator/tutorgen/internal/config"
	"github.com/futureCreator/tutorgen/internal/cost"
	"github.com/futureCreator/tutorgen/internal/crawler"
	"github.com/futureCreator/tutorgen/internal/flow"
	"github.com/futureCreator/tutorgen/internal/llm"
	vlog "github.com/futureCreator/tutorgen/internal/log"
	"github.com/futureCreator/tutorgen/internal/run"
	"github.com/futureCreator/tutorgen/internal/tutorial"
)

var (
	genRepo            string
	genDir             string
	genRef             string
	genInclude         []string
	genExclude         []string
	genMaxSize         string
	genMaxAbstractions int
	genLanguage        string
	genOutput          string
	genNoCache         bool
	genVerbose         bool
)

var generateCmd = &cobra.Command{
	Use:          "generate",
	Short:        "Generate a tutorial from a repository or directory",
	SilenceUsage: true,
	RunE:         runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genRepo, "repo", "", "GitHub repository URL or owner/repo")
	f.StringVar(&genDir, "dir", "", "Local directory to crawl")
	f.StringVar(&genRef, "ref", "", "Git ref to fetch (default branch if empty)")
	f.StringSliceVarP(&genInclude, "include", "i", nil, "File patterns to include")
	f.StringSliceVarP(&genExclude, "exclude", "e", nil, "File patterns to exclude")
	f.StringVar(&genMaxSize, "max-size", "", "Maximum file size, e.g. 100KB")
	f.IntVar(&genMaxAbstractions, "max-abstractions", 0, "Maximum number of abstractions to identify")
	f.StringVar(&genLanguage, "language", "", "Tutorial language")
	f.StringVarP(&genOutput, "output", "o", "", "Output directory")
	f.BoolVar(&genNoCache, "no-cache", false, "Disable the LLM response cache")
	f.BoolVarP(&genVerbose, "verbose", "v", false, "Verbose progress output")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if (genRepo == "") == (genDir == "") {
		return fmt.Errorf("exactly one of --repo or --dir is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var logWriter io.Writer
	if logFile := openLogFile(); logFile != nil {
		defer logFile.Close()
		logWriter = logFile
	}
	vlog.Init(cfg.LogLevel, logWriter)

	tracker := &cost.Tracker{}
	client, err := llm.New(cfg, tracker)
	if err != nil {
		return err
	}

	var github *crawler.GitHub
	sourceKind, sourceRef := "dir", genDir
	if genRepo != "" {
		github = crawler.NewGitHub(os.Getenv("GITHUB_TOKEN"))
		sourceKind, sourceRef = "repo", genRepo
	}

	r, err := run.New(sourceKind, sourceRef, projectSlug())
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}

	disp := tutorial.NewDisplay(sourceRef, genVerbose)
	disp.Header()

	pipeline := tutorial.Build(cmd.Context(), tutorial.Options{
		Config:   cfg,
		LLM:      client,
		GitHub:   github,
		Display:  disp,
		Tracker:  tracker,
		Run:      r,
		RepoURL:  genRepo,
		LocalDir: genDir,
		Ref:      genRef,
	})

	started := time.Now()
	shared := flow.Shared{}
	if _, err := flow.Run(pipeline, shared); err != nil {
		disp.Failed(err)
		if failErr := r.Fail(err.Error()); failErr != nil {
			vlog.Warn("could not record failure", "err", failErr)
		}
		return err
	}

	if err := r.Complete(); err != nil {
		vlog.Warn("could not record completion", "err", err)
	}
	disp.Summary(shared.GetString(tutorial.KeyOutputDir), tracker.Total(), time.Since(started))
	return nil
}

// applyFlags overlays non-empty command line flags on the loaded config.
func applyFlags(cfg *config.Config) {
	if len(genInclude) > 0 {
		cfg.Crawl.IncludePatterns = genInclude
	}
	if len(genExclude) > 0 {
		cfg.Crawl.ExcludePatterns = genExclude
	}
	if genMaxSize != "" {
		cfg.Crawl.MaxFileSize = genMaxSize
	}
	if genMaxAbstractions > 0 {
		cfg.MaxAbstractions = genMaxAbstractions
	}
	if genLanguage != "" {
		cfg.Language = genLanguage
	}
	if genOutput != "" {
		cfg.OutputDir = genOutput
	}
	if genNoCache {
		cfg.UseCache = false
	}
	if genVerbose && cfg.LogLevel != "debug" {
		cfg.LogLevel = "debug"
	}
}

// projectSlug names the run directory after the source.
func projectSlug() string {
	if genRepo != "" {
		if _, repo, err := crawler.ParseRepoURL(genRepo); err == nil {
			return repo
		}
		return genRepo
	}
	return genDir
}

func openLogFile() *os.File {
	dir := ".tutorgen"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil
	}
	f, err := os.OpenFile(dir+"/tutorgen.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil
	}
	return f
}
