package tutorial

import (
	"context"

	"github.com/futureCreator/tutorgen/internal/config"
	"github.com/futureCreator/tutorgen/internal/cost"
	"github.com/futureCreator/tutorgen/internal/crawler"
	"github.com/futureCreator/tutorgen/internal/flow"
	"github.com/futureCreator/tutorgen/internal/llm"
	"github.com/futureCreator/tutorgen/internal/run"
)

// Options carries everything the pipeline stages need. Display, Tracker, and
// Run may be nil; GitHub is only needed when RepoURL is set.
type Options struct {
	Config  *config.Config
	LLM     llm.Client
	GitHub  *crawler.GitHub
	Display *Display
	Tracker *cost.Tracker
	Run     *run.Run

	RepoURL  string
	LocalDir string
	Ref      string
}

// Build wires the six pipeline stages into a flow: fetch the source, identify
// abstractions, analyze their relationships, order the chapters, write them,
// and combine everything into the output directory.
func Build(ctx context.Context, o Options) *flow.Flow {
	cfg := o.Config

	fetch := instrument(
		NewFetchRepo(ctx, cfg, o.GitHub, o.RepoURL, o.LocalDir, o.Ref),
		stageFetch, o.Display, o.Tracker, o.Run)
	abstractions := instrument(
		NewIdentifyAbstractions(ctx, o.LLM, cfg.MaxAbstractions, cfg.Language),
		stageAbstractions, o.Display, o.Tracker, o.Run)
	relationships := instrument(
		NewAnalyzeRelationships(ctx, o.LLM, cfg.Language),
		stageRelationships, o.Display, o.Tracker, o.Run)
	order := instrument(
		NewOrderChapters(ctx, o.LLM),
		stageOrder, o.Display, o.Tracker, o.Run)
	chapters := instrument(
		NewWriteChapters(ctx, o.LLM, cfg.Language),
		stageChapters, o.Display, o.Tracker, o.Run)
	combine := instrument(
		NewCombineTutorial(cfg.OutputDir),
		stageCombine, o.Display, o.Tracker, o.Run)

	fetch.
		Next(flow.DefaultAction, abstractions).
		Next(flow.DefaultAction, relationships).
		Next(flow.DefaultAction, order).
		Next(flow.DefaultAction, chapters).
		Next(flow.DefaultAction, combine)

	return flow.New(fetch)
}
