package tutorial

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/futureCreator/tutorgen/internal/cost"
	"github.com/futureCreator/tutorgen/internal/flow"
	vlog "github.com/futureCreator/tutorgen/internal/log"
	"github.com/futureCreator/tutorgen/internal/run"
)

// instrumented wraps a pipeline node with terminal progress output and run
// bookkeeping. It hooks Prep to mark the stage started and Post to record
// duration and the LLM spend delta; the wrapped node's own phases are
// untouched. Failures surface through whichever phase produced them.
type instrumented struct {
	flow.Node

	name      string
	display   *Display
	tracker   *cost.Tracker
	run       *run.Run
	startedAt time.Time
	startCost float64
}

// instrument wraps node for the pipeline. display, tracker, and r may each be
// nil, in which case the corresponding reporting is skipped.
func instrument(node flow.Node, name string, display *Display, tracker *cost.Tracker, r *run.Run) flow.Node {
	w := &instrumented{Node: node, name: name, display: display, tracker: tracker, run: r}
	if be, ok := node.(flow.BatchExecer); ok {
		return &instrumentedBatch{instrumented: w, items: be}
	}
	return w
}

func (w *instrumented) Prep(shared flow.Shared) (any, error) {
	w.startedAt = time.Now()
	if w.tracker != nil {
		w.startCost = w.tracker.Total()
	}
	if w.display != nil {
		w.display.StageStart(w.name)
	}
	prep, err := w.Node.Prep(shared)
	if err != nil {
		w.failed(err)
	}
	return prep, err
}

func (w *instrumented) Post(shared flow.Shared, prep, exec any) (flow.Action, error) {
	action, err := w.Node.Post(shared, prep, exec)
	if err != nil {
		w.failed(err)
		return action, err
	}
	w.done(shared)
	return action, nil
}

// ExecFallback forwards to the wrapped node's fallback so exhausted retries
// are reported before the error propagates.
func (w *instrumented) ExecFallback(prep any, err error) (any, error) {
	if fb, ok := w.Node.(flow.FallbackNode); ok {
		out, ferr := fb.ExecFallback(prep, err)
		if ferr != nil {
			w.failed(ferr)
		}
		return out, ferr
	}
	w.failed(err)
	return nil, err
}

// MaxRetries and Wait re-expose the wrapped node's retry configuration, which
// interface embedding does not carry through.
func (w *instrumented) MaxRetries() int {
	if r, ok := w.Node.(flow.Retryable); ok {
		return r.MaxRetries()
	}
	return 1
}

func (w *instrumented) Wait() time.Duration {
	if r, ok := w.Node.(flow.Retryable); ok {
		return r.Wait()
	}
	return 0
}

func (w *instrumented) spent() float64 {
	if w.tracker == nil {
		return 0
	}
	return w.tracker.Total() - w.startCost
}

func (w *instrumented) done(shared flow.Shared) {
	elapsed := time.Since(w.startedAt)
	spent := w.spent()
	if w.display != nil {
		w.display.StageDone(w.name, stageDetail(w.name, shared), spent, elapsed)
	}
	if w.run != nil {
		w.run.AddNodeResult(run.NodeResult{
			Name:       w.name,
			Status:     "completed",
			Cost:       spent,
			DurationMS: elapsed.Milliseconds(),
		})
		if file, content := stageArtifact(w.name, shared); file != "" {
			if err := w.run.WriteFile(file, content); err != nil {
				vlog.Warn("could not write run artifact", "file", file, "err", err)
			}
		}
	}
}

// stageArtifact snapshots a stage's product into the run directory so failed
// or surprising generations can be inspected without rerunning the model.
func stageArtifact(name string, shared flow.Shared) (file, content string) {
	var v any
	switch name {
	case stageAbstractions:
		file, v = "abstractions.yaml", shared[keyAbstractions]
	case stageRelationships:
		file, v = "relationships.yaml", shared[keyRelationships]
	case stageOrder:
		file, v = "chapter_order.yaml", shared[keyChapterOrder]
	default:
		return "", ""
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", ""
	}
	return file, string(data)
}

func (w *instrumented) failed(err error) {
	elapsed := time.Since(w.startedAt)
	if w.display != nil {
		w.display.StageFailed(w.name, err)
	}
	if w.run != nil {
		w.run.AddNodeResult(run.NodeResult{
			Name:       w.name,
			Status:     "failed",
			Cost:       w.spent(),
			DurationMS: elapsed.Milliseconds(),
			Error:      err.Error(),
		})
	}
}

// instrumentedBatch additionally forwards the per-item hooks, which the
// plain wrapper must not claim to implement.
type instrumentedBatch struct {
	*instrumented
	items flow.BatchExecer
}

func (w *instrumentedBatch) ExecItem(item any) (any, error) {
	return w.items.ExecItem(item)
}

func (w *instrumentedBatch) ExecItemFallback(item any, err error) (any, error) {
	if fb, ok := w.items.(flow.ItemFallbackNode); ok {
		out, ferr := fb.ExecItemFallback(item, err)
		if ferr != nil {
			w.failed(ferr)
		}
		return out, ferr
	}
	w.failed(err)
	return nil, err
}

// stageDetail summarizes what a stage produced for the completion line.
func stageDetail(name string, shared flow.Shared) string {
	switch name {
	case stageFetch:
		if files, ok := shared[keyFiles].([]FileInfo); ok {
			return pluralize(len(files), "file")
		}
	case stageAbstractions:
		if abs, ok := shared[keyAbstractions].([]Abstraction); ok {
			return pluralize(len(abs), "abstraction")
		}
	case stageRelationships:
		if rel, ok := shared[keyRelationships].(RelationshipSet); ok {
			return pluralize(len(rel.Details), "relationship")
		}
	case stageOrder:
		if order, ok := shared[keyChapterOrder].([]int); ok {
			return pluralize(len(order), "chapter")
		}
	case stageChapters:
		if chapters, ok := shared[keyChapters].([]string); ok {
			return pluralize(len(chapters), "chapter")
		}
	case stageCombine:
		if dir, ok := shared[KeyOutputDir].(string); ok {
			return dir
		}
	}
	return ""
}
