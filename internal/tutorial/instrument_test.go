package tutorial

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/futureCreator/tutorgen/internal/cost"
	"github.com/futureCreator/tutorgen/internal/flow"
	"github.com/futureCreator/tutorgen/internal/run"
)

type stubStage struct {
	flow.BaseNode
	err error
}

func (s *stubStage) Post(shared flow.Shared, prep, exec any) (flow.Action, error) {
	if s.err != nil {
		return "", s.err
	}
	shared[keyAbstractions] = []Abstraction{{Name: "Engine"}}
	return flow.DefaultAction, nil
}

func chdirTemp(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestInstrumentRecordsNodeResult(t *testing.T) {
	chdirTemp(t)
	r, err := run.New("dir", ".", "widget")
	if err != nil {
		t.Fatal(err)
	}
	tracker := &cost.Tracker{}
	tracker.Add(0.01)

	node := instrument(&stubStage{BaseNode: flow.NewBase()}, stageAbstractions, nil, tracker, r)
	if _, err := flow.Run(node, flow.Shared{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(r.Meta.Nodes) != 1 {
		t.Fatalf("got %d node results, want 1", len(r.Meta.Nodes))
	}
	nr := r.Meta.Nodes[0]
	if nr.Name != stageAbstractions || nr.Status != "completed" {
		t.Errorf("node result = %+v", nr)
	}

	// The stage product is snapshotted into the run directory.
	data, err := os.ReadFile(filepath.Join(r.Dir, "abstractions.yaml"))
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("artifact is empty")
	}
}

func TestInstrumentRecordsFailure(t *testing.T) {
	chdirTemp(t)
	r, err := run.New("dir", ".", "widget")
	if err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	node := instrument(&stubStage{BaseNode: flow.NewBase(), err: boom}, stageAbstractions, nil, nil, r)
	if _, err := flow.Run(node, flow.Shared{}); !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want boom", err)
	}

	if len(r.Meta.Nodes) != 1 || r.Meta.Nodes[0].Status != "failed" {
		t.Fatalf("node results = %+v, want one failed entry", r.Meta.Nodes)
	}
}

func TestInstrumentKeepsRetryConfig(t *testing.T) {
	inner := NewOrderChapters(nil, nil)
	node := instrument(inner, stageOrder, nil, nil, nil)
	r, ok := node.(flow.Retryable)
	if !ok {
		t.Fatal("wrapper does not expose retry config")
	}
	if r.MaxRetries() != llmRetries || r.Wait() != llmWait {
		t.Errorf("retry config = (%d, %v), want (%d, %v)", r.MaxRetries(), r.Wait(), llmRetries, llmWait)
	}
}

func TestInstrumentKeepsBatchBehavior(t *testing.T) {
	inner := NewWriteChapters(nil, nil, "english")
	node := instrument(inner, stageChapters, nil, nil, nil)
	if _, ok := node.(flow.BatchExecer); !ok {
		t.Error("batch node lost ExecItem through wrapping")
	}
	plain := instrument(NewCombineTutorial("out"), stageCombine, nil, nil, nil)
	if _, ok := plain.(flow.BatchExecer); ok {
		t.Error("plain node must not gain ExecItem through wrapping")
	}
}
