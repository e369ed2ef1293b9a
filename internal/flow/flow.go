package flow

import (
	"errors"
	"fmt"

	vlog "github.com/futureCreator/tutorgen/internal/log"
)

// ErrMaxSteps is returned by a Flow whose traversal exceeded the limit set
// with SetMaxSteps.
var ErrMaxSteps = errors.New("flow: max traversal steps exceeded")

// errNoStart reports a flow run without a start node.
var errNoStart = errors.New("flow: no start node")

// Flow walks a graph of nodes: it runs the current node, reads the action its
// Post returned, and follows the matching successor edge until no edge
// matches. That last unmatched action is the flow's own result, so a Flow
// nested as a node of an outer flow branches the outer graph exactly like a
// primitive node would.
type Flow struct {
	BaseNode
	start    Node
	maxSteps int

	// PrepFunc and PostFunc optionally customize the flow's own lifecycle
	// when it runs as a node. PostFunc receives the traversal's last action
	// as exec; the default is to return it unchanged.
	PrepFunc func(shared Shared) (any, error)
	PostFunc func(shared Shared, prep, exec any) (Action, error)
}

// New returns a Flow starting at start.
func New(start Node) *Flow {
	return &Flow{BaseNode: NewBase(), start: start}
}

// Start sets the flow's entry node and returns it for wiring chains.
func (f *Flow) Start(n Node) Node {
	f.start = n
	return n
}

// SetMaxSteps bounds a single traversal to n node executions, guarding
// against unterminated cycles. Zero (the default) means unbounded, matching
// the graph author's responsibility to terminate cycles.
func (f *Flow) SetMaxSteps(n int) {
	f.maxSteps = n
}

// run executes the flow's node lifecycle: optional Prep, the internal
// traversal as Exec, optional Post over the last action.
func (f *Flow) run(shared Shared) (Action, error) {
	var prep any
	var err error
	if f.PrepFunc != nil {
		prep, err = f.PrepFunc(shared)
		if err != nil {
			return "", err
		}
	}

	last, err := f.orchestrate(shared, f.Params())
	if err != nil {
		return "", err
	}

	if f.PostFunc != nil {
		action, err := f.PostFunc(shared, prep, last)
		if err != nil {
			return "", err
		}
		if action == "" {
			action = DefaultAction
		}
		return action, nil
	}
	return last, nil
}

// orchestrate performs one full traversal, setting params on each node before
// it runs. It returns the last action observed, including the one that
// matched no successor and ended the traversal.
func (f *Flow) orchestrate(shared Shared, params Params) (Action, error) {
	if f.start == nil {
		return "", errNoStart
	}

	current := f.start
	last := DefaultAction
	steps := 0

	for current != nil {
		steps++
		if f.maxSteps > 0 && steps > f.maxSteps {
			return "", fmt.Errorf("%w (limit %d)", ErrMaxSteps, f.maxSteps)
		}

		current.SetParams(params)

		action, err := Run(current, shared)
		if err != nil {
			return "", err
		}
		last = action

		next, ok := current.Successors()[action]
		if !ok {
			// A dangling action on a node that has successors configured is
			// a legal halt, but usually a wiring mistake worth surfacing.
			if len(current.Successors()) > 0 {
				vlog.Warn("flow halted: no successor for action",
					"node", fmt.Sprintf("%T", current),
					"action", string(action),
					"wired", actionLabels(current.Successors()))
			}
			break
		}
		current = next
	}

	return last, nil
}

func actionLabels(successors map[Action]Node) []string {
	labels := make([]string, 0, len(successors))
	for a := range successors {
		labels = append(labels, string(a))
	}
	return labels
}

// BatchFlow re-runs an entire inner traversal once per parameter set.
// PrepBatchFunc yields the parameter sets; each is merged over the flow's own
// params (item keys win) and drives one full traversal against the same
// Shared, so later iterations observe what earlier ones wrote. One
// PostBatchFunc call covers the whole batch.
type BatchFlow struct {
	Flow

	PrepBatchFunc func(shared Shared) ([]Params, error)
	PostBatchFunc func(shared Shared, prep []Params) (Action, error)
}

// NewBatch returns a BatchFlow whose inner traversal starts at start.
func NewBatch(start Node) *BatchFlow {
	return &BatchFlow{Flow: Flow{BaseNode: NewBase(), start: start}}
}

func (bf *BatchFlow) run(shared Shared) (Action, error) {
	var sets []Params
	var err error
	if bf.PrepBatchFunc != nil {
		sets, err = bf.PrepBatchFunc(shared)
		if err != nil {
			return "", err
		}
	}

	for _, p := range sets {
		if _, err := bf.orchestrate(shared, mergeParams(bf.Params(), p)); err != nil {
			return "", err
		}
	}

	if bf.PostBatchFunc != nil {
		action, err := bf.PostBatchFunc(shared, sets)
		if err != nil {
			return "", err
		}
		if action == "" {
			action = DefaultAction
		}
		return action, nil
	}
	return DefaultAction, nil
}
