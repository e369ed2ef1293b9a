package flow

import (
	"maps"
	"time"

	vlog "github.com/futureCreator/tutorgen/internal/log"
)

// Action is the label a node's Post phase returns; the enclosing flow uses it
// to pick the next node. An empty Action is treated as DefaultAction.
type Action string

// DefaultAction is the transition label used when Post returns no explicit
// action, and the label Then wires.
const DefaultAction Action = "default"

// Node is the unit of work. Each run executes three ordered phases:
//
//	Prep reads inputs from Shared and the node's params. It must not perform
//	the node's primary side effect; it runs once per invocation.
//	Exec performs the primary work. It is the only phase wrapped in retry
//	logic, and must not touch Shared.
//	Post writes results into Shared and returns the action used to select
//	the successor. Prep and Post errors are never retried.
//
// Embed BaseNode to pick up defaults for everything except the phases a node
// actually needs.
type Node interface {
	Prep(shared Shared) (any, error)
	Exec(prep any) (any, error)
	Post(shared Shared, prep, exec any) (Action, error)

	Params() Params
	SetParams(params Params)

	// Next wires a successor under an action label and returns the successor
	// so chains read left to right. Successors are fixed before a run begins;
	// the engine never mutates the graph mid-traversal.
	Next(action Action, next Node) Node
	Successors() map[Action]Node
}

// FallbackNode is consulted when Exec has exhausted its retry budget. The
// returned value becomes the exec result, letting a node degrade gracefully;
// returning an error aborts the run with no Post call. BaseNode's default
// returns the original error unchanged.
type FallbackNode interface {
	ExecFallback(prep any, err error) (any, error)
}

// Retryable exposes a node's retry configuration. Nodes embedding BaseNode
// get it via WithMaxRetries and WithWait.
type Retryable interface {
	MaxRetries() int
	Wait() time.Duration
}

// BaseNode supplies default phase implementations, per-node retry
// configuration, params storage, and the successor map.
type BaseNode struct {
	params     Params
	successors map[Action]Node
	maxRetries int
	wait       time.Duration
}

// Option configures a BaseNode.
type Option func(*BaseNode)

// WithMaxRetries sets how many times Exec is attempted before the fallback
// runs. Values below 1 are raised to 1.
func WithMaxRetries(n int) Option {
	return func(b *BaseNode) {
		if n < 1 {
			n = 1
		}
		b.maxRetries = n
	}
}

// WithWait sets the blocking sleep between Exec attempts.
func WithWait(d time.Duration) Option {
	return func(b *BaseNode) {
		if d < 0 {
			d = 0
		}
		b.wait = d
	}
}

// NewBase returns a BaseNode ready for embedding.
func NewBase(opts ...Option) BaseNode {
	b := BaseNode{
		params:     make(Params),
		successors: make(map[Action]Node),
		maxRetries: 1,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *BaseNode) Prep(shared Shared) (any, error) { return nil, nil }

func (b *BaseNode) Exec(prep any) (any, error) { return nil, nil }

func (b *BaseNode) Post(shared Shared, prep, exec any) (Action, error) {
	return DefaultAction, nil
}

// ExecFallback re-raises by default: retries exhausted means the run fails.
func (b *BaseNode) ExecFallback(prep any, err error) (any, error) {
	return nil, err
}

func (b *BaseNode) Params() Params { return b.params }

// SetParams replaces the node's params with a copy of the given map.
func (b *BaseNode) SetParams(params Params) {
	b.params = make(Params, len(params))
	maps.Copy(b.params, params)
}

func (b *BaseNode) MaxRetries() int     { return b.maxRetries }
func (b *BaseNode) Wait() time.Duration { return b.wait }

func (b *BaseNode) Next(action Action, next Node) Node {
	if b.successors == nil {
		b.successors = make(map[Action]Node)
	}
	if action == "" {
		action = DefaultAction
	}
	if _, exists := b.successors[action]; exists {
		vlog.Warn("overwriting successor", "action", string(action))
	}
	b.successors[action] = next
	return next
}

// Then wires next under the default label.
func (b *BaseNode) Then(next Node) Node {
	return b.Next(DefaultAction, next)
}

func (b *BaseNode) Successors() map[Action]Node { return b.successors }

// runner lets Flow and BatchFlow take over the whole lifecycle when run as a
// node of an outer flow.
type runner interface {
	run(shared Shared) (Action, error)
}

// Run executes one node's full lifecycle against shared and returns the
// action its Post produced. Node errors propagate unchanged; the engine never
// wraps or logs them. Flows passed here run their whole internal traversal
// and yield its last action.
func Run(node Node, shared Shared) (Action, error) {
	if r, ok := node.(runner); ok {
		return r.run(shared)
	}

	prep, err := node.Prep(shared)
	if err != nil {
		return "", err
	}

	var exec any
	if be, ok := node.(BatchExecer); ok {
		exec, err = runBatch(node, be, prep)
	} else {
		exec, err = runExec(node, prep)
	}
	if err != nil {
		return "", err
	}

	action, err := node.Post(shared, prep, exec)
	if err != nil {
		return "", err
	}
	if action == "" {
		action = DefaultAction
	}
	return action, nil
}

// runExec attempts Exec up to the node's retry budget, sleeping between
// attempts, then hands the last error to the fallback.
func runExec(node Node, prep any) (any, error) {
	retries, wait := retryConfig(node)

	var result any
	var err error
	for attempt := 0; attempt < retries; attempt++ {
		result, err = node.Exec(prep)
		if err == nil {
			return result, nil
		}
		if attempt < retries-1 && wait > 0 {
			time.Sleep(wait)
		}
	}

	if fb, ok := node.(FallbackNode); ok {
		return fb.ExecFallback(prep, err)
	}
	return nil, err
}

func retryConfig(node Node) (int, time.Duration) {
	if r, ok := node.(Retryable); ok {
		retries := r.MaxRetries()
		if retries < 1 {
			retries = 1
		}
		return retries, r.Wait()
	}
	return 1, 0
}
