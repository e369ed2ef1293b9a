// Package flow is a minimal directed-graph workflow runner. A graph is built
// from nodes that implement a three-phase contract (Prep, Exec, Post) and are
// wired together with action-labeled transitions. A Flow walks the graph,
// threading a single Shared store through every node; a Flow is itself a Node,
// so whole sub-flows nest as one step of an outer flow.
package flow

import "maps"

// Shared is the mutable store threaded by reference through every node in a
// run. It is the only channel nodes use to communicate: Prep reads from it,
// Post writes to it. The caller constructs it once, keeps ownership, and
// inspects it after the run returns (or fails, for partial results).
type Shared map[string]any

// GetString returns the value under key if it is a string, or "".
func (s Shared) GetString(key string) string {
	v, _ := s[key].(string)
	return v
}

// GetInt returns the value under key if it is an int, or 0.
func (s Shared) GetInt(key string) int {
	v, _ := s[key].(int)
	return v
}

// GetBool returns the value under key if it is a bool, or false.
func (s Shared) GetBool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Params configures a single run of a node, distinct from Shared: params say
// how a node should act, Shared records what it produced. A Flow sets the
// current node's params before each run; nodes read them during Prep/Exec and
// never write results through them.
type Params map[string]any

// mergeParams returns a new map with override entries layered on top of base.
// Either argument may be nil.
func mergeParams(base, override Params) Params {
	merged := make(Params, len(base)+len(override))
	maps.Copy(merged, base)
	maps.Copy(merged, override)
	return merged
}
