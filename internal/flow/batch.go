package flow

import (
	"fmt"
	"reflect"
	"time"
)

// BatchExecer marks a node whose Exec logic applies independently to each
// element of the collection its Prep returned. The engine runs ExecItem once
// per element, in order, with the node's retry budget applied per element,
// and hands Post one ordered result slice of the same length. An empty
// collection still reaches Post with an empty slice.
type BatchExecer interface {
	ExecItem(item any) (any, error)
}

// ItemFallbackNode is the per-item counterpart of FallbackNode. Its return
// value stands in for the failed element's result; returning an error aborts
// the whole batch. Without it, an exhausted element aborts the batch.
type ItemFallbackNode interface {
	ExecItemFallback(item any, err error) (any, error)
}

func runBatch(node Node, be BatchExecer, prep any) (any, error) {
	items, err := toItems(prep)
	if err != nil {
		return nil, err
	}

	retries, wait := retryConfig(node)

	results := make([]any, len(items))
	for i, item := range items {
		res, err := execItemWithRetry(be, item, retries, wait)
		if err != nil {
			if fb, ok := node.(ItemFallbackNode); ok {
				res, err = fb.ExecItemFallback(item, err)
			}
			if err != nil {
				return nil, err
			}
		}
		results[i] = res
	}
	return results, nil
}

func execItemWithRetry(be BatchExecer, item any, retries int, wait time.Duration) (any, error) {
	var result any
	var err error
	for attempt := 0; attempt < retries; attempt++ {
		result, err = be.ExecItem(item)
		if err == nil {
			return result, nil
		}
		if attempt < retries-1 && wait > 0 {
			time.Sleep(wait)
		}
	}
	return nil, err
}

// toItems normalizes a batch Prep result into []any. nil means an empty
// batch; any slice type is accepted.
func toItems(prep any) ([]any, error) {
	if prep == nil {
		return nil, nil
	}
	if items, ok := prep.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(prep)
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("flow: batch prep returned %T, want a slice", prep)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}
