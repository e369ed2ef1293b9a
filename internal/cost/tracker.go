// Package cost estimates LLM spend from token usage and accumulates a
// per-session running total.
package cost

import "sync"

// Usage holds token counts from an API response.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// ModelPricing holds per-token pricing for a model (in USD per token).
type ModelPricing struct {
	InputPerToken  float64
	OutputPerToken float64
}

// defaultPricing provides fallback pricing for common models.
var defaultPricing = map[string]ModelPricing{
	"google/gemini-2.5-pro":       {InputPerToken: 1.25 / 1_000_000, OutputPerToken: 10.0 / 1_000_000},
	"google/gemini-2.5-flash":     {InputPerToken: 0.30 / 1_000_000, OutputPerToken: 2.50 / 1_000_000},
	"anthropic/claude-sonnet-4-6": {InputPerToken: 3.0 / 1_000_000, OutputPerToken: 15.0 / 1_000_000},
	"anthropic/claude-haiku-4-5":  {InputPerToken: 0.80 / 1_000_000, OutputPerToken: 4.0 / 1_000_000},
	"openai/gpt-4o":               {InputPerToken: 2.5 / 1_000_000, OutputPerToken: 10.0 / 1_000_000},
}

// FromUsage calculates cost from token usage and model pricing. Unknown
// models cost zero; callers treat that as "could not determine".
func FromUsage(model string, usage Usage) float64 {
	pricing, ok := defaultPricing[model]
	if !ok {
		return 0
	}
	return float64(usage.PromptTokens)*pricing.InputPerToken +
		float64(usage.CompletionTokens)*pricing.OutputPerToken
}

// Tracker accumulates spend across all LLM calls of a run.
type Tracker struct {
	mu    sync.Mutex
	total float64
	calls int
}

// Add records one call's cost.
func (t *Tracker) Add(cost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total += cost
	t.calls++
}

// Total returns the accumulated cost.
func (t *Tracker) Total() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Calls returns how many calls were recorded.
func (t *Tracker) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
