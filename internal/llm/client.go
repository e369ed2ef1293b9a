// Package llm provides the chat-completion client the tutorial nodes prompt
// through, with response caching and per-call cost accounting.
package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/futureCreator/tutorgen/internal/config"
	"github.com/futureCreator/tutorgen/internal/cost"
	vlog "github.com/futureCreator/tutorgen/internal/log"
)

// Client is the surface tutorial nodes prompt through.
type Client interface {
	Call(ctx context.Context, prompt string) (string, error)
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	api     *openai.Client
	model   string
	cache   *Cache // nil disables caching
	tracker *cost.Tracker
	timeout time.Duration
}

// New builds a client from config. The tracker may be nil when cost
// accounting is not wanted.
func New(cfg *config.Config, tracker *cost.Tracker) (*OpenAIClient, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, fmt.Errorf("provider API key not set (expected in $%s)", cfg.Provider.APIKeyEnv)
	}

	apiCfg := openai.DefaultConfig(key)
	apiCfg.BaseURL = cfg.Provider.Endpoint

	timeout := 300 * time.Second
	if cfg.Provider.APITimeout != "" {
		d, err := time.ParseDuration(cfg.Provider.APITimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing provider.api_timeout: %w", err)
		}
		timeout = d
	}

	c := &OpenAIClient{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   cfg.Provider.Model,
		tracker: tracker,
		timeout: timeout,
	}
	if cfg.UseCache {
		c.cache = OpenCache("llm_cache.json")
	}
	return c, nil
}

// Call sends one user prompt and returns the completion text. Identical
// prompts are served from the cache when enabled.
func (c *OpenAIClient) Call(ctx context.Context, prompt string) (string, error) {
	vlog.Debug("llm prompt", "model", c.model, "prompt", truncate(prompt, 200))

	if c.cache != nil {
		if resp, ok := c.cache.Get(prompt); ok {
			vlog.Info("llm cache hit", "model", c.model)
			return resp, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm call: empty choices in response")
	}
	output := resp.Choices[0].Message.Content

	callCost := cost.FromUsage(c.model, cost.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	})
	if c.tracker != nil {
		c.tracker.Add(callCost)
	}
	vlog.Info("llm response",
		"model", c.model,
		"tokens_in", resp.Usage.PromptTokens,
		"tokens_out", resp.Usage.CompletionTokens,
		"cost_usd", fmt.Sprintf("%.6f", callCost))
	vlog.Debug("llm response body", "response", truncate(output, 200))

	if c.cache != nil {
		c.cache.Put(prompt, output)
	}
	return output, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
