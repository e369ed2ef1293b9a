package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/futureCreator/tutorgen/internal/config"
	"github.com/futureCreator/tutorgen/internal/cost"
)

func chatServer(t *testing.T, reply string, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
			"usage": map[string]int{"prompt_tokens": 100, "completion_tokens": 50},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testConfig(endpoint string, useCache bool) *config.Config {
	return &config.Config{
		Provider: config.ProviderConfig{
			Endpoint:   endpoint,
			Model:      "anthropic/claude-haiku-4-5",
			APIKeyEnv:  "TUTORGEN_TEST_KEY",
			APITimeout: "10s",
		},
		UseCache: useCache,
	}
}

func TestCallMockServer(t *testing.T) {
	var calls int
	ts := chatServer(t, "an answer", &calls)
	defer ts.Close()
	t.Setenv("TUTORGEN_TEST_KEY", "sk-test")

	var tracker cost.Tracker
	client, err := New(testConfig(ts.URL, false), &tracker)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	got, err := client.Call(context.Background(), "a question")
	if err != nil {
		t.Fatalf("Call() error: %v", err)
	}
	if got != "an answer" {
		t.Errorf("Call() = %q, want %q", got, "an answer")
	}
	if tracker.Calls() != 1 {
		t.Errorf("tracker calls = %d, want 1", tracker.Calls())
	}
	if tracker.Total() <= 0 {
		t.Errorf("tracker total = %f, want > 0 for a priced model", tracker.Total())
	}
}

func TestCallUsesCache(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(dir)

	var calls int
	ts := chatServer(t, "cached answer", &calls)
	defer ts.Close()
	t.Setenv("TUTORGEN_TEST_KEY", "sk-test")

	client, err := New(testConfig(ts.URL, true), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := client.Call(context.Background(), "same prompt")
		if err != nil {
			t.Fatalf("Call() #%d error: %v", i+1, err)
		}
		if got != "cached answer" {
			t.Errorf("Call() #%d = %q, want %q", i+1, got, "cached answer")
		}
	}
	if calls != 1 {
		t.Errorf("HTTP requests = %d, want 1 (later calls cached)", calls)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("TUTORGEN_TEST_KEY", "")
	if _, err := New(testConfig("http://localhost", false), nil); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("0123456789abc", 10); got != "0123456789..." {
		t.Errorf("truncate long = %q", got)
	}
}
