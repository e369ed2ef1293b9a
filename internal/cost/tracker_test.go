package cost

import "testing"

func TestFromUsage(t *testing.T) {
	tests := []struct {
		name  string
		model string
		usage Usage
		want  float64
	}{
		{
			name:  "known model",
			model: "anthropic/claude-haiku-4-5",
			usage: Usage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000},
			want:  4.80,
		},
		{
			name:  "unknown model costs zero",
			model: "some/unknown-model",
			usage: Usage{PromptTokens: 500, CompletionTokens: 500},
			want:  0,
		},
		{
			name:  "zero usage",
			model: "google/gemini-2.5-pro",
			usage: Usage{},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromUsage(tt.model, tt.usage)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("FromUsage() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestTracker(t *testing.T) {
	var tr Tracker
	tr.Add(0.02)
	tr.Add(0.03)

	if got := tr.Total(); got < 0.049 || got > 0.051 {
		t.Errorf("Total() = %f, want 0.05", got)
	}
	if got := tr.Calls(); got != 2 {
		t.Errorf("Calls() = %d, want 2", got)
	}
}
