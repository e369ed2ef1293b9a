package tutorial

import (
	"context"
	"fmt"
	"strings"

	"github.com/futureCreator/tutorgen/internal/flow"
	"github.com/futureCreator/tutorgen/internal/llm"
)

// AnalyzeRelationships asks the model for a project summary and a labeled
// graph of how the identified abstractions interact.
type AnalyzeRelationships struct {
	flow.BaseNode

	ctx      context.Context
	llm      llm.Client
	language string
}

type relationshipsPrep struct {
	project      string
	files        []FileInfo
	abstractions []Abstraction
}

func NewAnalyzeRelationships(ctx context.Context, client llm.Client, language string) *AnalyzeRelationships {
	return &AnalyzeRelationships{
		BaseNode: flow.NewBase(flow.WithMaxRetries(llmRetries), flow.WithWait(llmWait)),
		ctx:      ctx,
		llm:      client,
		language: language,
	}
}

func (n *AnalyzeRelationships) Prep(shared flow.Shared) (any, error) {
	abstractions, ok := shared[keyAbstractions].([]Abstraction)
	if !ok || len(abstractions) == 0 {
		return nil, fmt.Errorf("no abstractions in shared state")
	}
	files, _ := shared[keyFiles].([]FileInfo)
	return relationshipsPrep{
		project:      shared.GetString(keyProjectName),
		files:        files,
		abstractions: abstractions,
	}, nil
}

func (n *AnalyzeRelationships) Exec(prep any) (any, error) {
	p := prep.(relationshipsPrep)
	prompt := relationshipsPrompt(p, n.language)

	response, err := n.llm.Call(n.ctx, prompt)
	if err != nil {
		return nil, err
	}

	var rel RelationshipSet
	if err := decodeYAML(response, &rel); err != nil {
		return nil, err
	}
	if strings.TrimSpace(rel.Summary) == "" {
		return nil, fmt.Errorf("relationship response has no summary")
	}

	count := len(p.abstractions)
	involved := make([]bool, count)
	for i, r := range rel.Details {
		if r.From < 0 || r.From >= count || r.To < 0 || r.To >= count {
			return nil, fmt.Errorf("relationship %d references abstraction out of range", i)
		}
		if strings.TrimSpace(r.Label) == "" {
			return nil, fmt.Errorf("relationship %d has no label", i)
		}
		involved[r.From] = true
		involved[r.To] = true
	}
	for i, ok := range involved {
		if !ok {
			return nil, fmt.Errorf("abstraction %d (%s) appears in no relationship", i, p.abstractions[i].Name)
		}
	}
	return rel, nil
}

func (n *AnalyzeRelationships) Post(shared flow.Shared, prep, exec any) (flow.Action, error) {
	shared[keyRelationships] = exec.(RelationshipSet)
	return flow.DefaultAction, nil
}

func relationshipsPrompt(p relationshipsPrep, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are the core abstractions of the project `%s`:\n\n", p.project)
	for i, a := range p.abstractions {
		fmt.Fprintf(&b, "%d. %s\n%s\n\n", i, a.Name, strings.TrimSpace(a.Description))
	}
	b.WriteString("Relevant code snippets:\n\n")
	b.WriteString(fileContext(p.files, abstractionFileIndices(p.abstractions)))
	b.WriteString("\nProvide:\n")
	b.WriteString("1. A high-level `summary` of the project in a few beginner-friendly sentences. Use markdown **bold** for important concepts.\n")
	b.WriteString("2. A list of `relationships` describing key interactions. Every abstraction must appear in at least one relationship. Each relationship has `from_abstraction`, `to_abstraction` (indices from the list above) and a short verb-phrase `label` such as \"Manages\" or \"Provides config to\".\n\n")
	if note := languageNote(language, "`summary` and `label`"); note != "" {
		b.WriteString(note)
	}
	b.WriteString("Format the output as YAML:\n\n")
	b.WriteString("```yaml\n")
	b.WriteString("summary: |\n")
	b.WriteString("  A short explanation of the project.\n")
	b.WriteString("relationships:\n")
	b.WriteString("  - from_abstraction: 0\n")
	b.WriteString("    to_abstraction: 1\n")
	b.WriteString("    label: \"Manages\"\n")
	b.WriteString("  - from_abstraction: 2\n")
	b.WriteString("    to_abstraction: 0\n")
	b.WriteString("    label: \"Provides config to\"\n")
	b.WriteString("```\n")
	return b.String()
}

// abstractionFileIndices collects the deduplicated, ordered union of file
// indices the abstractions reference.
func abstractionFileIndices(abstractions []Abstraction) []int {
	seen := make(map[int]bool)
	indices := make([]int, 0)
	for _, a := range abstractions {
		for _, idx := range a.FileIndices {
			if !seen[idx] {
				seen[idx] = true
				indices = append(indices, idx)
			}
		}
	}
	return indices
}
