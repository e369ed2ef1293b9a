package tutorial

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/futureCreator/tutorgen/internal/flow"
	"github.com/futureCreator/tutorgen/internal/llm"
)

// llmRetries and llmWait are the retry budget shared by every stage that
// calls the model. Parsing failures count as attempts, so a model that
// answers with malformed YAML gets asked again.
const (
	llmRetries = 5
	llmWait    = 10 * time.Second
)

// IdentifyAbstractions asks the model for the core concepts of the codebase.
type IdentifyAbstractions struct {
	flow.BaseNode

	ctx      context.Context
	llm      llm.Client
	maxCount int
	language string
}

type abstractionsPrep struct {
	project string
	files   []FileInfo
}

func NewIdentifyAbstractions(ctx context.Context, client llm.Client, maxCount int, language string) *IdentifyAbstractions {
	return &IdentifyAbstractions{
		BaseNode: flow.NewBase(flow.WithMaxRetries(llmRetries), flow.WithWait(llmWait)),
		ctx:      ctx,
		llm:      client,
		maxCount: maxCount,
		language: language,
	}
}

func (n *IdentifyAbstractions) Prep(shared flow.Shared) (any, error) {
	files, ok := shared[keyFiles].([]FileInfo)
	if !ok || len(files) == 0 {
		return nil, fmt.Errorf("no files in shared state")
	}
	return abstractionsPrep{project: shared.GetString(keyProjectName), files: files}, nil
}

func (n *IdentifyAbstractions) Exec(prep any) (any, error) {
	p := prep.(abstractionsPrep)
	prompt := abstractionsPrompt(p.project, p.files, n.maxCount, n.language)

	response, err := n.llm.Call(n.ctx, prompt)
	if err != nil {
		return nil, err
	}

	var abstractions []Abstraction
	if err := decodeYAML(response, &abstractions); err != nil {
		return nil, err
	}
	if len(abstractions) == 0 {
		return nil, fmt.Errorf("model identified no abstractions")
	}
	for i, a := range abstractions {
		if strings.TrimSpace(a.Name) == "" {
			return nil, fmt.Errorf("abstraction %d has no name", i)
		}
		if err := validateIndices(a.FileIndices, len(p.files), "file"); err != nil {
			return nil, err
		}
	}
	return abstractions, nil
}

func (n *IdentifyAbstractions) Post(shared flow.Shared, prep, exec any) (flow.Action, error) {
	shared[keyAbstractions] = exec.([]Abstraction)
	return flow.DefaultAction, nil
}

func abstractionsPrompt(project string, files []FileInfo, maxCount int, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "For the project `%s`, here is the codebase context:\n\n", project)
	b.WriteString(fileContext(files, nil))
	fmt.Fprintf(&b, "\nAnalyze the codebase and identify the top %d core abstractions a newcomer must understand.\n\n", maxCount)
	b.WriteString("For each abstraction, provide:\n")
	b.WriteString("1. A concise `name`.\n")
	b.WriteString("2. A beginner-friendly `description` of about 100 words, using a simple analogy.\n")
	b.WriteString("3. A list of relevant `file_indices` in the format shown below.\n\n")
	if note := languageNote(language, "`name` and `description`"); note != "" {
		b.WriteString(note)
	}
	b.WriteString("Format the output as a YAML list:\n\n")
	b.WriteString("```yaml\n")
	b.WriteString("- name: Query Processing\n")
	b.WriteString("  description: |\n")
	b.WriteString("    Explains what the abstraction does. It is like a central dispatcher routing requests.\n")
	b.WriteString("  file_indices: [0, 3]\n")
	b.WriteString("- name: Query Optimization\n")
	b.WriteString("  description: |\n")
	b.WriteString("    Another core concept, explained simply.\n")
	b.WriteString("  file_indices: [5]\n")
	b.WriteString("```\n")
	return b.String()
}

// fileContext renders files as index-tagged blocks so the model can reference
// them by number. A nil indices slice means all files.
func fileContext(files []FileInfo, indices []int) string {
	var b strings.Builder
	if indices == nil {
		for i, f := range files {
			fmt.Fprintf(&b, "--- File %d: %s ---\n%s\n\n", i, f.Path, f.Content)
		}
		return b.String()
	}
	for _, i := range indices {
		fmt.Fprintf(&b, "--- File %d: %s ---\n%s\n\n", i, files[i].Path, files[i].Content)
	}
	return b.String()
}

// languageNote returns the prompt paragraph requesting non-English output
// for the named fields, or "" for English.
func languageNote(language, fields string) string {
	if language == "" || strings.EqualFold(language, "english") {
		return ""
	}
	return fmt.Sprintf("IMPORTANT: Write the %s fields in %s. Keep code, file paths, and YAML keys in English.\n\n",
		fields, titleCase(language))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
