package tutorial

import (
	"context"
	"fmt"
	"strings"

	"github.com/futureCreator/tutorgen/internal/flow"
	"github.com/futureCreator/tutorgen/internal/llm"
)

// WriteChapters writes one Markdown chapter per abstraction, in chapter
// order. It fans out per chapter, and each chapter's prompt carries the
// chapters already written so the narrative stays coherent.
type WriteChapters struct {
	flow.BaseNode

	ctx      context.Context
	llm      llm.Client
	language string

	// written accumulates finished chapters across ExecItem calls within a
	// single run. Prep resets it.
	written []string
}

type chapterItem struct {
	num         int // 1-based position in the tutorial
	abstraction Abstraction
	project     string
	fileCtx     string
	chapterList string
	filename    string
}

func NewWriteChapters(ctx context.Context, client llm.Client, language string) *WriteChapters {
	return &WriteChapters{
		BaseNode: flow.NewBase(flow.WithMaxRetries(llmRetries), flow.WithWait(llmWait)),
		ctx:      ctx,
		llm:      client,
		language: language,
	}
}

func (n *WriteChapters) Prep(shared flow.Shared) (any, error) {
	order, ok := shared[keyChapterOrder].([]int)
	if !ok || len(order) == 0 {
		return nil, fmt.Errorf("no chapter order in shared state")
	}
	abstractions, ok := shared[keyAbstractions].([]Abstraction)
	if !ok {
		return nil, fmt.Errorf("no abstractions in shared state")
	}
	files, _ := shared[keyFiles].([]FileInfo)
	project := shared.GetString(keyProjectName)

	n.written = nil

	listing := chapterListing(order, abstractions)
	items := make([]chapterItem, len(order))
	for pos, idx := range order {
		a := abstractions[idx]
		items[pos] = chapterItem{
			num:         pos + 1,
			abstraction: a,
			project:     project,
			fileCtx:     fileContext(files, a.FileIndices),
			chapterList: listing,
			filename:    ChapterFilename(pos+1, a.Name),
		}
	}
	return items, nil
}

func (n *WriteChapters) ExecItem(item any) (any, error) {
	ch := item.(chapterItem)
	prompt := chapterPrompt(ch, n.written, n.language)

	response, err := n.llm.Call(n.ctx, prompt)
	if err != nil {
		return nil, err
	}

	chapter := strings.TrimSpace(response)
	heading := fmt.Sprintf("# Chapter %d: %s", ch.num, ch.abstraction.Name)
	if !strings.HasPrefix(chapter, "# Chapter") {
		chapter = heading + "\n\n" + chapter
	}
	n.written = append(n.written, chapter)
	return chapter, nil
}

func (n *WriteChapters) Post(shared flow.Shared, prep, exec any) (flow.Action, error) {
	results := exec.([]any)
	chapters := make([]string, len(results))
	for i, r := range results {
		chapters[i] = r.(string)
	}
	shared[keyChapters] = chapters
	return flow.DefaultAction, nil
}

// ChapterFilename returns the on-disk name for chapter num about name, such
// as "01_query_processing.md".
func ChapterFilename(num int, name string) string {
	return fmt.Sprintf("%02d_%s.md", num, sanitizeName(name))
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// chapterListing renders the complete table of contents with links, given to
// the model so chapters can cross-reference each other.
func chapterListing(order []int, abstractions []Abstraction) string {
	var b strings.Builder
	for pos, idx := range order {
		name := abstractions[idx].Name
		fmt.Fprintf(&b, "%d. [%s](%s)\n", pos+1, name, ChapterFilename(pos+1, name))
	}
	return b.String()
}

func chapterPrompt(ch chapterItem, written []string, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a beginner-friendly tutorial chapter (in Markdown) for the project `%s` about the concept \"%s\".\n\n", ch.project, ch.abstraction.Name)
	fmt.Fprintf(&b, "Concept description:\n%s\n\n", strings.TrimSpace(ch.abstraction.Description))
	fmt.Fprintf(&b, "Complete tutorial structure:\n%s\n", ch.chapterList)
	if len(written) > 0 {
		b.WriteString("\nChapters already written (for context, do not repeat them):\n\n")
		b.WriteString(strings.Join(written, "\n\n---\n\n"))
		b.WriteString("\n")
	}
	if ch.fileCtx != "" {
		fmt.Fprintf(&b, "\nRelevant code:\n\n%s", ch.fileCtx)
	}
	fmt.Fprintf(&b, "\nInstructions:\n")
	fmt.Fprintf(&b, "- Start with `# Chapter %d: %s`.\n", ch.num, ch.abstraction.Name)
	b.WriteString("- Begin with a motivating use case, then explain the concept step by step.\n")
	b.WriteString("- Keep code blocks short (under 10 lines each) and explain every one right after it.\n")
	b.WriteString("- Use analogies and a Mermaid sequenceDiagram where it helps.\n")
	b.WriteString("- Link to other chapters with the Markdown links from the structure above, and end with a transition to the next chapter.\n")
	if note := languageNote(language, "prose"); note != "" {
		b.WriteString("- " + note)
	}
	b.WriteString("- Output only the Markdown for this chapter, no fences around the whole output.\n")
	return b.String()
}
