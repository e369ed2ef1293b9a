package tutorial

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/futureCreator/tutorgen/internal/flow"
	vlog "github.com/futureCreator/tutorgen/internal/log"
)

// CombineTutorial assembles the index page with a Mermaid diagram of the
// abstraction graph and writes it plus every chapter into the output
// directory.
type CombineTutorial struct {
	flow.BaseNode

	outputBase string
}

type combinePrep struct {
	project       string
	abstractions  []Abstraction
	relationships RelationshipSet
	order         []int
	chapters      []string
}

func NewCombineTutorial(outputBase string) *CombineTutorial {
	return &CombineTutorial{BaseNode: flow.NewBase(), outputBase: outputBase}
}

func (n *CombineTutorial) Prep(shared flow.Shared) (any, error) {
	chapters, ok := shared[keyChapters].([]string)
	if !ok || len(chapters) == 0 {
		return nil, fmt.Errorf("no chapters in shared state")
	}
	order, ok := shared[keyChapterOrder].([]int)
	if !ok || len(order) != len(chapters) {
		return nil, fmt.Errorf("chapter order and chapters disagree")
	}
	abstractions, _ := shared[keyAbstractions].([]Abstraction)
	rel, _ := shared[keyRelationships].(RelationshipSet)
	return combinePrep{
		project:       shared.GetString(keyProjectName),
		abstractions:  abstractions,
		relationships: rel,
		order:         order,
		chapters:      chapters,
	}, nil
}

func (n *CombineTutorial) Exec(prep any) (any, error) {
	p := prep.(combinePrep)
	dir := filepath.Join(n.outputBase, sanitizeName(p.project))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	index := indexPage(p)
	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte(index), 0o644); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}
	for pos, chapter := range p.chapters {
		name := ChapterFilename(pos+1, p.abstractions[p.order[pos]].Name)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(chapter+"\n"), 0o644); err != nil {
			return nil, fmt.Errorf("write chapter %d: %w", pos+1, err)
		}
	}
	vlog.Info("tutorial written", "dir", dir, "chapters", len(p.chapters))
	return dir, nil
}

func (n *CombineTutorial) Post(shared flow.Shared, prep, exec any) (flow.Action, error) {
	shared[KeyOutputDir] = exec.(string)
	return flow.DefaultAction, nil
}

func indexPage(p combinePrep) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tutorial: %s\n\n", p.project)
	if s := strings.TrimSpace(p.relationships.Summary); s != "" {
		b.WriteString(s)
		b.WriteString("\n\n")
	}
	if len(p.relationships.Details) > 0 {
		b.WriteString("```mermaid\nflowchart TD\n")
		for i, a := range p.abstractions {
			fmt.Fprintf(&b, "    A%d[\"%s\"]\n", i, mermaidLabel(a.Name))
		}
		for _, r := range p.relationships.Details {
			fmt.Fprintf(&b, "    A%d -- \"%s\" --> A%d\n", r.From, mermaidLabel(r.Label), r.To)
		}
		b.WriteString("```\n\n")
	}
	b.WriteString("## Chapters\n\n")
	b.WriteString(chapterListing(p.order, p.abstractions))
	return b.String()
}

// mermaidLabel strips characters that break quoted Mermaid labels.
func mermaidLabel(s string) string {
	return strings.NewReplacer("\"", "", "\n", " ").Replace(s)
}
