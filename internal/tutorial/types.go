// Package tutorial implements the generation pipeline: crawl a repository,
// ask an LLM to name its core abstractions and their relationships, order
// them into chapters, write each chapter, and combine everything into a
// Markdown tutorial. Each stage is a flow.Node; Build wires them together.
package tutorial

import "fmt"

// Stage names shown in progress output and recorded in run metadata.
const (
	stageFetch         = "fetch"
	stageAbstractions  = "abstractions"
	stageRelationships = "relationships"
	stageOrder         = "order chapters"
	stageChapters      = "write chapters"
	stageCombine       = "combine"
)

// Shared state keys used between pipeline nodes. KeyOutputDir is exported so
// callers can read where the finished tutorial landed.
const (
	keyFiles         = "files"
	keyProjectName   = "project_name"
	keyAbstractions  = "abstractions"
	keyRelationships = "relationships"
	keyChapterOrder  = "chapter_order"
	keyChapters      = "chapters"
	KeyOutputDir     = "final_output_dir"
)

// FileInfo is one crawled source file. Files are index-addressable so LLM
// responses can reference them compactly.
type FileInfo struct {
	Path    string
	Content string
}

// Abstraction is one core concept the LLM identified in the codebase.
type Abstraction struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	FileIndices []int  `yaml:"file_indices"`
}

// Relationship is a labeled edge between two abstractions.
type Relationship struct {
	From  int    `yaml:"from_abstraction"`
	To    int    `yaml:"to_abstraction"`
	Label string `yaml:"label"`
}

// RelationshipSet is the project summary plus the abstraction graph.
type RelationshipSet struct {
	Summary string         `yaml:"summary"`
	Details []Relationship `yaml:"relationships"`
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// validateIndices checks that every index addresses the range [0, n).
func validateIndices(indices []int, n int, what string) error {
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return fmt.Errorf("%s index %d out of range (have %d)", what, idx, n)
		}
	}
	return nil
}

// validateOrder checks that order is a permutation of 0..n-1.
func validateOrder(order []int, n int) error {
	if len(order) != n {
		return fmt.Errorf("chapter order has %d entries, want %d", len(order), n)
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n {
			return fmt.Errorf("chapter order index %d out of range (have %d)", idx, n)
		}
		if seen[idx] {
			return fmt.Errorf("chapter order repeats index %d", idx)
		}
		seen[idx] = true
	}
	return nil
}
