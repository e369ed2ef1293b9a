package tutorial

import (
	"context"
	"fmt"
	"strings"

	"github.com/futureCreator/tutorgen/internal/flow"
	"github.com/futureCreator/tutorgen/internal/llm"
)

// OrderChapters asks the model for the best pedagogical order to present the
// abstractions in, validated as a permutation of their indices.
type OrderChapters struct {
	flow.BaseNode

	ctx context.Context
	llm llm.Client
}

type orderPrep struct {
	project       string
	abstractions  []Abstraction
	relationships RelationshipSet
}

func NewOrderChapters(ctx context.Context, client llm.Client) *OrderChapters {
	return &OrderChapters{
		BaseNode: flow.NewBase(flow.WithMaxRetries(llmRetries), flow.WithWait(llmWait)),
		ctx:      ctx,
		llm:      client,
	}
}

func (n *OrderChapters) Prep(shared flow.Shared) (any, error) {
	abstractions, ok := shared[keyAbstractions].([]Abstraction)
	if !ok || len(abstractions) == 0 {
		return nil, fmt.Errorf("no abstractions in shared state")
	}
	rel, ok := shared[keyRelationships].(RelationshipSet)
	if !ok {
		return nil, fmt.Errorf("no relationships in shared state")
	}
	return orderPrep{
		project:       shared.GetString(keyProjectName),
		abstractions:  abstractions,
		relationships: rel,
	}, nil
}

func (n *OrderChapters) Exec(prep any) (any, error) {
	p := prep.(orderPrep)
	prompt := orderPrompt(p)

	response, err := n.llm.Call(n.ctx, prompt)
	if err != nil {
		return nil, err
	}

	var order []int
	if err := decodeYAML(response, &order); err != nil {
		return nil, err
	}
	if err := validateOrder(order, len(p.abstractions)); err != nil {
		return nil, err
	}
	return order, nil
}

func (n *OrderChapters) Post(shared flow.Shared, prep, exec any) (flow.Action, error) {
	shared[keyChapterOrder] = exec.([]int)
	return flow.DefaultAction, nil
}

func orderPrompt(p orderPrep) string {
	var b strings.Builder
	fmt.Fprintf(&b, "For the project `%s`, here are the abstractions:\n\n", p.project)
	for i, a := range p.abstractions {
		fmt.Fprintf(&b, "- %d # %s\n", i, a.Name)
	}
	fmt.Fprintf(&b, "\nProject summary:\n%s\n\nRelationships:\n", strings.TrimSpace(p.relationships.Summary))
	for _, r := range p.relationships.Details {
		fmt.Fprintf(&b, "- %s (%d) %s %s (%d)\n",
			p.abstractions[r.From].Name, r.From, r.Label, p.abstractions[r.To].Name, r.To)
	}
	b.WriteString("\nDecide the best order to explain these abstractions in a tutorial, from the most foundational or user-facing concept to the most detailed. Output every index exactly once.\n\n")
	b.WriteString("Format the output as a YAML list of indices:\n\n")
	b.WriteString("```yaml\n")
	b.WriteString("- 2 # FoundationalConcept\n")
	b.WriteString("- 0 # CoreClassA\n")
	b.WriteString("- 1 # CoreClassB\n")
	b.WriteString("```\n")
	return b.String()
}
