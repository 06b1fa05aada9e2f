// Package knowledge provides the optional retrieval capability that
// augments participant prompts with domain passages. Its absence degrades
// to an empty context contribution, never an error surfaced to a round.
package knowledge

import (
	"context"
	"fmt"
	"strings"
)

// Passage is one retrieved piece of domain knowledge.
type Passage struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// Retriever is the knowledge retrieval capability.
type Retriever interface {
	Retrieve(ctx context.Context, domain, query string, topK int) ([]Passage, error)
}

const maxPassageChars = 400

// ContextString formats passages into the prompt section handed to a
// participant. Empty input yields an empty string.
func ContextString(domain string, passages []Passage) string {
	if len(passages) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[Relevant knowledge from %s domain:]", domain)
	for i, p := range passages {
		content := p.Content
		if len(content) > maxPassageChars {
			content = content[:maxPassageChars] + "..."
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, content)
		source := p.Source
		if source == "" {
			source = "unknown"
		}
		fmt.Fprintf(&b, "\n   Source: %s", source)
	}
	return b.String()
}
