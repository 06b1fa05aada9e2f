package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/debaite/debaite/provider"
)

// Summarizer is the delegated summarization capability: deterministic and
// length-bounded by contract, even though the mechanism is external.
type Summarizer interface {
	Summarize(ctx context.Context, block string) (string, error)
}

// SummarizerFunc adapts a function to the Summarizer interface.
type SummarizerFunc func(ctx context.Context, block string) (string, error)

// Summarize calls f.
func (f SummarizerFunc) Summarize(ctx context.Context, block string) (string, error) {
	return f(ctx, block)
}

const summaryPromptHeader = "Summarise the following multi-agent debate in 300 words or fewer. " +
	"Preserve key claims and who made them. When an earlier summary is " +
	"included, merge the new exchanges into it rather than starting over."

// providerSummarizer backs the Summarizer port with a generation provider
// running a zero-temperature, length-capped configuration.
type providerSummarizer struct {
	gen   provider.Provider
	model string
}

// NewProviderSummarizer wraps a generation provider as a Summarizer.
func NewProviderSummarizer(gen provider.Provider, model string) Summarizer {
	return &providerSummarizer{gen: gen, model: model}
}

func (s *providerSummarizer) Summarize(ctx context.Context, block string) (string, error) {
	prompt := fmt.Sprintf("%s\n\n%s\n\nSummary:", summaryPromptHeader, block)

	resp, err := s.gen.Generate(ctx, &provider.Request{
		Prompt: prompt,
		Model:  s.model,
		Config: provider.SummaryConfig(),
	})
	if err != nil {
		return "", fmt.Errorf("summary generation: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}
