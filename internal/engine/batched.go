package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/debaite/debaite/internal/core"
	"github.com/debaite/debaite/provider"
)

// Batched acquires the whole stage in a single provider call, asking for
// one labeled response per participant. All participants share one context
// snapshot, so turns within a batched stage cannot see each other. If the
// call itself fails the stage reruns under the sequential strategy.
type Batched struct {
	*runner
	fallback *Sequential
}

func (b *Batched) Name() string { return "batched" }

func (b *Batched) RunStage(ctx context.Context, stage core.Stage, round int) ([]StageResult, error) {
	var priorContext string
	if stage != core.StageOpening {
		priorContext = b.policy.ContextFor("")
	}

	prompt := buildBatchPrompt(b.participants, b.topic, priorContext, stage, b.wordLimits[stage])
	cfg := b.stageConfig(stage)
	cfg.MaxTokens = cfg.MaxTokens*len(b.participants) + 100

	resp, err := b.generator.Generate(ctx, &provider.Request{
		Prompt: prompt,
		Model:  b.model,
		Config: cfg,
	})
	if err != nil {
		slog.Warn("batched call failed, falling back to sequential",
			"stage", stage,
			"round", round,
			"error", err,
		)
		b.metrics.IncBatchFallbacks()
		results, err := b.fallback.RunStage(ctx, stage, round)
		for i := range results {
			results[i].FellBack = true
		}
		return results, err
	}

	names := make([]string, len(b.participants))
	for i, p := range b.participants {
		names[i] = p.Name
	}
	parsed := ParseBatchResponse(resp.Content, names)
	if len(parsed) < len(b.participants) {
		slog.Warn("batch response parsed incompletely",
			"stage", stage,
			"round", round,
			"parsed", len(parsed),
			"expected", len(b.participants),
		)
	}

	results := make([]StageResult, 0, len(b.participants))
	for _, p := range b.participants {
		res := StageResult{Participant: p, Stage: stage, Round: round}
		text, ok := parsed[p.Name]
		if !ok || text == "" {
			b.metrics.IncPlaceholders()
			res.Text = fmt.Sprintf("[Batch response parsing incomplete for %s]", p.Name)
			res.Placeholder = true
		} else {
			res.Text, res.Analysis = b.applyDrift(text, p)
		}
		results = append(results, b.finishTurn(ctx, res))
	}
	return results, nil
}

// ParseBatchResponse splits a labeled multi-agent response into per-name
// texts. Labels are "AGENT_<n>:" at the start of a line, with n being the
// 1-based roster position; text runs until the next label. Labels outside
// the roster range and unlabeled leading text are dropped.
func ParseBatchResponse(text string, names []string) map[string]string {
	responses := make(map[string]string)

	var current string
	var parts []string
	flush := func() {
		if current != "" && len(parts) > 0 {
			responses[current] = strings.TrimSpace(strings.Join(parts, " "))
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if idx, rest, ok := parseAgentLabel(line); ok {
			flush()
			current = ""
			parts = parts[:0]
			if idx >= 0 && idx < len(names) {
				current = names[idx]
				if rest != "" {
					parts = append(parts, rest)
				}
			}
			continue
		}
		if current != "" && line != "" {
			parts = append(parts, line)
		}
	}
	flush()
	return responses
}

// parseAgentLabel matches "AGENT_<n>:" and returns the 0-based index plus
// any text following the colon on the same line.
func parseAgentLabel(line string) (int, string, bool) {
	const prefix = "AGENT_"
	if !strings.HasPrefix(line, prefix) {
		return 0, "", false
	}
	rest := line[len(prefix):]
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return 0, "", false
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest[:colon]))
	if err != nil {
		return 0, "", false
	}
	return n - 1, strings.TrimSpace(rest[colon+1:]), true
}

var (
	_ Strategy = (*Sequential)(nil)
	_ Strategy = (*Batched)(nil)
)
