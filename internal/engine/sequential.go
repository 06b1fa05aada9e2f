package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/debaite/debaite/internal/core"
	"github.com/debaite/debaite/provider"
)

// Sequential acquires outputs one participant at a time, in roster order.
// Each participant's context reflects every turn recorded before theirs,
// including earlier turns of the same stage.
type Sequential struct {
	*runner
}

func (s *Sequential) Name() string { return "sequential" }

func (s *Sequential) RunStage(ctx context.Context, stage core.Stage, round int) ([]StageResult, error) {
	results := make([]StageResult, 0, len(s.participants))
	for _, p := range s.participants {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, s.finishTurn(ctx, s.takeTurn(ctx, p, stage, round)))
	}
	return results, nil
}

// takeTurn produces one participant's output for the stage. Generation
// failures yield a placeholder so the roster invariant holds.
func (s *Sequential) takeTurn(ctx context.Context, p core.Participant, stage core.Stage, round int) StageResult {
	res := StageResult{Participant: p, Stage: stage, Round: round}

	// Openers argue from a blank slate.
	var priorContext string
	if stage != core.StageOpening {
		priorContext = s.policy.ContextFor(p.Name)
	}

	prompt := buildTurnPrompt(p, s.topic, priorContext, s.knowledgeBlock(ctx, p), stage, s.wordLimits[stage])
	resp, err := s.generator.Generate(ctx, &provider.Request{
		Prompt: prompt,
		Model:  s.model,
		Config: s.stageConfig(stage),
	})
	if err != nil {
		slog.Warn("generation failed, substituting placeholder",
			"participant", p.Name,
			"stage", stage,
			"round", round,
			"error", err,
		)
		s.metrics.IncGenerationFailures()
		s.metrics.IncPlaceholders()
		res.Text = fmt.Sprintf("[Error generating response: %v]", err)
		res.Placeholder = true
		res.Err = err
		return res
	}

	res.Text, res.Analysis = s.applyDrift(cleanResponse(resp.Content), p)
	return res
}
