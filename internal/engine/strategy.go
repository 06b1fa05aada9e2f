package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/debaite/debaite/internal/core"
	"github.com/debaite/debaite/internal/drift"
	"github.com/debaite/debaite/internal/knowledge"
	"github.com/debaite/debaite/internal/observability"
	"github.com/debaite/debaite/internal/policy"
	"github.com/debaite/debaite/provider"
)

// StageResult is one participant's outcome for one stage. A placeholder
// result still occupies the participant's slot so the round output count
// always matches the roster.
type StageResult struct {
	Participant core.Participant
	Stage       core.Stage
	Round       int
	Text        string
	Placeholder bool
	FellBack    bool
	Err         error
	Analysis    *drift.Analysis
}

// Strategy acquires one output per roster participant for a stage. The
// returned slice preserves roster order and has one entry per participant
// unless the context was cancelled mid-stage.
type Strategy interface {
	Name() string
	RunStage(ctx context.Context, stage core.Stage, round int) ([]StageResult, error)
}

// runner holds the session state both strategies operate on.
type runner struct {
	topic        string
	participants []core.Participant
	policy       *policy.Policy
	generator    provider.Provider
	model        string
	retriever    knowledge.Retriever
	drift        *drift.Controller
	wordLimits   map[core.Stage]int
	metrics      *observability.Metrics
}

// stageConfig returns the generation parameters for a debate turn,
// tightening the token budget when the stage carries a word limit.
func (r *runner) stageConfig(stage core.Stage) provider.GenConfig {
	cfg := provider.CreativeConfig()
	if limit := r.wordLimits[stage]; limit > 0 {
		cfg.MaxTokens = limit * 2
	}
	return cfg
}

// knowledgeBlock retrieves domain passages for the participant. Retrieval
// failures degrade to an empty block; they never fail the turn.
func (r *runner) knowledgeBlock(ctx context.Context, p core.Participant) string {
	if r.retriever == nil || p.Domain == "" {
		return ""
	}
	passages, err := r.retriever.Retrieve(ctx, p.Domain, r.topic, 3)
	if err != nil {
		slog.Warn("knowledge retrieval failed",
			"participant", p.Name,
			"domain", p.Domain,
			"error", err,
		)
		return ""
	}
	return knowledge.ContextString(p.Domain, passages)
}

// applyDrift assesses and possibly corrects the response. Without a
// controller or a participant domain the text passes through unchanged.
func (r *runner) applyDrift(text string, p core.Participant) (string, *drift.Analysis) {
	if r.drift == nil || p.Domain == "" {
		return text, nil
	}
	analysis := r.drift.Assess(text, p.Domain)
	corrected, analysis := r.drift.Correct(text, analysis)
	if analysis.Corrected {
		slog.Debug("drift correction applied",
			"participant", p.Name,
			"domain", p.Domain,
			"own_similarity", analysis.OwnSimilarity,
			"nearest_other", analysis.NearestOther,
		)
	}
	return corrected, &analysis
}

// finishTurn records the result into the transcript and counts it. Every
// acquired output flows through here, placeholders included.
func (r *runner) finishTurn(ctx context.Context, res StageResult) StageResult {
	r.policy.Record(ctx, res.Participant.Name, res.Text)
	r.metrics.IncTurns(string(res.Stage))
	return res
}

// cleanResponse strips the whitespace providers tend to pad with.
func cleanResponse(text string) string {
	return strings.TrimSpace(text)
}
