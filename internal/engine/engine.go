// Package engine orchestrates debate sessions: it drives the stage
// sequence, acquires per-participant outputs through an acquisition
// strategy, and records every result into the transcript.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/debaite/debaite/internal/core"
	"github.com/debaite/debaite/internal/drift"
	"github.com/debaite/debaite/internal/knowledge"
	"github.com/debaite/debaite/internal/observability"
	"github.com/debaite/debaite/internal/policy"
	"github.com/debaite/debaite/internal/transcript"
	"github.com/debaite/debaite/provider"
)

// ErrAlreadyRun is returned when Run is called on a finished session.
// A fresh session is required for a new debate.
var ErrAlreadyRun = errors.New("debate session already run")

// Config holds the parameters of one debate session, fixed at creation.
type Config struct {
	Topic        string
	Participants []core.Participant

	// Mode selects what participants see as prior context.
	Mode core.ContextMode

	// MaxRounds is the total stage count: opening + rebuttals + closing.
	// Must be at least 2.
	MaxRounds int

	// WindowSize and SummarizeEvery tune the context policy; zero values
	// take the policy defaults.
	WindowSize     int
	SummarizeEvery int

	// Batched selects the batched acquisition strategy for the whole
	// session instead of per-participant sequential calls.
	Batched bool

	// Model overrides the generator's default model.
	Model string

	// WordLimits optionally caps response length per stage, in words.
	WordLimits map[core.Stage]int
}

// Deps carries the session's collaborators. Generator is required; all
// others are optional and absent collaborators degrade gracefully.
type Deps struct {
	Generator  provider.Provider
	Summarizer policy.Summarizer
	Retriever  knowledge.Retriever
	Drift      *drift.Controller
	Metrics    *observability.Metrics
}

// Callbacks reports progress during a run. All fields are optional.
type Callbacks struct {
	OnStageStart func(stage core.Stage, round int)
	OnTurn       func(result StageResult)
}

// Session is one debate run. It is not re-runnable: the stage sequence
// reaches its terminal state exactly once.
type Session struct {
	cfg       Config
	stages    []core.Stage
	transcr   *transcript.Transcript
	policy    *policy.Policy
	strategy  Strategy
	metrics   *observability.Metrics
	callbacks Callbacks
	createdAt time.Time
	done      bool
}

// New validates the configuration and assembles a session. Configuration
// failures are fatal and reported before anything runs.
func New(cfg Config, deps Deps) (*Session, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if len(cfg.Participants) < 2 {
		return nil, fmt.Errorf("at least 2 participants required, got %d", len(cfg.Participants))
	}
	seen := make(map[string]bool, len(cfg.Participants))
	for _, p := range cfg.Participants {
		if p.Name == "" {
			return nil, fmt.Errorf("participant with empty name")
		}
		if p.Name == core.SystemSpeaker {
			return nil, fmt.Errorf("participant name %q is reserved", core.SystemSpeaker)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate participant name: %s", p.Name)
		}
		seen[p.Name] = true
	}
	if deps.Generator == nil {
		return nil, fmt.Errorf("generation provider is required")
	}

	stages, err := core.Schedule(cfg.MaxRounds)
	if err != nil {
		return nil, err
	}

	summarizer := deps.Summarizer
	if summarizer == nil && cfg.Mode != core.ModeFull {
		summarizer = policy.NewProviderSummarizer(deps.Generator, cfg.Model)
	}

	tr := transcript.New()
	pol, err := policy.New(policy.Config{
		Mode:           cfg.Mode,
		WindowSize:     cfg.WindowSize,
		SummarizeEvery: cfg.SummarizeEvery,
	}, tr, summarizer, deps.Metrics)
	if err != nil {
		return nil, err
	}

	run := &runner{
		topic:        cfg.Topic,
		participants: cfg.Participants,
		policy:       pol,
		generator:    deps.Generator,
		model:        cfg.Model,
		retriever:    deps.Retriever,
		drift:        deps.Drift,
		wordLimits:   cfg.WordLimits,
		metrics:      deps.Metrics,
	}
	seq := &Sequential{runner: run}
	var strategy Strategy = seq
	if cfg.Batched {
		strategy = &Batched{runner: run, fallback: seq}
	}

	return &Session{
		cfg:       cfg,
		stages:    stages,
		transcr:   tr,
		policy:    pol,
		strategy:  strategy,
		metrics:   deps.Metrics,
		createdAt: time.Now(),
	}, nil
}

// SetCallbacks installs progress callbacks. Must be called before Run.
func (s *Session) SetCallbacks(cb Callbacks) {
	s.callbacks = cb
}

// Transcript exposes the session's transcript for read access.
func (s *Session) Transcript() *transcript.Transcript {
	return s.transcr
}

// Run executes the full stage sequence. Per-participant failures become
// placeholder turns and never abort the run; the only fatal errors are
// configuration problems (caught in New) and context cancellation.
func (s *Session) Run(ctx context.Context) (*core.DebateRecord, error) {
	if s.done {
		return nil, ErrAlreadyRun
	}
	s.done = true

	s.metrics.IncDebatesStarted()
	slog.Info("debate starting",
		"topic", s.cfg.Topic,
		"mode", s.policy.Mode().String(),
		"participants", len(s.cfg.Participants),
		"stages", len(s.stages),
		"strategy", s.strategy.Name(),
	)

	roster := make([]string, len(s.cfg.Participants))
	for i, p := range s.cfg.Participants {
		roster[i] = p.Name
	}
	s.policy.Start(s.cfg.Topic, roster)

	for _, stage := range s.stages {
		s.policy.AdvanceRound()
		round := s.transcr.Round()

		if s.callbacks.OnStageStart != nil {
			s.callbacks.OnStageStart(stage, round)
		}

		start := time.Now()
		results, err := s.strategy.RunStage(ctx, stage, round)
		s.metrics.ObserveStageSeconds(time.Since(start).Seconds())

		for _, res := range results {
			if s.callbacks.OnTurn != nil {
				s.callbacks.OnTurn(res)
			}
		}
		if err != nil {
			return s.record(core.StatusFailed), fmt.Errorf("stage %s (round %d): %w", stage, round, err)
		}
	}

	s.metrics.IncDebatesCompleted()
	slog.Info("debate complete",
		"topic", s.cfg.Topic,
		"turns", s.transcr.Len(),
		"summarized", s.policy.Summary() != "",
	)
	return s.record(core.StatusCompleted), nil
}

// record serializes the session into its durable form.
func (s *Session) record(status core.DebateStatus) *core.DebateRecord {
	now := time.Now()
	return &core.DebateRecord{
		ID:           core.GenerateID(),
		Topic:        s.cfg.Topic,
		Mode:         s.policy.Mode(),
		Participants: append([]core.Participant(nil), s.cfg.Participants...),
		Turns:        s.transcr.AllTurns(),
		Summary:      s.policy.Summary(),
		Status:       status,
		CreatedAt:    s.createdAt,
		CompletedAt:  &now,
	}
}
