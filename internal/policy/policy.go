// Package policy implements the context policy: it decides what each
// participant sees as prior context and when the transcript is compacted
// into a rolling summary.
package policy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/debaite/debaite/internal/core"
	"github.com/debaite/debaite/internal/observability"
	"github.com/debaite/debaite/internal/transcript"
)

// Sentinels returned instead of empty strings, so prompts can distinguish
// "no context" from "empty context".
const (
	NoSummarySentinel = "[No summary yet]"
	NoContextSentinel = "[No context]"
)

const (
	// DefaultWindowSize is the sliding window size, denominated in rounds.
	DefaultWindowSize = 3

	// DefaultSummarizeEvery is the compaction-debt threshold in response turns.
	DefaultSummarizeEvery = 6
)

// Config holds the policy parameters, fixed for a debate session.
type Config struct {
	Mode           core.ContextMode
	WindowSize     int
	SummarizeEvery int
}

// Policy maps (requesting participant) -> context string according to the
// active mode, and triggers compaction when the debt threshold is reached.
// It is the single writer of the rolling summary.
type Policy struct {
	mode           core.ContextMode
	windowSize     int
	summarizeEvery int

	transcript *transcript.Transcript
	summarizer Summarizer
	metrics    *observability.Metrics

	summary string
	// summarizedThrough is the count of response turns already folded into
	// the summary. Compaction only summarizes turns past this point.
	summarizedThrough     int
	turnsSinceLastSummary int
}

// New creates a policy over the given transcript. The summarizer is required
// unless the mode is FULL, which never compacts.
func New(cfg Config, tr *transcript.Transcript, sum Summarizer, metrics *observability.Metrics) (*Policy, error) {
	if tr == nil {
		return nil, fmt.Errorf("transcript is required")
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.SummarizeEvery <= 0 {
		cfg.SummarizeEvery = DefaultSummarizeEvery
	}
	if cfg.Mode != core.ModeFull && sum == nil {
		return nil, fmt.Errorf("%s mode requires a summarizer", cfg.Mode)
	}

	return &Policy{
		mode:           cfg.Mode,
		windowSize:     cfg.WindowSize,
		summarizeEvery: cfg.SummarizeEvery,
		transcript:     tr,
		summarizer:     sum,
		metrics:        metrics,
	}, nil
}

// Mode returns the active context mode.
func (p *Policy) Mode() core.ContextMode { return p.mode }

// Summary returns the current rolling summary, empty if none was computed.
func (p *Policy) Summary() string { return p.summary }

// Start resets the transcript and the compaction state for a new debate.
func (p *Policy) Start(topic string, roster []string) {
	p.transcript.Start(topic, roster)
	p.summary = ""
	p.summarizedThrough = 0
	p.turnsSinceLastSummary = 0
}

// AdvanceRound forwards to the transcript.
func (p *Policy) AdvanceRound() {
	p.transcript.AdvanceRound()
}

// Record appends a response turn and, when the compaction debt reaches the
// threshold in a summarizing mode, compacts synchronously before returning.
func (p *Policy) Record(ctx context.Context, speaker, text string) {
	p.transcript.Append(speaker, text)
	p.turnsSinceLastSummary++

	if p.mode == core.ModeFull {
		return
	}
	if p.turnsSinceLastSummary >= p.summarizeEvery {
		p.compact(ctx)
	}
}

// ContextFor returns the context string for the requesting participant
// according to the active mode. Calling it twice without intervening
// appends returns identical output. Pass an empty requester to get the
// shared, no-exclusion context used by batched acquisition.
func (p *Policy) ContextFor(requester string) string {
	switch p.mode {
	case core.ModeFull:
		return renderTurns(p.transcript.NonSystemTurns(), requester)

	case core.ModeSummarized:
		if p.summary == "" {
			return NoSummarySentinel
		}
		return p.summary

	case core.ModeHybrid:
		recent := p.recentWindow(requester)
		var bits []string
		if p.summary != "" {
			bits = append(bits, "[Earlier summary]\n"+p.summary)
		}
		if recent != "" {
			bits = append(bits, recent)
		}
		if len(bits) == 0 {
			return NoContextSentinel
		}
		return strings.Join(bits, "\n")

	default:
		// Closed enum; unreachable for valid sessions.
		return NoContextSentinel
	}
}

// recentWindow renders the last windowSize*2 response turns, excluding the
// requester's own. The 2x multiplier exists because the window is
// denominated in rounds while turns are per-speaker.
func (p *Policy) recentWindow(requester string) string {
	msgs := p.transcript.NonSystemTurns()
	if n := p.windowSize * 2; len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return renderTurns(msgs, requester)
}

// compact folds response turns older than the sliding window into the
// rolling summary. Only turns not yet summarized are sent to the
// summarizer; the prior summary is carried in the block so the capability
// can merge rather than restart. On failure the prior summary is retained
// with a visible annotation and the debate continues.
func (p *Policy) compact(ctx context.Context) {
	msgs := p.transcript.NonSystemTurns()
	if len(msgs) <= p.windowSize {
		return
	}

	cut := len(msgs) - p.windowSize
	fresh := msgs[p.summarizedThrough:cut]
	if len(fresh) == 0 {
		p.turnsSinceLastSummary = 0
		return
	}

	var block strings.Builder
	if p.summary != "" {
		block.WriteString("[Earlier summary]\n")
		block.WriteString(p.summary)
		block.WriteString("\n\n[New exchanges]\n")
	}
	block.WriteString(renderTurns(fresh, ""))

	updated, err := p.summarizer.Summarize(ctx, block.String())
	if err != nil {
		// Keep the old summary; the unsummarized turns stay pending and
		// are retried on the next trigger.
		slog.Warn("summarization failed, keeping prior summary",
			"error", err,
			"pending_turns", len(fresh),
		)
		p.metrics.IncSummarizationFailures()
		p.summary += fmt.Sprintf("\n[Summary update failed: %v]", err)
		p.turnsSinceLastSummary = 0
		return
	}

	p.summary = strings.TrimSpace(updated)
	p.summarizedThrough = cut
	p.turnsSinceLastSummary = 0
	p.metrics.IncSummarizations()
	slog.Debug("transcript compacted",
		"summarized_through", cut,
		"window", p.windowSize,
	)
}

// renderTurns formats turns as "speaker: text" lines, omitting the
// excluded speaker. An empty exclude omits nothing.
func renderTurns(turns []core.Turn, exclude string) string {
	var b strings.Builder
	for _, t := range turns {
		if exclude != "" && t.Speaker == exclude {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.Speaker)
		b.WriteString(": ")
		b.WriteString(t.Text)
	}
	return b.String()
}
