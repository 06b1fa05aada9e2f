package policy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/debaite/debaite/internal/core"
	"github.com/debaite/debaite/internal/transcript"
)

// countingSummarizer records the blocks it was asked to summarize.
type countingSummarizer struct {
	blocks []string
	err    error
}

func (s *countingSummarizer) Summarize(_ context.Context, block string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.blocks = append(s.blocks, block)
	return fmt.Sprintf("summary #%d", len(s.blocks)), nil
}

func newTestPolicy(t *testing.T, mode core.ContextMode, window, every int) (*Policy, *countingSummarizer) {
	t.Helper()
	sum := &countingSummarizer{}
	p, err := New(Config{Mode: mode, WindowSize: window, SummarizeEvery: every}, transcript.New(), sum, nil)
	if err != nil {
		t.Fatalf("new policy: %v", err)
	}
	p.Start("test topic", []string{"A", "B", "C"})
	return p, sum
}

func recordRound(ctx context.Context, p *Policy) {
	p.AdvanceRound()
	for _, name := range []string{"A", "B", "C"} {
		p.Record(ctx, name, fmt.Sprintf("%s argues in round", name))
	}
}

func TestFullModeExcludesRequester(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPolicy(t, core.ModeFull, 3, 6)
	recordRound(ctx, p)
	recordRound(ctx, p)

	got := p.ContextFor("B")
	if strings.Contains(got, "B:") {
		t.Errorf("FULL context for B contains B's own lines:\n%s", got)
	}
	for _, other := range []string{"A:", "C:"} {
		if !strings.Contains(got, other) {
			t.Errorf("FULL context missing %s lines:\n%s", other, got)
		}
	}
}

func TestFullModeNeverSummarizes(t *testing.T) {
	ctx := context.Background()
	p, sum := newTestPolicy(t, core.ModeFull, 3, 2)

	for i := 0; i < 5; i++ {
		recordRound(ctx, p)
	}
	if len(sum.blocks) != 0 {
		t.Errorf("FULL mode triggered %d summarizations", len(sum.blocks))
	}
	if p.Summary() != "" {
		t.Errorf("FULL mode produced a summary: %q", p.Summary())
	}
}

func TestSummarizedModeSentinel(t *testing.T) {
	p, _ := newTestPolicy(t, core.ModeSummarized, 3, 6)
	if got := p.ContextFor("A"); got != NoSummarySentinel {
		t.Errorf("got %q, want sentinel", got)
	}
}

func TestHybridModeSentinel(t *testing.T) {
	p, _ := newTestPolicy(t, core.ModeHybrid, 3, 6)
	if got := p.ContextFor("A"); got != NoContextSentinel {
		t.Errorf("got %q, want sentinel", got)
	}
}

func TestHybridWindowIsBounded(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPolicy(t, core.ModeHybrid, 2, 100) // threshold high: no compaction

	for i := 0; i < 6; i++ {
		recordRound(ctx, p)
	}

	got := p.ContextFor("")
	lines := strings.Split(got, "\n")
	// No summary yet, so the context is only the window: at most 2*2 lines.
	if len(lines) > 4 {
		t.Errorf("window produced %d lines, want <= 4:\n%s", len(lines), got)
	}
}

func TestCompactionFiresAtThreshold(t *testing.T) {
	ctx := context.Background()
	p, sum := newTestPolicy(t, core.ModeHybrid, 3, 6)

	recordRound(ctx, p) // 3 response turns
	if len(sum.blocks) != 0 {
		t.Fatalf("compaction fired early after 3 turns")
	}
	recordRound(ctx, p) // 6 response turns: threshold reached
	if len(sum.blocks) != 1 {
		t.Fatalf("compaction count = %d after 6 turns, want 1", len(sum.blocks))
	}
	// The block covers everything except the most recent window (3 turns).
	if strings.Count(sum.blocks[0], "\n")+1 != 3 {
		t.Errorf("unexpected block content:\n%s", sum.blocks[0])
	}

	got := p.ContextFor("A")
	if !strings.Contains(got, "summary #1") {
		t.Errorf("context after compaction missing summary:\n%s", got)
	}
}

func TestCompactionFoldsIncrementally(t *testing.T) {
	ctx := context.Background()
	p, sum := newTestPolicy(t, core.ModeSummarized, 3, 3)

	// With window 3 and threshold 3 the first trigger (turn 3) finds
	// nothing older than the window and stays pending; turn 4 summarizes
	// turn 1, and turn 7 folds turns 2-4 into the existing summary.
	recordRound(ctx, p)
	recordRound(ctx, p)
	recordRound(ctx, p)

	if len(sum.blocks) != 2 {
		t.Fatalf("got %d summarizations, want 2", len(sum.blocks))
	}
	second := sum.blocks[1]
	if !strings.Contains(second, "[Earlier summary]") {
		t.Errorf("second block does not fold prior summary:\n%s", second)
	}
	if !strings.Contains(second, "summary #1") {
		t.Errorf("second block missing prior summary text:\n%s", second)
	}
	// Old turns must not be re-sent verbatim; only the 3 new ones.
	if got := strings.Count(second, "argues in round"); got != 3 {
		t.Errorf("second block carries %d raw turns, want 3:\n%s", got, second)
	}
}

func TestSummarizationFailureIsAnnotated(t *testing.T) {
	ctx := context.Background()
	sum := &countingSummarizer{}
	p, err := New(Config{Mode: core.ModeSummarized, WindowSize: 3, SummarizeEvery: 3}, transcript.New(), sum, nil)
	if err != nil {
		t.Fatalf("new policy: %v", err)
	}
	p.Start("topic", []string{"A", "B", "C"})

	recordRound(ctx, p)
	recordRound(ctx, p)
	if p.Summary() != "summary #1" {
		t.Fatalf("setup: summary = %q", p.Summary())
	}

	sum.err = errors.New("provider down")
	recordRound(ctx, p)

	got := p.Summary()
	if !strings.HasPrefix(got, "summary #1") {
		t.Errorf("prior summary discarded: %q", got)
	}
	if !strings.Contains(got, "[Summary update failed: provider down]") {
		t.Errorf("failure not annotated: %q", got)
	}

	// Recovery: the pending turns are retried on the next trigger.
	sum.err = nil
	recordRound(ctx, p)
	if len(sum.blocks) != 2 {
		t.Fatalf("retry did not fire: %d summarizations", len(sum.blocks))
	}
}

func TestContextForIsIdempotent(t *testing.T) {
	ctx := context.Background()
	for _, mode := range []core.ContextMode{core.ModeFull, core.ModeSummarized, core.ModeHybrid} {
		t.Run(mode.String(), func(t *testing.T) {
			p, _ := newTestPolicy(t, mode, 3, 6)
			recordRound(ctx, p)
			recordRound(ctx, p)

			first := p.ContextFor("B")
			second := p.ContextFor("B")
			if first != second {
				t.Errorf("ContextFor not idempotent:\n%q\nvs\n%q", first, second)
			}
		})
	}
}

func TestNewRequiresSummarizerForCompactingModes(t *testing.T) {
	if _, err := New(Config{Mode: core.ModeHybrid}, transcript.New(), nil, nil); err == nil {
		t.Error("hybrid mode accepted nil summarizer")
	}
	if _, err := New(Config{Mode: core.ModeFull}, transcript.New(), nil, nil); err != nil {
		t.Errorf("full mode rejected nil summarizer: %v", err)
	}
}
