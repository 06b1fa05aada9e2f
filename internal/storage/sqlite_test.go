package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/debaite/debaite/internal/core"
)

func testRecord(id, topic string, created time.Time) *core.DebateRecord {
	completed := created.Add(2 * time.Minute)
	return &core.DebateRecord{
		ID:    id,
		Topic: topic,
		Mode:  core.ModeHybrid,
		Participants: []core.Participant{
			{ID: "p1", Name: "Dr. Sarah Chen", Persona: "a meticulous", Role: "medical researcher", Domain: "medical"},
			{ID: "p2", Name: "Marcus Rivera", Persona: "an ambitious", Role: "startup founder", Domain: "tech"},
		},
		Turns: []core.Turn{
			{Timestamp: created, Round: 0, Speaker: core.SystemSpeaker, Text: "Debate started on 'AI in medicine'.", Kind: core.KindSystem},
			{Timestamp: created, Round: 1, Speaker: "Dr. Sarah Chen", Text: "Opening position.", Kind: core.KindResponse},
			{Timestamp: created, Round: 1, Speaker: "Marcus Rivera", Text: "Counter position.", Kind: core.KindResponse},
		},
		Summary:     "A short summary.",
		Status:      core.StatusCompleted,
		CreatedAt:   created,
		CompletedAt: &completed,
	}
}

func TestSQLiteStorage(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}

	t.Run("SaveAndGetDebate", func(t *testing.T) {
		record := testRecord("debate-1", "AI in medicine", time.Now())
		if err := store.SaveDebate(record); err != nil {
			t.Fatalf("failed to save debate: %v", err)
		}

		got, err := store.GetDebate("debate-1")
		if err != nil {
			t.Fatalf("failed to get debate: %v", err)
		}
		if got == nil {
			t.Fatal("debate not found after save")
		}
		if got.Topic != record.Topic {
			t.Errorf("topic = %q, want %q", got.Topic, record.Topic)
		}
		if got.Mode != core.ModeHybrid {
			t.Errorf("mode = %v, want hybrid", got.Mode)
		}
		if len(got.Participants) != 2 {
			t.Fatalf("got %d participants, want 2", len(got.Participants))
		}
		if got.Participants[0].Name != "Dr. Sarah Chen" {
			t.Errorf("participant 0 = %q", got.Participants[0].Name)
		}
		if len(got.Turns) != 3 {
			t.Fatalf("got %d turns, want 3", len(got.Turns))
		}
		if got.Turns[0].Kind != core.KindSystem {
			t.Errorf("turn 0 kind = %q, want system", got.Turns[0].Kind)
		}
		if got.Turns[1].Speaker != "Dr. Sarah Chen" || got.Turns[2].Speaker != "Marcus Rivera" {
			t.Error("turn order not preserved")
		}
		if got.Summary != "A short summary." {
			t.Errorf("summary = %q", got.Summary)
		}
		if got.Status != core.StatusCompleted {
			t.Errorf("status = %q", got.Status)
		}
		if got.CompletedAt == nil {
			t.Error("completed_at lost")
		}
	})

	t.Run("GetMissingDebate", func(t *testing.T) {
		got, err := store.GetDebate("no-such-id")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Fatal("expected nil for missing debate")
		}
	})

	t.Run("ListDebatesNewestFirst", func(t *testing.T) {
		base := time.Now()
		if err := store.SaveDebate(testRecord("debate-old", "Older topic", base.Add(-time.Hour))); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := store.SaveDebate(testRecord("debate-new", "Newer topic", base.Add(time.Hour))); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		summaries, err := store.ListDebates(10, 0)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(summaries) != 3 {
			t.Fatalf("got %d summaries, want 3", len(summaries))
		}
		if summaries[0].ID != "debate-new" {
			t.Errorf("first summary = %s, want debate-new", summaries[0].ID)
		}
		if summaries[0].ParticipantCount != 2 {
			t.Errorf("participant count = %d, want 2", summaries[0].ParticipantCount)
		}
		if summaries[0].TurnCount != 3 {
			t.Errorf("turn count = %d, want 3", summaries[0].TurnCount)
		}
	})

	t.Run("ListRespectsLimitAndOffset", func(t *testing.T) {
		summaries, err := store.ListDebates(1, 1)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(summaries) != 1 {
			t.Fatalf("got %d summaries, want 1", len(summaries))
		}
	})

	t.Run("DeleteDebateCascades", func(t *testing.T) {
		if err := store.DeleteDebate("debate-1"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		got, err := store.GetDebate("debate-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Fatal("debate still present after delete")
		}

		var count int
		if err := store.db.QueryRow("SELECT COUNT(*) FROM turns WHERE debate_id = ?", "debate-1").Scan(&count); err != nil {
			t.Fatalf("failed to count turns: %v", err)
		}
		if count != 0 {
			t.Errorf("%d turns left after cascade delete", count)
		}
	})

	t.Run("DuplicateIDRejected", func(t *testing.T) {
		record := testRecord("debate-dup", "Topic", time.Now())
		if err := store.SaveDebate(record); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := store.SaveDebate(record); err == nil {
			t.Fatal("expected error on duplicate ID")
		}
	})
}
