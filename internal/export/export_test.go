package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/debaite/debaite/internal/core"
)

func sampleRecord() *core.DebateRecord {
	created := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)
	completed := created.Add(3 * time.Minute)
	return &core.DebateRecord{
		ID:    "abcd1234-5678",
		Topic: "Should AI systems diagnose patients?",
		Mode:  core.ModeHybrid,
		Participants: []core.Participant{
			{Name: "Dr. Sarah Chen", Persona: "a meticulous", Role: "medical researcher", Expertise: "clinical trials", Domain: "medical"},
			{Name: "Marcus Rivera", Persona: "an ambitious", Role: "startup founder", Domain: "tech"},
		},
		Turns: []core.Turn{
			{Timestamp: created, Round: 0, Speaker: core.SystemSpeaker, Text: "Debate started.", Kind: core.KindSystem},
			{Timestamp: created, Round: 1, Speaker: "Dr. Sarah Chen", Text: "Evidence must come first.", Kind: core.KindResponse},
			{Timestamp: created, Round: 1, Speaker: "Marcus Rivera", Text: "Speed of iteration matters.", Kind: core.KindResponse},
			{Timestamp: created, Round: 2, Speaker: "Dr. Sarah Chen", Text: "Final word on safety.", Kind: core.KindResponse},
			{Timestamp: created, Round: 2, Speaker: "Marcus Rivera", Text: "Final word on access.", Kind: core.KindResponse},
		},
		Summary:     "They disagreed, politely.",
		Status:      core.StatusCompleted,
		CreatedAt:   created,
		CompletedAt: &completed,
	}
}

func TestGetExporter(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatMarkdown, FormatPDF} {
		if _, err := GetExporter(format); err != nil {
			t.Errorf("GetExporter(%s) failed: %v", format, err)
		}
	}
	if _, err := GetExporter("xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestGenerateFilename(t *testing.T) {
	record := sampleRecord()
	got := GenerateFilename(record, "md")

	if !strings.HasPrefix(got, "debate_20250610_") {
		t.Errorf("filename = %q, want date prefix", got)
	}
	if !strings.HasSuffix(got, ".md") {
		t.Errorf("filename = %q, want .md suffix", got)
	}
	for _, bad := range []string{" ", "?", "/"} {
		if strings.Contains(got, bad) {
			t.Errorf("filename %q contains %q", got, bad)
		}
	}
}

func TestJSONExportRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleRecord(), &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got core.DebateRecord
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if got.ID != "abcd1234-5678" {
		t.Errorf("id = %q", got.ID)
	}
	if len(got.Turns) != 5 {
		t.Errorf("got %d turns, want 5", len(got.Turns))
	}
	if got.Mode != core.ModeHybrid {
		t.Errorf("mode = %v", got.Mode)
	}
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleRecord(), &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Should AI systems diagnose patients?",
		"### Dr. Sarah Chen",
		"### Opening Statements",
		"### Closing Arguments",
		"Evidence must come first.",
		"## Summary",
		"They disagreed, politely.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(out, "Debate started.") {
		t.Error("system turns must not appear in the markdown body")
	}
}

func TestMarkdownExportEmptyDebate(t *testing.T) {
	record := sampleRecord()
	record.Turns = record.Turns[:1] // system turn only
	record.Summary = ""

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(record, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(buf.String(), "*No turns recorded.*") {
		t.Error("empty debate should say no turns were recorded")
	}
}

func TestPDFExportProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := (&PDFExporter{}).Export(sampleRecord(), &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
	if buf.Len() < 1000 {
		t.Errorf("suspiciously small PDF: %d bytes", buf.Len())
	}
}

func TestPDFSanitizeText(t *testing.T) {
	e := &PDFExporter{}
	got := e.sanitizeText("it’s “fine” — mostly…")
	want := "it's \"fine\" -- mostly..."
	if got != want {
		t.Errorf("sanitizeText = %q, want %q", got, want)
	}
}
