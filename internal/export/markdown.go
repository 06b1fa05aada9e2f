package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/debaite/debaite/internal/core"
)

// MarkdownExporter exports debates to Markdown format.
type MarkdownExporter struct{}

// Export writes the debate as Markdown.
func (e *MarkdownExporter) Export(record *core.DebateRecord, w io.Writer) error {
	var sb strings.Builder

	// Title
	sb.WriteString(fmt.Sprintf("# %s\n\n", record.Topic))

	// Metadata
	sb.WriteString("## Debate Information\n\n")
	sb.WriteString(fmt.Sprintf("- **ID:** `%s`\n", record.ID))
	sb.WriteString(fmt.Sprintf("- **Context mode:** %s\n", record.Mode))
	sb.WriteString(fmt.Sprintf("- **Status:** %s\n", record.Status))
	sb.WriteString(fmt.Sprintf("- **Created:** %s\n", record.CreatedAt.Format("January 2, 2006 at 3:04 PM")))
	if record.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf("- **Completed:** %s\n", record.CompletedAt.Format("January 2, 2006 at 3:04 PM")))
		sb.WriteString(fmt.Sprintf("- **Duration:** %s\n", formatDuration(record.CreatedAt, *record.CompletedAt)))
	}
	sb.WriteString("\n")

	// Participants
	sb.WriteString("## Participants\n\n")
	for _, p := range record.Participants {
		sb.WriteString(fmt.Sprintf("### %s\n", p.Name))
		sb.WriteString(fmt.Sprintf("- **Role:** %s %s\n", p.Persona, p.Role))
		if p.Expertise != "" {
			sb.WriteString(fmt.Sprintf("- **Expertise:** %s\n", p.Expertise))
		}
		if p.Domain != "" {
			sb.WriteString(fmt.Sprintf("- **Domain:** %s\n", p.Domain))
		}
		sb.WriteString("\n")
	}

	// Debate Content
	sb.WriteString("## Debate\n\n")

	responses := 0
	for _, t := range record.Turns {
		if !t.IsSystem() {
			responses++
		}
	}

	if responses == 0 {
		sb.WriteString("*No turns recorded.*\n\n")
	} else {
		maxRound := maxRoundOf(record.Turns)
		currentRound := 0
		for _, turn := range record.Turns {
			if turn.IsSystem() {
				continue
			}
			if turn.Round != currentRound {
				currentRound = turn.Round
				sb.WriteString(fmt.Sprintf("### %s\n\n", roundLabel(currentRound, maxRound)))
			}
			sb.WriteString(fmt.Sprintf("#### %s\n\n", turn.Speaker))
			sb.WriteString(fmt.Sprintf("*%s*\n\n", turn.Timestamp.Format("3:04 PM")))
			sb.WriteString(turn.Text)
			sb.WriteString("\n\n---\n\n")
		}
	}

	// Summary
	if record.Summary != "" {
		sb.WriteString("## Summary\n\n")
		sb.WriteString(record.Summary)
		sb.WriteString("\n\n")
	}

	// Footer
	sb.WriteString("---\n\n")
	sb.WriteString("*Exported from debaite*\n")

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return "md"
}
