package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/debaite/debaite/internal/core"
)

// participantColors rotate across the roster so turn headers stay
// distinguishable with any participant count.
var participantColors = [][3]int{
	{200, 230, 255}, // light blue
	{200, 255, 200}, // light green
	{255, 230, 200}, // light orange
	{230, 210, 255}, // light purple
	{255, 210, 210}, // light red
}

// PDFExporter exports debates to PDF format.
type PDFExporter struct{}

// Export writes the debate as PDF.
func (e *PDFExporter) Export(record *core.DebateRecord, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 10, e.sanitizeText(record.Topic), "", "C", false)
	pdf.Ln(5)

	// Metadata section
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Debate Information")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	id := record.ID
	if len(id) > 8 {
		id = id[:8] + "..."
	}
	e.addMetadataRow(pdf, "ID:", id)
	e.addMetadataRow(pdf, "Mode:", record.Mode.String())
	e.addMetadataRow(pdf, "Status:", string(record.Status))
	e.addMetadataRow(pdf, "Created:", record.CreatedAt.Format("January 2, 2006 at 3:04 PM"))
	if record.CompletedAt != nil {
		e.addMetadataRow(pdf, "Completed:", record.CompletedAt.Format("January 2, 2006 at 3:04 PM"))
		e.addMetadataRow(pdf, "Duration:", formatDuration(record.CreatedAt, *record.CompletedAt))
	}
	pdf.Ln(5)

	// Participants section
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Participants")
	pdf.Ln(8)

	colorIndex := make(map[string]int, len(record.Participants))
	for i, p := range record.Participants {
		colorIndex[p.Name] = i % len(participantColors)
		e.addParticipantBox(pdf, p, participantColors[colorIndex[p.Name]])
		pdf.Ln(3)
	}
	pdf.Ln(5)

	// Debate content
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Debate")
	pdf.Ln(8)

	maxRound := maxRoundOf(record.Turns)
	responses := 0
	currentRound := 0
	for _, turn := range record.Turns {
		if turn.IsSystem() {
			continue
		}
		responses++

		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		if turn.Round != currentRound {
			currentRound = turn.Round
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(0, 7, roundLabel(currentRound, maxRound))
			pdf.Ln(7)
		}

		color := participantColors[colorIndex[turn.Speaker]]
		pdf.SetFillColor(color[0], color[1], color[2])

		pdf.SetFont("Arial", "B", 10)
		header := fmt.Sprintf("%s (%s)", turn.Speaker, turn.Timestamp.Format("3:04 PM"))
		pdf.CellFormat(0, 7, header, "", 1, "", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		pdf.SetFillColor(255, 255, 255)
		pdf.MultiCell(0, 5, e.sanitizeText(turn.Text), "", "", false)
		pdf.Ln(5)
	}
	if responses == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No turns recorded.")
		pdf.Ln(6)
	}

	// Summary
	if record.Summary != "" {
		if pdf.GetY() > 230 {
			pdf.AddPage()
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Summary")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, e.sanitizeText(record.Summary), "", "", false)
		pdf.Ln(3)
	}

	// Footer
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 10, "Exported from debaite", "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

// FileExtension returns the file extension for PDF.
func (e *PDFExporter) FileExtension() string {
	return "pdf"
}

// Helper to add a metadata row
func (e *PDFExporter) addMetadataRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(30, 5, label)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, value)
	pdf.Ln(5)
}

// Helper to add a participant box
func (e *PDFExporter) addParticipantBox(pdf *gofpdf.Fpdf, p core.Participant, color [3]int) {
	pdf.SetFillColor(color[0], color[1], color[2])
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, p.Name, "", 1, "", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetFillColor(255, 255, 255)
	pdf.Cell(25, 5, "Role:")
	pdf.Cell(0, 5, e.sanitizeText(fmt.Sprintf("%s %s", p.Persona, p.Role)))
	pdf.Ln(5)
	if p.Expertise != "" {
		pdf.Cell(25, 5, "Expertise:")
		pdf.Cell(0, 5, e.sanitizeText(p.Expertise))
		pdf.Ln(5)
	}
	if p.Domain != "" {
		pdf.Cell(25, 5, "Domain:")
		pdf.Cell(0, 5, p.Domain)
		pdf.Ln(5)
	}
}

// Sanitize text for PDF (remove problematic characters)
func (e *PDFExporter) sanitizeText(text string) string {
	// gofpdf uses Windows-1252 encoding by default
	replacer := strings.NewReplacer(
		"‘", "'", // Left single quote
		"’", "'", // Right single quote
		"“", "\"", // Left double quote
		"”", "\"", // Right double quote
		"–", "-", // En dash
		"—", "--", // Em dash
		"…", "...", // Ellipsis
		"•", "*", // Bullet
		" ", " ", // Non-breaking space
	)
	return replacer.Replace(text)
}
