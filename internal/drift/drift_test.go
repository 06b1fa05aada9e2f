package drift

import (
	"strings"
	"testing"
)

// stubEmbedder returns fixed vectors keyed by the text's domain markers,
// letting tests force specific similarity outcomes.
type stubEmbedder struct{}

func (stubEmbedder) Embed(text string) []float32 {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "clinical"):
		return []float32{1, 0, 0}
	case strings.Contains(lower, "moral"):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

func TestAssessFlagsSignificantDrift(t *testing.T) {
	c := NewController(stubEmbedder{}, 1)

	// A medical agent whose response embeds squarely into ethics: own
	// similarity 0, other similarity 1, no framing words.
	a := c.Assess("The moral weight of this question is what matters most.", "medical")
	if !a.Drifted {
		t.Errorf("drift not detected: %+v", a)
	}
	if a.NearestOther != "ethics" {
		t.Errorf("nearest other = %s, want ethics", a.NearestOther)
	}
}

func TestAssessAcceptsAlignedResponse(t *testing.T) {
	c := NewController(stubEmbedder{}, 1)
	a := c.Assess("The clinical data supports early screening.", "medical")
	if a.Drifted {
		t.Errorf("aligned response flagged: %+v", a)
	}
	if a.OwnSimilarity != 1 {
		t.Errorf("own similarity = %f, want 1", a.OwnSimilarity)
	}
}

func TestAssessSkipsFramedResponse(t *testing.T) {
	c := NewController(stubEmbedder{}, 1)
	a := c.Assess("As a doctor I still think the moral question dominates.", "medical")
	if a.Drifted {
		t.Errorf("framed response flagged: %+v", a)
	}
	if !a.HasFraming {
		t.Error("framing not detected")
	}
}

func TestAssessUnknownDomain(t *testing.T) {
	c := NewController(stubEmbedder{}, 1)
	a := c.Assess("Anything at all.", "astrology")
	if a.Drifted {
		t.Error("unknown domain flagged")
	}
}

func TestCorrectPrependsQualifier(t *testing.T) {
	c := NewController(stubEmbedder{}, 1)
	a := Analysis{Domain: "medical", Drifted: true}

	got, updated := c.Correct("The market will decide this question.", a)
	if !updated.Corrected {
		t.Error("correction not recorded")
	}
	if !strings.Contains(strings.ToLower(got), "the market will decide") {
		t.Errorf("original text lost: %q", got)
	}
	if got[0] == 'T' {
		t.Errorf("qualifier not prepended: %q", got)
	}
}

func TestCorrectLeavesFramedOpeners(t *testing.T) {
	c := NewController(stubEmbedder{}, 1)
	a := Analysis{Domain: "medical", Drifted: true}

	got, updated := c.Correct("However, the outcome is unclear.", a)
	if got != "However, the outcome is unclear." {
		t.Errorf("framed opener modified: %q", got)
	}
	if updated.Corrected {
		t.Error("correction recorded for untouched response")
	}
}

func TestCorrectPassThrough(t *testing.T) {
	c := NewController(stubEmbedder{}, 1)
	got, _ := c.Correct("Untouched.", Analysis{Domain: "medical"})
	if got != "Untouched." {
		t.Errorf("non-drifted response modified: %q", got)
	}
}

func TestLexicalEmbedderDeterministic(t *testing.T) {
	e := LexicalEmbedder{}
	a := e.Embed("clinical trials improve diagnostic accuracy")
	b := e.Embed("clinical trials improve diagnostic accuracy")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at dim %d", i)
		}
	}

	if cosine(a, b) < 0.999 {
		t.Error("identical texts should have cosine ~1")
	}
}
