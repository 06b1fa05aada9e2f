// Package drift implements the domain-drift controller: a shared service,
// constructed once and injected into the engine, that checks whether a
// participant's response stays within its knowledge domain and applies a
// gentle framing correction when it does not.
package drift

import (
	"math"
	"math/rand"
	"strings"
	"unicode"
)

// Drift is flagged only when the response aligns poorly with the agent's
// own domain AND another domain is a much stronger match.
const (
	ownSimilarityFloor = 0.25
	otherDomainMargin  = 0.30
)

// Embedder maps text to a vector. Implementations must be deterministic.
type Embedder interface {
	Embed(text string) []float32
}

// Analysis is the per-turn drift assessment. It rides on the stage result
// rather than living as hidden agent state.
type Analysis struct {
	Domain          string  `json:"domain"`
	OwnSimilarity   float64 `json:"own_similarity"`
	NearestOther    string  `json:"nearest_other"`
	OtherSimilarity float64 `json:"other_similarity"`
	HasFraming      bool    `json:"has_framing"`
	Drifted         bool    `json:"drifted"`
	Corrected       bool    `json:"corrected"`
}

// anchorTexts define each expertise area for similarity scoring.
var anchorTexts = map[string]string{
	"medical": "clinical diagnosis patient treatment healthcare medical research evidence-based medicine patient safety clinical trials therapeutic interventions diagnostic accuracy medical ethics",
	"tech": "business technology startup market development scalability artificial intelligence software engineering venture capital product development market analysis business strategy",
	"ethics": "moral principles fairness justice social responsibility values ethical frameworks human rights societal impact philosophical analysis moral reasoning ethical dilemmas",
	"legal": "law regulation constitutional rights legal precedent court decisions policy compliance regulatory framework legal analysis jurisprudence statutory interpretation",
	"economics": "economic analysis market dynamics financial impact cost-benefit analysis economic policy fiscal analysis monetary policy economic indicators market trends",
}

// framingPrefixes indicate the response is already framed from a
// professional perspective.
var framingPrefixes = []string{
	"from my", "in my", "as a", "from a", "speaking as",
	"from the perspective", "in the context of", "considering",
	"based on my", "drawing from", "given my",
}

// domainMarkers are professional-register words per domain; a response
// containing several is considered appropriately framed already.
var domainMarkers = map[string][]string{
	"medical":   {"clinical", "patient", "medical", "healthcare", "diagnosis", "treatment", "therapeutic"},
	"tech":      {"business", "technical", "market", "development", "startup", "roi", "scalability"},
	"ethics":    {"ethical", "moral", "philosophical", "values", "justice", "principles"},
	"legal":     {"legal", "regulatory", "constitutional", "policy", "compliance", "precedent"},
	"economics": {"economic", "financial", "market", "cost", "policy", "fiscal"},
}

// qualifiers are rotated so corrections don't read identically.
var qualifiers = map[string][]string{
	"medical":   {"From a clinical standpoint, ", "In healthcare terms, ", "Medically speaking, ", "From the medical perspective, "},
	"tech":      {"From a technical angle, ", "Business-wise, ", "From the tech perspective, ", "Looking at this technically, "},
	"ethics":    {"From an ethical standpoint, ", "Morally speaking, ", "From a values perspective, ", "Ethically, "},
	"legal":     {"From a legal perspective, ", "Regulatory-wise, ", "From the policy standpoint, ", "Legally speaking, "},
	"economics": {"From an economic perspective, ", "Financially speaking, ", "From a market standpoint, ", "Economically, "},
}

var genericQualifier = "From my professional perspective, "

// Controller assesses responses against per-domain anchors and applies
// corrections. Construct one per process and inject it; there is no
// package-level instance.
type Controller struct {
	embedder Embedder
	anchors  map[string][]float32
	rng      *rand.Rand
}

// NewController creates a controller, precomputing the anchor embeddings.
func NewController(embedder Embedder, seed int64) *Controller {
	anchors := make(map[string][]float32, len(anchorTexts))
	for domain, text := range anchorTexts {
		anchors[domain] = embedder.Embed(text)
	}
	return &Controller{
		embedder: embedder,
		anchors:  anchors,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Assess scores the response against every domain anchor and decides
// whether it has drifted from the agent's domain. Unknown domains are
// never flagged.
func (c *Controller) Assess(response, domain string) Analysis {
	a := Analysis{Domain: domain}
	if _, ok := c.anchors[domain]; !ok || response == "" {
		return a
	}

	vec := c.embedder.Embed(response)
	for other, anchor := range c.anchors {
		sim := cosine(vec, anchor)
		if other == domain {
			a.OwnSimilarity = sim
			continue
		}
		if sim > a.OtherSimilarity {
			a.OtherSimilarity = sim
			a.NearestOther = other
		}
	}

	a.HasFraming = hasFraming(response, domain)
	significant := a.OwnSimilarity < ownSimilarityFloor &&
		a.OtherSimilarity > a.OwnSimilarity+otherDomainMargin
	a.Drifted = significant && !a.HasFraming
	return a
}

// Correct prepends a rotating domain qualifier when the analysis flagged
// drift; otherwise the response passes through untouched.
func (c *Controller) Correct(response string, a Analysis) (string, Analysis) {
	if !a.Drifted {
		return response, a
	}

	lower := strings.ToLower(response)
	for _, prefix := range []string{"from", "in ", "as ", "while", "however", "although"} {
		if strings.HasPrefix(lower, prefix) {
			return response, a
		}
	}

	pool := qualifiers[a.Domain]
	qualifier := genericQualifier
	if len(pool) > 0 {
		qualifier = pool[c.rng.Intn(len(pool))]
	}

	a.Corrected = true
	runes := []rune(response)
	runes[0] = unicode.ToLower(runes[0])
	return qualifier + string(runes), a
}

func hasFraming(response, domain string) bool {
	lower := strings.ToLower(strings.TrimSpace(response))
	for _, prefix := range framingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	markers := domainMarkers[domain]
	count := 0
	for _, word := range markers {
		if strings.Contains(lower, word) {
			count++
		}
	}
	return count >= 3
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
