// Package persona defines participant templates for debates.
package persona

// Template describes a debater personality that can be instantiated as a
// participant.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Persona     string `json:"persona"`
	Role        string `json:"role"`
	Expertise   string `json:"expertise,omitempty"`
	Style       string `json:"style,omitempty"`
	Description string `json:"description,omitempty"`
}

// Builtin returns the built-in templates: a roster covering distinct
// expertise areas so default debates exercise domain augmentation.
func Builtin() []Template {
	return []Template{
		{
			ID:          "medical_researcher",
			Name:        "Dr. Sarah Chen",
			Persona:     "calm, evidence-based",
			Role:        "medical researcher",
			Expertise:   "AI in healthcare & ethics",
			Style:       "professional",
			Description: "Clinical perspective grounded in evidence and patient safety",
		},
		{
			ID:          "startup_founder",
			Name:        "Marcus Rivera",
			Persona:     "optimistic, tech-forward",
			Role:        "startup founder",
			Expertise:   "AI entrepreneurship",
			Style:       "casual",
			Description: "Market-driven view on technology adoption",
		},
		{
			ID:          "philosopher",
			Name:        "Prof. Elena Vasquez",
			Persona:     "thoughtful, ethical",
			Role:        "philosopher",
			Expertise:   "AI ethics",
			Style:       "academic",
			Description: "Moral and societal framing of technical questions",
		},
		{
			ID:          "economist",
			Name:        "Dr. James Okafor",
			Persona:     "measured, data-driven",
			Role:        "economist",
			Expertise:   "labor markets and automation",
			Style:       "analytical",
			Description: "Cost-benefit and market-dynamics analysis",
		},
		{
			ID:          "legal_scholar",
			Name:        "Prof. Amara Diallo",
			Persona:     "precise, principled",
			Role:        "legal scholar",
			Expertise:   "technology regulation",
			Style:       "formal",
			Description: "Regulatory and precedent-based reasoning",
		},
	}
}

// Get returns the builtin template with the given ID, or nil.
func Get(id string) *Template {
	for _, t := range Builtin() {
		if t.ID == id {
			out := t
			return &out
		}
	}
	return nil
}

// IDs returns the builtin template IDs in declaration order.
func IDs() []string {
	builtin := Builtin()
	ids := make([]string, len(builtin))
	for i, t := range builtin {
		ids[i] = t.ID
	}
	return ids
}
