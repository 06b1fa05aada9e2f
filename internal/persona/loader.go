package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// LoadFile reads custom templates from a JSON file mapping template IDs to
// template definitions:
//
//	{"security_expert": {"name": "...", "persona": "...", "role": "..."}}
//
// Returned templates are sorted by ID for stable listings.
func LoadFile(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template file: %w", err)
	}

	var byID map[string]Template
	if err := json.Unmarshal(data, &byID); err != nil {
		return nil, fmt.Errorf("parse template file %s: %w", path, err)
	}

	templates := make([]Template, 0, len(byID))
	for id, t := range byID {
		if t.Name == "" {
			return nil, fmt.Errorf("template %q has no name", id)
		}
		t.ID = id
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

// Resolve looks up an ID among customs first, then builtins.
func Resolve(id string, customs []Template) *Template {
	for _, t := range customs {
		if t.ID == id {
			out := t
			return &out
		}
	}
	return Get(id)
}
