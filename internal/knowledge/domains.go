package knowledge

import "strings"

// DomainMap resolves a participant's role to a knowledge domain. Explicit
// mappings supplied at configuration time are the mechanism of record; the
// builtin substring heuristic is only the fallback default.
type DomainMap struct {
	explicit map[string]string
}

// roleKeywords is the fallback: ordered so that more specific phrases win.
var roleKeywords = []struct {
	keyword string
	domain  string
}{
	{"medical researcher", "medical"},
	{"doctor", "medical"},
	{"physician", "medical"},
	{"healthcare", "medical"},

	{"startup founder", "tech"},
	{"engineer", "tech"},
	{"entrepreneur", "tech"},
	{"developer", "tech"},
	{"cto", "tech"},

	{"philosopher", "ethics"},
	{"ethicist", "ethics"},
	{"social activist", "ethics"},
	{"activist", "ethics"},

	{"lawyer", "legal"},
	{"attorney", "legal"},
	{"legal scholar", "legal"},
	{"judge", "legal"},

	{"economist", "economics"},
	{"business analyst", "economics"},
	{"financial analyst", "economics"},
	{"market researcher", "economics"},
}

// NewDomainMap creates a map with the given explicit role-to-domain
// entries. Keys are matched case-insensitively.
func NewDomainMap(explicit map[string]string) *DomainMap {
	m := make(map[string]string, len(explicit))
	for role, domain := range explicit {
		m[strings.ToLower(role)] = domain
	}
	return &DomainMap{explicit: m}
}

// DomainFor resolves a role. Explicit entries are checked first; then the
// substring fallback. Empty means no domain is known for the role.
func (d *DomainMap) DomainFor(role string) string {
	lower := strings.ToLower(strings.TrimSpace(role))
	if lower == "" {
		return ""
	}
	if domain, ok := d.explicit[lower]; ok {
		return domain
	}
	for _, rk := range roleKeywords {
		if strings.Contains(lower, rk.keyword) {
			return rk.domain
		}
	}
	return ""
}
