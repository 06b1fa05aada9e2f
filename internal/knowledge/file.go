package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileRetriever serves passages from per-domain JSON files: <root>/<domain>.json
// holding an array of {content, source} objects. Files are loaded lazily and
// cached for the retriever's lifetime. A domain without a file yields no
// passages rather than an error.
type FileRetriever struct {
	root string

	mu    sync.Mutex
	cache map[string][]Passage
}

// NewFileRetriever creates a retriever rooted at dir.
func NewFileRetriever(dir string) *FileRetriever {
	return &FileRetriever{root: dir, cache: make(map[string][]Passage)}
}

// Retrieve returns up to topK passages for the domain, ranked by query
// token overlap.
func (r *FileRetriever) Retrieve(ctx context.Context, domain, query string, topK int) ([]Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if domain == "" || topK <= 0 {
		return nil, nil
	}

	passages, err := r.load(domain)
	if err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		return nil, nil
	}

	type scored struct {
		p     Passage
		score int
		idx   int
	}
	queryTokens := tokenize(query)
	ranked := make([]scored, 0, len(passages))
	for i, p := range passages {
		s := overlap(queryTokens, tokenize(p.Content))
		if s == 0 {
			continue
		}
		ranked = append(ranked, scored{p: p, score: s, idx: i})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].idx < ranked[j].idx
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	out := make([]Passage, len(ranked))
	for i, s := range ranked {
		out[i] = s.p
	}
	return out, nil
}

// Domains lists the domains that have a knowledge file.
func (r *FileRetriever) Domains() []string {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil
	}
	var domains []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		domains = append(domains, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(domains)
	return domains
}

func (r *FileRetriever) load(domain string) ([]Passage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[domain]; ok {
		return cached, nil
	}

	path := filepath.Join(r.root, domain+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.cache[domain] = nil
			return nil, nil
		}
		return nil, fmt.Errorf("read knowledge file for %s: %w", domain, err)
	}

	var passages []Passage
	if err := json.Unmarshal(data, &passages); err != nil {
		return nil, fmt.Errorf("parse knowledge file for %s: %w", domain, err)
	}
	r.cache[domain] = passages
	return passages, nil
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ".,;:!?\"'()[]")
		if len(f) > 2 {
			tokens[f] = true
		}
	}
	return tokens
}

func overlap(a, b map[string]bool) int {
	n := 0
	for t := range a {
		if b[t] {
			n++
		}
	}
	return n
}
