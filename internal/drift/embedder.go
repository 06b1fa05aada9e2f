package drift

import (
	"hash/fnv"
	"strings"
)

const lexicalDims = 256

// LexicalEmbedder is a deterministic bag-of-words embedder hashing tokens
// into a fixed-size vector. It is a stand-in for a real sentence embedder;
// a semantic model can be dropped in behind the Embedder interface without
// touching the controller.
type LexicalEmbedder struct{}

// Embed hashes each token of the text into one of the vector dimensions.
func (LexicalEmbedder) Embed(text string) []float32 {
	vec := make([]float32, lexicalDims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,;:!?\"'()[]")
		if len(tok) < 3 {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%lexicalDims]++
	}
	return vec
}
