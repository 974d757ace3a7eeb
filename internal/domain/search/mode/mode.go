package mode

import "strings"

// Mode is the retrieval strategy used for a chat turn.
type Mode string

// Search mode constants, in display order.
const (
	// BM25 ranks cards by keyword frequency.
	BM25 Mode = "BM25"
	// Vector finds cards nearest to the query concepts.
	Vector Mode = "Vector"
	// Hybrid blends BM25 and vector scores.
	Hybrid Mode = "Hybrid"
	// Generative runs a vector search and asks the language model to summarize the hits.
	Generative Mode = "Generative"
)

// All returns every supported mode in display order.
func All() []Mode {
	return []Mode{BM25, Vector, Hybrid, Generative}
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == BM25 || m == Vector || m == Hybrid || m == Generative
}

// Parse resolves a mode name case-insensitively.
func Parse(s string) (Mode, bool) {
	for _, m := range All() {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, true
		}
	}
	return "", false
}

// IsGenerative reports whether the mode produces a generated summary.
func (m Mode) IsGenerative() bool { return m == Generative }
