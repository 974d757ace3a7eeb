// Package catalog is the fixed table of search modes: description, result cap and
// the typed query each mode builds, plus the preset example prompts.
package catalog

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/magicchat/internal/domain"
	"github.com/kailas-cloud/magicchat/internal/domain/search/mode"
	"github.com/kailas-cloud/magicchat/internal/domain/search/query"
)

// DefaultLimit is the result count used when the caller does not pick one.
const DefaultLimit = 6

// HybridAlpha weights vector and keyword scores equally.
const HybridAlpha = 0.5

// recommendTask is the grouped generation prompt; the user query is appended.
const recommendTask = "Based on the Magic The Gathering Cards, which one would you recommend and why. " +
	"Use the context of the user query: "

// Spec describes one search mode.
type Spec struct {
	Mode        mode.Mode
	Description string
	MaxResults  int
	build       func(input string, limit int) query.Query
}

// Build returns the typed query for input, with limit clamped to the mode's bounds.
func (s Spec) Build(input string, limit int) query.Query {
	return s.build(input, s.ClampLimit(limit))
}

// ClampLimit bounds limit to [1, MaxResults]. Non-positive values select DefaultLimit.
func (s Spec) ClampLimit(limit int) int {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > s.MaxResults {
		limit = s.MaxResults
	}
	return limit
}

var specs = []Spec{
	{
		Mode: mode.BM25,
		Description: "BM25 is a method used by search engines to rank documents based on their relevance " +
			"to a given query, factoring in both the frequency of keywords and the length of the document.",
		MaxResults: 30,
		build: func(input string, limit int) query.Query {
			return query.BM25{Query: input, Limit: limit}
		},
	},
	{
		Mode: mode.Vector,
		Description: "Vector search is a method used by search engines to find and rank results based on " +
			"their similarity to your search query. Instead of just matching keywords, it understands the " +
			"context and meaning behind your search, offering more relevant and nuanced results.",
		MaxResults: 15,
		build: func(input string, limit int) query.Query {
			return query.Vector{Concepts: []string{input}, Limit: limit}
		},
	},
	{
		Mode: mode.Hybrid,
		Description: "Hybrid search combines vector and BM25 methods to offer better search results. " +
			"It leverages the precision of BM25's keyword-based ranking with vector search's ability to " +
			"understand context and semantic meaning. Providing results that are both directly relevant " +
			"to the query and contextually related.",
		MaxResults: 15,
		build: func(input string, limit int) query.Query {
			return query.Hybrid{Query: input, Alpha: HybridAlpha, Limit: limit}
		},
	},
	{
		Mode: mode.Generative,
		Description: "Generative search is an advanced method that combines information retrieval with AI " +
			"language models. After finding relevant documents using search techniques like vector and " +
			"BM25, the found information is used as an input to a language model, which generates " +
			"further contextually related information.",
		MaxResults: 9,
		build: func(input string, limit int) query.Query {
			return query.Generative{
				Concepts: []string{input},
				Limit:    limit,
				Task:     recommendTask + input,
			}
		},
	},
}

// Get returns the spec for m.
func Get(m mode.Mode) (Spec, error) {
	for _, s := range specs {
		if s.Mode == m {
			return s, nil
		}
	}
	return Spec{}, fmt.Errorf("%w: %q", domain.ErrUnknownMode, m)
}

// Lookup resolves a mode name case-insensitively and returns its spec.
func Lookup(name string) (Spec, error) {
	m, ok := mode.Parse(name)
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", domain.ErrUnknownMode, name)
	}
	return Get(m)
}

// All returns every spec in display order.
func All() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Sanitize normalizes a user utterance before it is placed into a query.
func Sanitize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
