// Package query holds the typed vector database queries, one variant per search mode.
//
// Queries are plain values; turning them into a wire document is the job of the
// database adapter's encoder. User text is carried as data and never spliced into
// a query string.
package query

import "github.com/kailas-cloud/magicchat/internal/domain/search/mode"

// Query is a typed search query. The concrete type is one of BM25, Vector, Hybrid, Generative.
type Query interface {
	Mode() mode.Mode
	sealed()
}

// BM25 is a keyword query.
type BM25 struct {
	Query string
	Limit int
}

// Vector is a nearest-neighbor query over the given concepts.
type Vector struct {
	Concepts []string
	Limit    int
}

// Hybrid blends keyword and vector scoring. Alpha=1 is pure vector, 0 is pure BM25.
type Hybrid struct {
	Query string
	Alpha float64
	Limit int
}

// Generative is a vector query followed by a grouped generation task over the hits.
type Generative struct {
	Concepts []string
	Limit    int
	Task     string
}

// Mode implements Query.
func (BM25) Mode() mode.Mode { return mode.BM25 }

// Mode implements Query.
func (Vector) Mode() mode.Mode { return mode.Vector }

// Mode implements Query.
func (Hybrid) Mode() mode.Mode { return mode.Hybrid }

// Mode implements Query.
func (Generative) Mode() mode.Mode { return mode.Generative }

func (BM25) sealed()       {}
func (Vector) sealed()     {}
func (Hybrid) sealed()     {}
func (Generative) sealed() {}

// LimitOf returns the result cap of any query variant.
func LimitOf(q Query) int {
	switch v := q.(type) {
	case BM25:
		return v.Limit
	case Vector:
		return v.Limit
	case Hybrid:
		return v.Limit
	case Generative:
		return v.Limit
	default:
		return 0
	}
}
