package chat

import (
	"iter"
	"slices"
	"strings"
)

// RowWidth is the number of image cells per grid row.
const RowWidth = 3

// Grid groups items into rows of width cells, keeping order. The last row holds
// the remainder.
func Grid[T any](items []T, width int) [][]T {
	if width < 1 {
		width = RowWidth
	}
	return slices.Collect(slices.Chunk(items, width))
}

// Chunks splits a reply into word tokens for an incremental reveal. Each token
// carries its trailing space, so concatenating all tokens rebuilds the text.
func Chunks(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for w := range strings.FieldsSeq(text) {
			if !yield(w + " ") {
				return
			}
		}
	}
}
