package chat

import "iter"

// History is an append-only ordered log of turns. It is not safe for concurrent
// use; Session serializes access.
type History struct {
	turns []Turn
}

// Append adds a turn at the end.
func (h *History) Append(t Turn) {
	h.turns = append(h.turns, t.clone())
}

// Replay yields every turn in insertion order.
func (h *History) Replay() iter.Seq[Turn] {
	return func(yield func(Turn) bool) {
		for _, t := range h.turns {
			if !yield(t.clone()) {
				return
			}
		}
	}
}

// Len returns the number of turns.
func (h *History) Len() int { return len(h.turns) }
