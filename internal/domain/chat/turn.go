// Package chat models a chat session: turns, the append-only history buffer and
// the per-session turn state.
package chat

import (
	"slices"
	"time"

	"github.com/kailas-cloud/magicchat/internal/domain/search/mode"
)

// Role identifies who authored a turn.
type Role string

// Turn roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Image is one cell of a result grid. A cell without URL carries a placeholder text.
type Image struct {
	URL         string `json:"url,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// IsPlaceholder reports whether the cell has no image reference.
func (i Image) IsPlaceholder() bool { return i.URL == "" }

// Turn is one chat message.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Images    []Image   `json:"images,omitempty"`
	Mode      mode.Mode `json:"mode,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// clone returns a copy that shares no mutable state with t.
func (t Turn) clone() Turn {
	t.Images = slices.Clone(t.Images)
	return t
}
