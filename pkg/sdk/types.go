package magicchat

import (
	"time"

	"github.com/kailas-cloud/magicchat/internal/domain/chat"
	"github.com/kailas-cloud/magicchat/internal/domain/search/catalog"
	"github.com/kailas-cloud/magicchat/internal/domain/search/mode"
	chatuc "github.com/kailas-cloud/magicchat/internal/usecase/chat"
)

// DefaultMode is the search mode used when Input.Mode is empty.
const DefaultMode = string(chatuc.DefaultMode)

// Input is one user interaction.
type Input struct {
	// Text is the typed query. Ignored when Preset is set.
	Text string
	// Preset selects an example prompt by index (see Client.Prompts).
	Preset *int
	// Mode is one of BM25, Vector, Hybrid, Generative (case-insensitive).
	Mode string
	// Limit is the requested result count; 0 selects the default.
	Limit int
}

// Preset returns a pointer to i, for Input.Preset.
func Preset(i int) *int { return &i }

// Image is one cell of a result grid. URL is empty for cards without an image.
type Image struct {
	URL         string
	Placeholder string
}

// Turn is one chat message.
type Turn struct {
	Role      string // "user" or "assistant"
	Content   string
	Mode      string
	Images    []Image
	CreatedAt time.Time
}

// Reply is the assistant's answer to one Input.
type Reply struct {
	Content string
	Mode    string
	// Rows groups the result images three per row.
	Rows [][]Image
	// Limit is the effective result cap after clamping.
	Limit int
}

// ModeInfo describes a search mode.
type ModeInfo struct {
	Name        string
	Description string
	MaxResults  int
}

// Prompt is a preset example query.
type Prompt struct {
	Text string
	Help string
}

// Modes lists the supported search modes in display order.
func (c *Client) Modes() []ModeInfo {
	specs := catalog.All()
	out := make([]ModeInfo, len(specs))
	for i, s := range specs {
		out[i] = ModeInfo{
			Name:        string(s.Mode),
			Description: s.Description,
			MaxResults:  s.MaxResults,
		}
	}
	return out
}

// Prompts lists the preset example prompts.
func (c *Client) Prompts() []Prompt {
	ps := catalog.Prompts()
	out := make([]Prompt, len(ps))
	for i, p := range ps {
		out[i] = Prompt{Text: p.Text, Help: p.Help}
	}
	return out
}

// ParseMode reports whether name is a supported mode and returns its canonical form.
func ParseMode(name string) (string, bool) {
	m, ok := mode.Parse(name)
	return string(m), ok
}

func fromInternalImages(imgs []chat.Image) []Image {
	if len(imgs) == 0 {
		return nil
	}
	out := make([]Image, len(imgs))
	for i, img := range imgs {
		out[i] = Image{URL: img.URL, Placeholder: img.Placeholder}
	}
	return out
}

func fromInternalTurn(t chat.Turn) Turn {
	return Turn{
		Role:      string(t.Role),
		Content:   t.Content,
		Mode:      string(t.Mode),
		Images:    fromInternalImages(t.Images),
		CreatedAt: t.CreatedAt,
	}
}

func fromInternalReply(r chatuc.Reply) Reply {
	rows := make([][]Image, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = fromInternalImages(row)
	}
	return Reply{
		Content: r.Turn.Content,
		Mode:    string(r.Turn.Mode),
		Rows:    rows,
		Limit:   r.Limit,
	}
}
