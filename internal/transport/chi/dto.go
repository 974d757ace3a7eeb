package chi

import (
	"time"

	"github.com/kailas-cloud/magicchat/internal/domain/chat"
	"github.com/kailas-cloud/magicchat/internal/domain/search/catalog"
	chatuc "github.com/kailas-cloud/magicchat/internal/usecase/chat"
)

// ModeResponse describes one search mode.
type ModeResponse struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	MaxResults   int    `json:"max_results"`
	DefaultLimit int    `json:"default_limit"`
}

// PromptResponse is a preset example prompt.
type PromptResponse struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Help  string `json:"help"`
}

// TurnResponse is one chat turn with its images grouped into display rows.
type TurnResponse struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Mode      string         `json:"mode,omitempty"`
	Rows      [][]chat.Image `json:"rows,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// SessionResponse is a session with its full history.
type SessionResponse struct {
	ID        string         `json:"id"`
	State     string         `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
	Turns     []TurnResponse `json:"turns"`
}

// TurnRequest is the body of POST /api/sessions/{session}/turns.
type TurnRequest struct {
	Text   string `json:"text"`
	Preset *int   `json:"preset,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// TurnReplyResponse is the assistant turn produced by a request.
type TurnReplyResponse struct {
	Turn  TurnResponse `json:"turn"`
	Limit int          `json:"limit"`
}

type chunkEvent struct {
	Text string `json:"text"`
}

func (r TurnRequest) input() chatuc.Input {
	return chatuc.Input{Text: r.Text, Preset: r.Preset, Mode: r.Mode, Limit: r.Limit}
}

func modesToResponse() []ModeResponse {
	specs := catalog.All()
	out := make([]ModeResponse, len(specs))
	for i, s := range specs {
		out[i] = ModeResponse{
			Name:         string(s.Mode),
			Description:  s.Description,
			MaxResults:   s.MaxResults,
			DefaultLimit: s.ClampLimit(0),
		}
	}
	return out
}

func promptsToResponse() []PromptResponse {
	prompts := catalog.Prompts()
	out := make([]PromptResponse, len(prompts))
	for i, p := range prompts {
		out[i] = PromptResponse{Index: i, Text: p.Text, Help: p.Help}
	}
	return out
}

func turnToResponse(t chat.Turn) TurnResponse {
	resp := TurnResponse{
		Role:      string(t.Role),
		Content:   t.Content,
		Mode:      string(t.Mode),
		CreatedAt: t.CreatedAt,
	}
	if len(t.Images) > 0 {
		resp.Rows = chat.Grid(t.Images, chat.RowWidth)
	}
	return resp
}

func sessionToResponse(s *chat.Session) SessionResponse {
	turns := make([]TurnResponse, 0, s.Len())
	for t := range s.Replay() {
		turns = append(turns, turnToResponse(t))
	}
	return SessionResponse{
		ID:        s.ID(),
		State:     s.State().String(),
		CreatedAt: s.CreatedAt(),
		Turns:     turns,
	}
}

func replyToResponse(r chatuc.Reply) TurnReplyResponse {
	return TurnReplyResponse{Turn: turnToResponse(r.Turn), Limit: r.Limit}
}
