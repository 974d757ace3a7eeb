package chi

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/magicchat/internal/domain"
	"github.com/kailas-cloud/magicchat/internal/domain/chat"
	"github.com/kailas-cloud/magicchat/internal/domain/search/catalog"
	chatuc "github.com/kailas-cloud/magicchat/internal/usecase/chat"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("chat.html").
	Funcs(template.FuncMap{"markdown": renderMarkdown}).
	ParseFS(templateFS, "templates/chat.html"))

// modeOption is one mode radio. MaxResults and Description let the page update
// the slider bound and the description as soon as the radio changes.
type modeOption struct {
	Name        string
	Description string
	MaxResults  int
	Selected    bool
}

type pageData struct {
	SessionID       string
	Turns           []TurnResponse
	Modes           []modeOption
	Mode            string
	ModeDescription string
	Limit           int
	MaxLimit        int
	Prompts         []PromptResponse
	Error           string
}

func newPageData(sess *chat.Session, modeName string, limit int, errMsg string) pageData {
	spec, err := catalog.Lookup(modeName)
	if err != nil {
		spec, _ = catalog.Get(chatuc.DefaultMode)
	}

	specs := catalog.All()
	modes := make([]modeOption, len(specs))
	for i, sp := range specs {
		modes[i] = modeOption{
			Name:        string(sp.Mode),
			Description: sp.Description,
			MaxResults:  sp.MaxResults,
			Selected:    sp.Mode == spec.Mode,
		}
	}

	return pageData{
		SessionID:       sess.ID(),
		Turns:           sessionToResponse(sess).Turns,
		Modes:           modes,
		Mode:            string(spec.Mode),
		ModeDescription: spec.Description,
		Limit:           spec.ClampLimit(limit),
		MaxLimit:        spec.MaxResults,
		Prompts:         promptsToResponse(),
		Error:           errMsg,
	}
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("render chat page", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// formInput reads the page form. An unparsable preset selects an invalid index.
func formInput(r *http.Request) chatuc.Input {
	in := chatuc.Input{
		Text:  r.PostForm.Get("text"),
		Mode:  r.PostForm.Get("mode"),
		Limit: atoi(r.PostForm.Get("limit")),
	}
	if v := r.PostForm.Get("preset"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			i = -1
		}
		in.Preset = &i
	}
	return in
}

// pageError is the banner text shown for a failed turn.
func pageError(err error) string {
	var qe *domain.QueryError
	if errors.As(err, &qe) {
		if qe.Status != 0 {
			return fmt.Sprintf("The card search failed (status %d): %s", qe.Status, qe.Message)
		}
		return "The card search failed: " + qe.Message
	}
	if errors.Is(err, domain.ErrExternalQuery) {
		return "The card search failed."
	}
	return safeDomainMessage(err)
}

func pageURL(sessionID, mode string, limit int) string {
	q := url.Values{}
	if mode != "" {
		q.Set("mode", mode)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u := "/chat/" + url.PathEscape(sessionID)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
