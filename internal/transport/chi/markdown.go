package chi

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

// md renders without html.WithUnsafe: raw HTML is omitted and dangerous link
// schemes are dropped.
var md = goldmark.New()

// renderMarkdown converts turn text to HTML for the chat page.
func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text)) //nolint:gosec // escaped above
	}
	return template.HTML(buf.String()) //nolint:gosec // goldmark output without unsafe mode
}
