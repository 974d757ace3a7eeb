package weaviate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/magicchat/internal/domain/search/query"
)

// CardFields are the scalar properties selected for every card.
var CardFields = []string{
	"name",
	"card_id",
	"img",
	"mana_cost",
	"type",
	"mana_produced",
	"power",
	"toughness",
	"color",
	"keyword",
	"set",
	"rarity",
	"description",
}

var classNameRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)

// Encode renders q as a GraphQL Get document against class.
// Output is deterministic: equal inputs give byte-identical documents.
func Encode(class string, q query.Query) (string, error) {
	if !classNameRe.MatchString(class) {
		return "", fmt.Errorf("invalid class name %q", class)
	}

	var args, task string
	switch v := q.(type) {
	case query.BM25:
		args = fmt.Sprintf("bm25: { query: %s }", quote(v.Query))
	case query.Vector:
		args = fmt.Sprintf("nearText: { concepts: %s }", quoteList(v.Concepts))
	case query.Hybrid:
		args = fmt.Sprintf("hybrid: { query: %s alpha: %s }",
			quote(v.Query), strconv.FormatFloat(v.Alpha, 'f', -1, 64))
	case query.Generative:
		args = fmt.Sprintf("nearText: { concepts: %s }", quoteList(v.Concepts))
		task = v.Task
	default:
		return "", fmt.Errorf("unsupported query type %T", q)
	}

	limit := query.LimitOf(q)
	if limit <= 0 {
		return "", fmt.Errorf("limit must be positive, got %d", limit)
	}

	w := &docWriter{}
	w.line("{")
	w.open("Get {")
	w.open(fmt.Sprintf("%s(limit: %d, %s) {", class, limit, args))
	for _, f := range CardFields {
		w.line(f)
	}
	w.open("_additional {")
	if _, ok := q.(query.Generative); ok {
		w.open("generate(")
		w.open("groupedResult: {")
		w.line("task: " + quote(task))
		w.close("}")
		w.indent--
		w.open(") {")
		w.line("groupedResult")
		w.line("error")
		w.close("}")
	}
	w.line("id")
	w.line("distance")
	w.line("vector")
	w.close("}")
	w.close("}")
	w.close("}")
	w.buf.WriteString("}")
	return w.buf.String(), nil
}

// docWriter writes an indented GraphQL document.
type docWriter struct {
	buf    strings.Builder
	indent int
}

func (w *docWriter) line(s string) {
	w.buf.WriteString(strings.Repeat("  ", w.indent))
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

func (w *docWriter) open(s string) {
	w.line(s)
	w.indent++
}

func (w *docWriter) close(s string) {
	w.indent--
	w.line(s)
}

// quote renders s as a GraphQL string literal. JSON string syntax is a subset of
// GraphQL's, so the JSON encoder does the escaping.
func quote(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode
	return strings.TrimSuffix(b.String(), "\n")
}

func quoteList(ss []string) string {
	parts := make([]string, len(ss))
	for i, s := range ss {
		parts[i] = quote(s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
