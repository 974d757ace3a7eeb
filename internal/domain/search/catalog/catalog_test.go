package catalog

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/magicchat/internal/domain"
	"github.com/kailas-cloud/magicchat/internal/domain/search/mode"
	"github.com/kailas-cloud/magicchat/internal/domain/search/query"
)

func TestGet_MaxResults(t *testing.T) {
	want := map[mode.Mode]int{
		mode.BM25:       30,
		mode.Vector:     15,
		mode.Hybrid:     15,
		mode.Generative: 9,
	}
	for m, max := range want {
		s, err := Get(m)
		if err != nil {
			t.Fatalf("Get(%q): %v", m, err)
		}
		if s.MaxResults != max {
			t.Errorf("Get(%q).MaxResults = %d, want %d", m, s.MaxResults, max)
		}
		if s.Description == "" {
			t.Errorf("Get(%q).Description is empty", m)
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	_, err := Get(mode.Mode("semantic"))
	if !errors.Is(err, domain.ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	s, err := Lookup("generative")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if s.Mode != mode.Generative {
		t.Errorf("Mode = %q, want %q", s.Mode, mode.Generative)
	}
	if _, err := Lookup("nope"); !errors.Is(err, domain.ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

func TestAll_DisplayOrder(t *testing.T) {
	all := All()
	if len(all) != 4 {
		t.Fatalf("All() len = %d, want 4", len(all))
	}
	for i, m := range mode.All() {
		if all[i].Mode != m {
			t.Errorf("All()[%d].Mode = %q, want %q", i, all[i].Mode, m)
		}
	}
}

func TestClampLimit(t *testing.T) {
	s, _ := Get(mode.Generative)
	tests := []struct {
		in, want int
	}{
		{0, DefaultLimit},
		{-3, DefaultLimit},
		{1, 1},
		{9, 9},
		{10, 9},
		{100, 9},
	}
	for _, tc := range tests {
		if got := s.ClampLimit(tc.in); got != tc.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestBuild_Variants(t *testing.T) {
	tests := []struct {
		m    mode.Mode
		want query.Query
	}{
		{mode.BM25, query.BM25{Query: "vampires", Limit: 5}},
		{mode.Vector, query.Vector{Concepts: []string{"vampires"}, Limit: 5}},
		{mode.Hybrid, query.Hybrid{Query: "vampires", Alpha: 0.5, Limit: 5}},
	}
	for _, tc := range tests {
		s, _ := Get(tc.m)
		got := s.Build("vampires", 5)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Build(%q) = %#v, want %#v", tc.m, got, tc.want)
		}
	}
}

func TestBuild_GenerativeTask(t *testing.T) {
	s, _ := Get(mode.Generative)
	q, ok := s.Build("vampires", 20).(query.Generative)
	if !ok {
		t.Fatalf("expected query.Generative, got %T", s.Build("vampires", 20))
	}
	if q.Limit != 9 {
		t.Errorf("Limit = %d, want clamped 9", q.Limit)
	}
	if !strings.HasSuffix(q.Task, "Use the context of the user query: vampires") {
		t.Errorf("Task = %q", q.Task)
	}
	if !reflect.DeepEqual(q.Concepts, []string{"vampires"}) {
		t.Errorf("Concepts = %v", q.Concepts)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	for _, s := range All() {
		a := s.Build("blue sorcery", 4)
		b := s.Build("blue sorcery", 4)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%q: Build not deterministic: %#v vs %#v", s.Mode, a, b)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Vampires  ", "vampires"},
		{"Black LOTUS\n", "black lotus"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Sanitize(tc.in); got != tc.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPrompts(t *testing.T) {
	ps := Prompts()
	if len(ps) != 6 {
		t.Fatalf("Prompts() len = %d, want 6", len(ps))
	}
	for i, p := range ps {
		if p.Text == "" || p.Help == "" {
			t.Errorf("prompt %d has empty fields: %+v", i, p)
		}
	}

	p, err := PromptAt(4)
	if err != nil {
		t.Fatalf("PromptAt(4): %v", err)
	}
	if p.Text != "The famous 'Black Lotus' card" {
		t.Errorf("PromptAt(4).Text = %q", p.Text)
	}

	for _, i := range []int{-1, 6} {
		if _, err := PromptAt(i); !errors.Is(err, domain.ErrInvalidPreset) {
			t.Errorf("PromptAt(%d): expected ErrInvalidPreset, got %v", i, err)
		}
	}
}
