package weaviate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/magicchat/internal/domain"
	"github.com/kailas-cloud/magicchat/internal/domain/search/query"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		URL:       srv.URL,
		APIKey:    "wv-key",
		OpenAIKey: "sk-test",
		Class:     "Card",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestSearch_Success(t *testing.T) {
	var gotDoc string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/graphql" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer wv-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("X-OpenAI-Api-Key"); got != "sk-test" {
			t.Errorf("X-OpenAI-Api-Key = %q", got)
		}
		var body struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gotDoc = body.Query
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	})

	set, err := c.Search(context.Background(), query.BM25{Query: "Vampires", Limit: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if set.Len() != 2 {
		t.Errorf("rows = %d, want 2", set.Len())
	}
	if !strings.Contains(gotDoc, `bm25: { query: "Vampires" }`) {
		t.Errorf("posted document:\n%s", gotDoc)
	}
}

func TestSearch_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":[{"message":"anonymous access not enabled"}]}`))
	})

	_, err := c.Search(context.Background(), query.Vector{Concepts: []string{"x"}, Limit: 1})
	if !errors.Is(err, domain.ErrExternalQuery) {
		t.Fatalf("expected ErrExternalQuery, got %v", err)
	}
	var qe *domain.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected *domain.QueryError, got %T", err)
	}
	if qe.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d", qe.Status)
	}
	if qe.Message != "anonymous access not enabled" {
		t.Errorf("Message = %q", qe.Message)
	}
}

func TestSearch_GraphQLError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"Cannot query field \"nope\""}]}`))
	})

	_, err := c.Search(context.Background(), query.Hybrid{Query: "x", Alpha: 0.5, Limit: 1})
	if !errors.Is(err, domain.ErrExternalQuery) {
		t.Fatalf("expected ErrExternalQuery, got %v", err)
	}
	if !strings.Contains(err.Error(), "Cannot query field") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestSearch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{URL: url})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.Search(context.Background(), query.BM25{Query: "x", Limit: 1})
	if !errors.Is(err, domain.ErrExternalQuery) {
		t.Fatalf("expected ErrExternalQuery, got %v", err)
	}
}

func TestSearch_InvalidQueryNotSent(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if _, err := c.Search(context.Background(), query.BM25{Query: "x", Limit: 0}); err == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Error("invalid query must not reach the server")
	}
}

func TestHealthCheck(t *testing.T) {
	status := http.StatusOK
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/.well-known/ready" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(status)
	})

	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	status = http.StatusServiceUnavailable
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for 503")
	}
}

func TestNewClient_URL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://cards.weaviate.network/", "https://cards.weaviate.network", false},
		{"cards.weaviate.network", "https://cards.weaviate.network", false},
		{"http://localhost:8080", "http://localhost:8080", false},
		{"", "", true},
		{"https://", "", true},
	}
	for _, tc := range tests {
		c, err := NewClient(Config{URL: tc.in})
		if (err != nil) != tc.wantErr {
			t.Fatalf("NewClient(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if err == nil && c.baseURL != tc.want {
			t.Errorf("NewClient(%q).baseURL = %q, want %q", tc.in, c.baseURL, tc.want)
		}
		if err == nil && c.Class() != "Card" {
			t.Errorf("default class = %q", c.Class())
		}
	}
}
