package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestChecker(t *testing.T, h http.HandlerFunc) *Checker {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewChecker(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Logger:  zap.NewNop(),
	})
}

func TestChecker_Models(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data": []map[string]any{
				{"id": "text-embedding-ada-002", "object": "model"},
				{"id": "gpt-3.5-turbo", "object": "model"},
			},
		})
	})

	ids, err := c.Models(context.Background())
	if err != nil {
		t.Fatalf("Models failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "text-embedding-ada-002" {
		t.Errorf("unexpected ids: %v", ids)
	}
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}

func TestChecker_KeyRejected(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	})

	err := c.HealthCheck(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrKeyRejected) {
		t.Errorf("expected ErrKeyRejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "Incorrect API key") {
		t.Errorf("error should carry API message: %v", err)
	}
}

func TestChecker_ServerError(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"upstream down"}`))
	})

	err := c.HealthCheck(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrKeyRejected) {
		t.Errorf("500 must not be reported as key rejection: %v", err)
	}
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"error":{"message":"bad key"}}`, "bad key"},
		{`{"detail":"quota"}`, "quota"},
		{`not json`, ""},
		{`{}`, ""},
	}
	for _, tc := range tests {
		if got := extractMessage([]byte(tc.body)); got != tc.want {
			t.Errorf("extractMessage(%q) = %q, want %q", tc.body, got, tc.want)
		}
	}
}
