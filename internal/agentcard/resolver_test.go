package agentcard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func cardServer(t *testing.T, card AgentCard, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != WellKnownPath {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(card)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestEndpointDerivation(t *testing.T) {
	var hits atomic.Int64
	server := cardServer(t, AgentCard{Name: "seller", URL: "http://ignored.example"}, &hits)

	dir := NewMemoryDirectory()
	if err := dir.Register(context.Background(), "seller-1", server.URL); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(dir)
	endpoint, err := r.Endpoint(context.Background(), "seller-1")
	if err != nil {
		t.Fatalf("Endpoint: %v", err)
	}
	want := server.URL + "/a2a"
	if endpoint != want {
		t.Errorf("endpoint = %q, want %q", endpoint, want)
	}
}

func TestResolveCaches(t *testing.T) {
	var hits atomic.Int64
	server := cardServer(t, AgentCard{Name: "seller", URL: "http://s.example"}, &hits)

	r := NewResolver(NewMemoryDirectory(), WithCacheTTL(time.Minute))
	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(context.Background(), server.URL); err != nil {
			t.Fatalf("Resolve #%d: %v", i, err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("card fetched %d times, want 1", got)
	}

	r.InvalidateCache(server.URL)
	if _, err := r.Resolve(context.Background(), server.URL); err != nil {
		t.Fatal(err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("card fetched %d times after invalidation, want 2", got)
	}
}

func TestResolveRejectsIncompleteCard(t *testing.T) {
	var hits atomic.Int64
	server := cardServer(t, AgentCard{Name: "seller"}, &hits)

	r := NewResolver(NewMemoryDirectory())
	_, err := r.Resolve(context.Background(), server.URL)
	if err == nil || !strings.Contains(err.Error(), "url") {
		t.Fatalf("Resolve error = %v, want missing-url validation failure", err)
	}
}

func TestEndpointUnknownAgent(t *testing.T) {
	r := NewResolver(NewMemoryDirectory())
	_, err := r.Endpoint(context.Background(), "nobody")
	if !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("Endpoint error = %v, want ErrAgentNotFound", err)
	}
}

func TestBuildCardURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://host:8080", "http://host:8080" + WellKnownPath},
		{"http://host:8080/", "http://host:8080" + WellKnownPath},
		{"host.example", "https://host.example" + WellKnownPath},
		{"http://host/.well-known/agent-card.json", "http://host/.well-known/agent-card.json"},
	}
	for _, tt := range tests {
		got, err := buildCardURL(tt.base)
		if err != nil {
			t.Errorf("buildCardURL(%q): %v", tt.base, err)
			continue
		}
		if got != tt.want {
			t.Errorf("buildCardURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
	if _, err := buildCardURL("  "); err == nil {
		t.Error("buildCardURL(blank) = nil error, want failure")
	}
}
