package agentcard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// WellKnownPath is the standard A2A agent card path.
	WellKnownPath = "/.well-known/agent-card.json"
	// DefaultCacheTTL is how long resolved cards are cached.
	DefaultCacheTTL = 5 * time.Minute
	// DefaultTimeout bounds the card fetch. A counterparty that hangs here
	// fails the contacting step before any room is claimed.
	DefaultTimeout = 10 * time.Second
)

// Resolver turns a directory entry into a live negotiation endpoint by
// fetching the counterparty's agent card.
type Resolver struct {
	directory  Directory
	httpClient *http.Client
	cache      map[string]*cacheEntry
	cacheMu    sync.RWMutex
	cacheTTL   time.Duration
}

type cacheEntry struct {
	card      *ResolvedAgentCard
	expiresAt time.Time
}

// ResolverOption configures the Resolver.
type ResolverOption func(*Resolver)

func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) { r.cacheTTL = ttl }
}

func WithHTTPClient(client *http.Client) ResolverOption {
	return func(r *Resolver) { r.httpClient = client }
}

func NewResolver(directory Directory, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		directory: directory,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		cache:    make(map[string]*cacheEntry),
		cacheTTL: DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Endpoint resolves an agent id to its A2A message endpoint.
func (r *Resolver) Endpoint(ctx context.Context, agentID string) (string, error) {
	card, err := r.ResolveAgent(ctx, agentID)
	if err != nil {
		return "", err
	}
	return deriveEndpoint(card.SourceURL), nil
}

// ResolveAgent fetches (or serves from cache) the agent card for a registered
// agent.
func (r *Resolver) ResolveAgent(ctx context.Context, agentID string) (*ResolvedAgentCard, error) {
	baseURL, err := r.directory.BaseURL(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("directory lookup for %s: %w", agentID, err)
	}
	return r.Resolve(ctx, baseURL)
}

// Resolve fetches the agent card served under baseURL.
func (r *Resolver) Resolve(ctx context.Context, baseURL string) (*ResolvedAgentCard, error) {
	cardURL, err := buildCardURL(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	if cached := r.getCached(cardURL); cached != nil {
		slog.DebugContext(ctx, "agent card cache hit", "url", cardURL)
		return cached, nil
	}

	slog.InfoContext(ctx, "fetching agent card", "url", cardURL)
	card, err := r.fetch(ctx, cardURL)
	if err != nil {
		return nil, err
	}

	r.setCache(cardURL, card)
	return card, nil
}

// Validate checks a card for the fields negotiation depends on.
func Validate(card *AgentCard) error {
	if card.Name == "" {
		return fmt.Errorf("agent card missing required field: name")
	}
	if card.URL == "" {
		return fmt.Errorf("agent card missing required field: url")
	}
	return nil
}

// InvalidateCache drops the cached card for a base URL.
func (r *Resolver) InvalidateCache(baseURL string) {
	cardURL, err := buildCardURL(baseURL)
	if err != nil {
		return
	}
	r.cacheMu.Lock()
	delete(r.cache, cardURL)
	r.cacheMu.Unlock()
}

func buildCardURL(baseURL string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", fmt.Errorf("empty base URL")
	}
	if strings.HasSuffix(baseURL, "/agent-card.json") {
		return baseURL, nil
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + WellKnownPath
	return u.String(), nil
}

func (r *Resolver) fetch(ctx context.Context, cardURL string) (*ResolvedAgentCard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cardURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch agent card: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("agent card fetch failed: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return nil, fmt.Errorf("decode agent card: %w", err)
	}
	if err := Validate(&card); err != nil {
		return nil, fmt.Errorf("invalid agent card: %w", err)
	}

	return &ResolvedAgentCard{
		AgentCard:  card,
		SourceURL:  cardURL,
		ResolvedAt: time.Now().UTC(),
	}, nil
}

func (r *Resolver) getCached(url string) *ResolvedAgentCard {
	r.cacheMu.RLock()
	entry, ok := r.cache[url]
	r.cacheMu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.card
}

func (r *Resolver) setCache(url string, card *ResolvedAgentCard) {
	r.cacheMu.Lock()
	r.cache[url] = &cacheEntry{
		card:      card,
		expiresAt: time.Now().Add(r.cacheTTL),
	}
	r.cacheMu.Unlock()
}

// deriveEndpoint maps a card URL to the agent's message endpoint, which A2A
// convention places at /a2a on the same host.
func deriveEndpoint(cardURL string) string {
	u, err := url.Parse(cardURL)
	if err != nil {
		return ""
	}
	u.Path = "/a2a"
	return u.String()
}
