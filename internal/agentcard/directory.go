package agentcard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/model"
)

var ErrAgentNotFound = errors.New("agent not registered")

// Directory maps agent ids to the base URLs their agent cards are served
// from. It is injected into the orchestrator rather than held as process
// globals, so tests can swap in a double.
type Directory interface {
	Register(ctx context.Context, agentID, baseURL string) error
	BaseURL(ctx context.Context, agentID string) (string, error)
	List(ctx context.Context) ([]model.AgentEntry, error)
}

// MemoryDirectory is a process-lifetime Directory.
type MemoryDirectory struct {
	mu      sync.RWMutex
	entries map[string]model.AgentEntry
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{entries: make(map[string]model.AgentEntry)}
}

func (d *MemoryDirectory) Register(ctx context.Context, agentID, baseURL string) error {
	agentID = strings.TrimSpace(agentID)
	baseURL = strings.TrimSpace(baseURL)
	if agentID == "" || baseURL == "" {
		return errors.New("agent id and base URL are required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[agentID] = model.AgentEntry{
		AgentID:      agentID,
		BaseURL:      baseURL,
		RegisteredAt: time.Now().UTC(),
	}
	return nil
}

func (d *MemoryDirectory) BaseURL(ctx context.Context, agentID string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry, ok := d.entries[agentID]
	if !ok {
		return "", ErrAgentNotFound
	}
	return entry.BaseURL, nil
}

func (d *MemoryDirectory) List(ctx context.Context) ([]model.AgentEntry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]model.AgentEntry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e)
	}
	return out, nil
}
