package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestPublishDeliversToRegisteredWebhook(t *testing.T) {
	var (
		mu       sync.Mutex
		received []Envelope
		headers  []http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env Envelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			http.Error(w, "bad envelope", http.StatusBadRequest)
			return
		}
		mu.Lock()
		received = append(received, env)
		headers = append(headers, r.Header.Clone())
		mu.Unlock()
	}))
	defer server.Close()

	p := NewPublisher("agent-bazaar")
	p.RegisterEndpoint(EventSearchProgress, server.URL)

	p.Publish(context.Background(), EventSearchProgress, TopicBuyRequest("buyreq_1"), map[string]any{
		"buy_request_id": "buyreq_1",
		"search_step":    "searching",
	})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("webhook deliveries = %d, want 1", len(received))
	}
	env := received[0]
	if env.EventType != EventSearchProgress {
		t.Errorf("event_type = %q, want %q", env.EventType, EventSearchProgress)
	}
	if env.Topic != "buyrequest.buyreq_1" {
		t.Errorf("topic = %q, want buyrequest.buyreq_1", env.Topic)
	}
	if env.Source != "agent-bazaar" {
		t.Errorf("source = %q, want agent-bazaar", env.Source)
	}
	if !strings.HasPrefix(env.EventID, "evt_") {
		t.Errorf("event_id = %q, want evt_ prefix", env.EventID)
	}
	if env.Timestamp.IsZero() {
		t.Error("timestamp is zero")
	}
	if headers[0].Get("X-Event-Type") != EventSearchProgress {
		t.Errorf("X-Event-Type = %q", headers[0].Get("X-Event-Type"))
	}
}

func TestPublishSkipsUnregisteredEventTypes(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	p := NewPublisher("agent-bazaar")
	p.RegisterEndpoint(EventSearchProgress, server.URL)

	p.Publish(context.Background(), EventNegotiationMessage, TopicRoom("room_1"), nil)
	if hits != 0 {
		t.Errorf("webhook deliveries = %d, want 0 for unregistered type", hits)
	}
}

func TestPublishSurvivesUnreachableWebhook(t *testing.T) {
	p := NewPublisher("agent-bazaar")
	p.RegisterEndpoint(EventSearchProgress, "http://127.0.0.1:1/unreachable")

	// Must not panic or block the caller on a dead webhook.
	p.Publish(context.Background(), EventSearchProgress, TopicBuyRequest("buyreq_1"), nil)
}
