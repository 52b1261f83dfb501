package events

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Publisher broadcasts state changes to observers. Publishing is best-effort:
// persistence is the source of truth and a publish failure never propagates
// to the caller.
type Publisher struct {
	source     string
	httpClient *http.Client
	endpoints  map[string]string // eventType -> webhook URL
}

func NewPublisher(source string) *Publisher {
	return &Publisher{
		source: source,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		endpoints: make(map[string]string),
	}
}

// RegisterEndpoint registers a webhook endpoint for an event type.
func (p *Publisher) RegisterEndpoint(eventType, webhookURL string) {
	p.endpoints[eventType] = webhookURL
}

// Publish emits one event on the given topic.
func (p *Publisher) Publish(ctx context.Context, eventType, topic string, data any) {
	envelope := Envelope{
		EventID:       generateEventID(),
		EventType:     eventType,
		SchemaVersion: "1.0",
		Topic:         topic,
		Timestamp:     time.Now().UTC(),
		Source:        p.source,
		Data:          data,
	}

	slog.InfoContext(ctx, "event_published",
		"event_id", envelope.EventID,
		"event_type", envelope.EventType,
		"topic", envelope.Topic,
	)

	if webhookURL, ok := p.endpoints[eventType]; ok {
		p.sendWebhook(ctx, webhookURL, envelope)
	}
}

func (p *Publisher) sendWebhook(ctx context.Context, url string, envelope Envelope) {
	body, err := json.Marshal(envelope)
	if err != nil {
		slog.WarnContext(ctx, "webhook_marshal_failed", "event_type", envelope.EventType, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.WarnContext(ctx, "webhook_request_failed", "url", url, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", envelope.EventID)
	req.Header.Set("X-Event-Type", envelope.EventType)
	req.Header.Set("X-Event-Topic", envelope.Topic)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "webhook_failed",
			"url", url,
			"event_type", envelope.EventType,
			"error", err,
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.WarnContext(ctx, "webhook_error",
			"url", url,
			"event_type", envelope.EventType,
			"status", resp.StatusCode,
		)
	}
}

func generateEventID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return "evt_" + hex.EncodeToString(b[:])
}

// TopicBuyRequest returns the topic that carries a buy request's search
// progress stream.
func TopicBuyRequest(buyRequestID string) string {
	return fmt.Sprintf("buyrequest.%s", buyRequestID)
}

// TopicRoom returns the topic that carries a room's message/status stream.
func TopicRoom(roomID string) string {
	return fmt.Sprintf("room.%s", roomID)
}
