package events

import "time"

// Envelope wraps every published event. Topic is "buyrequest.<id>" for search
// progress and "room.<id>" for negotiation traffic.
type Envelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	Topic         string    `json:"topic"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
	Data          any       `json:"data"`
}

// SearchProgressData mirrors the persisted buy-request projection.
type SearchProgressData struct {
	BuyRequestID     string `json:"buy_request_id"`
	SearchStep       string `json:"search_step"`
	SearchMessage    string `json:"search_message"`
	MatchedListingID string `json:"matched_listing_id,omitempty"`
	SellerAgentID    string `json:"seller_agent_id,omitempty"`
	A2AEndpoint      string `json:"a2a_endpoint,omitempty"`
	SearchError      string `json:"search_error,omitempty"`
	RoomID           string `json:"negotiation_room_id,omitempty"`
}

// NegotiationMessageData is published for every message appended to a room.
type NegotiationMessageData struct {
	ID            string         `json:"id"`
	RoomID        string         `json:"room_id"`
	Sender        string         `json:"sender"`
	SenderAgentID string         `json:"sender_agent_id"`
	Content       string         `json:"content"`
	MessageType   string         `json:"message_type"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// RoomStatusData is published on every room status transition.
type RoomStatusData struct {
	RoomID string `json:"room_id"`
	Status string `json:"status"`
}

// ConclusionData is published once when a negotiation reaches a decision.
type ConclusionData struct {
	RoomID       string   `json:"room_id"`
	DecisionType string   `json:"decision_type"`
	AgreedPrice  *float64 `json:"agreed_price,omitempty"`
	Reason       string   `json:"reason,omitempty"`
}

const (
	EventListingPublished  = "listing.published"
	EventBuyRequestCreated = "buyrequest.created"
	EventSearchProgress    = "buyrequest.search_progress"

	EventNegotiationMessage   = "negotiation.message"
	EventNegotiationStatus    = "negotiation.status"
	EventNegotiationConcluded = "negotiation.concluded"
)
