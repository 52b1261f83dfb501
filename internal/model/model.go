package model

import "time"

// BuyRequestStatus represents the lifecycle of a buy request.
type BuyRequestStatus string

const (
	BuyRequestOpen    BuyRequestStatus = "OPEN"
	BuyRequestMatched BuyRequestStatus = "MATCHED"
	BuyRequestClosed  BuyRequestStatus = "CLOSED"
)

// SearchStep is the auto-search pipeline position visible to observers.
type SearchStep string

const (
	StepIdle                SearchStep = "idle"
	StepSearching           SearchStep = "searching"
	StepFound               SearchStep = "found"
	StepNoResults           SearchStep = "no_results"
	StepVerifying           SearchStep = "verifying"
	StepVerified            SearchStep = "verified"
	StepContacting          SearchStep = "contacting"
	StepContacted           SearchStep = "contacted"
	StepJoinedRoom          SearchStep = "joined_room"
	StepNegotiationComplete SearchStep = "negotiation_complete"
	StepComplete            SearchStep = "complete"
	StepError               SearchStep = "error"
)

// SearchProgress is the projection mutated exclusively by the auto-search
// orchestrator. A crash leaves the last persisted step as the durable state.
type SearchProgress struct {
	Step             SearchStep `json:"search_step" bson:"search_step"`
	Message          string     `json:"search_message" bson:"search_message"`
	Error            string     `json:"search_error,omitempty" bson:"search_error,omitempty"`
	MatchedListingID string     `json:"matched_listing_id,omitempty" bson:"matched_listing_id,omitempty"`
	SellerAgentID    string     `json:"seller_agent_id,omitempty" bson:"seller_agent_id,omitempty"`
	A2AEndpoint      string     `json:"a2a_endpoint,omitempty" bson:"a2a_endpoint,omitempty"`
	RoomID           string     `json:"negotiation_room_id,omitempty" bson:"negotiation_room_id,omitempty"`
}

// BuyRequest is a buyer agent's declared purchase intent with a budget range.
type BuyRequest struct {
	ID           string           `json:"buy_request_id" bson:"_id"`
	BuyerAgentID string           `json:"buyer_agent_id" bson:"buyer_agent_id"`
	Title        string           `json:"title" bson:"title"`
	Description  string           `json:"description" bson:"description"`
	MinPrice     float64          `json:"min_price" bson:"min_price"`
	MaxPrice     float64          `json:"max_price" bson:"max_price"`
	Category     string           `json:"category,omitempty" bson:"category,omitempty"`
	Status       BuyRequestStatus `json:"status" bson:"status"`
	Search       SearchProgress   `json:"search" bson:"search"`
	CreatedAt    time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" bson:"updated_at"`
}

// ListingStatus represents the lifecycle of a listing.
type ListingStatus string

const (
	ListingOpen      ListingStatus = "OPEN"
	ListingReserved  ListingStatus = "RESERVED"
	ListingCompleted ListingStatus = "COMPLETED"
	ListingCancelled ListingStatus = "CANCELLED"
)

// Listing is a seller agent's open offer. ExpectedPrice >= BasePrice by
// convention; the negotiation core treats listings as read-only.
type Listing struct {
	ID            string        `json:"listing_id" bson:"_id"`
	SellerAgentID string        `json:"seller_agent_id" bson:"seller_agent_id"`
	Title         string        `json:"title" bson:"title"`
	Description   string        `json:"description" bson:"description"`
	BasePrice     float64       `json:"base_price" bson:"base_price"`
	ExpectedPrice float64       `json:"expected_price" bson:"expected_price"`
	Status        ListingStatus `json:"status" bson:"status"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}

// RoomStatus represents the negotiation room lifecycle.
// Valid transitions: WAITING -> ACTIVE -> {COMPLETED, CANCELLED, REJECTED}.
type RoomStatus string

const (
	RoomWaiting   RoomStatus = "WAITING"
	RoomActive    RoomStatus = "ACTIVE"
	RoomCompleted RoomStatus = "COMPLETED"
	RoomCancelled RoomStatus = "CANCELLED"
	RoomRejected  RoomStatus = "REJECTED"
)

// Terminal reports whether no further mutation of the room is allowed.
func (s RoomStatus) Terminal() bool {
	return s == RoomCompleted || s == RoomCancelled || s == RoomRejected
}

// NegotiationRoom pairs exactly one listing with at most one buy request.
// BuyerAgentID is empty while WAITING and transitions to non-empty at most
// once (atomic claim in the store).
type NegotiationRoom struct {
	ID             string     `json:"room_id" bson:"_id"`
	ListingID      string     `json:"listing_id" bson:"listing_id"`
	SellerAgentID  string     `json:"seller_agent_id" bson:"seller_agent_id"`
	BuyerAgentID   string     `json:"buyer_agent_id,omitempty" bson:"buyer_agent_id,omitempty"`
	SellerEndpoint string     `json:"seller_endpoint,omitempty" bson:"seller_endpoint,omitempty"`
	BuyerEndpoint  string     `json:"buyer_endpoint,omitempty" bson:"buyer_endpoint,omitempty"`
	Status         RoomStatus `json:"status" bson:"status"`
	AgreedPrice    *float64   `json:"agreed_price,omitempty" bson:"agreed_price,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

// Sender identifies which side of the room authored a message.
type Sender string

const (
	SenderBuyer  Sender = "buyer"
	SenderSeller Sender = "seller"
)

// MessageType classifies a negotiation message.
type MessageType string

const (
	MessageGreeting    MessageType = "greeting"
	MessageNegotiation MessageType = "negotiation"
	MessageResponse    MessageType = "response"
)

// NegotiationMessage is one turn in a room's append-only log. IDs are ULIDs
// so lexicographic order follows creation order.
type NegotiationMessage struct {
	ID            string         `json:"id" bson:"_id"`
	RoomID        string         `json:"room_id" bson:"room_id"`
	Sender        Sender         `json:"sender" bson:"sender"`
	SenderAgentID string         `json:"sender_agent_id" bson:"sender_agent_id"`
	Content       string         `json:"content" bson:"content"`
	MessageType   MessageType    `json:"message_type" bson:"message_type"`
	Metadata      map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
}

// AgentEntry is a directory registration mapping an agent id to the base URL
// its A2A agent card is served from.
type AgentEntry struct {
	AgentID      string    `json:"agent_id" bson:"_id"`
	BaseURL      string    `json:"base_url" bson:"base_url"`
	RegisteredAt time.Time `json:"registered_at" bson:"registered_at"`
}
