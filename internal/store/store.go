package store

import (
	"context"
	"errors"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/model"
)

var (
	ErrBuyRequestNotFound = errors.New("buy request not found")
	ErrListingNotFound    = errors.New("listing not found")
	ErrRoomNotFound       = errors.New("negotiation room not found")
	// ErrRoomClaimed is returned when a claim races with another buyer or the
	// room is no longer WAITING.
	ErrRoomClaimed = errors.New("negotiation room already claimed")
	// ErrRoomExists is returned when a second room is created for a listing.
	ErrRoomExists = errors.New("listing already has a negotiation room")
	// ErrRoomTerminal is returned on any mutation of a terminal room.
	ErrRoomTerminal = errors.New("negotiation room is terminal")
)

// RoomClaim carries the buyer-side fields set atomically when a buy request
// claims a WAITING room. The store must set them only if the room has no
// buyer yet, moving the room to ACTIVE in the same update.
type RoomClaim struct {
	BuyerAgentID   string
	BuyerEndpoint  string
	SellerEndpoint string
}

// Store is the persistence contract for the negotiation core.
type Store interface {
	SaveBuyRequest(ctx context.Context, br model.BuyRequest) error
	GetBuyRequest(ctx context.Context, id string) (model.BuyRequest, error)
	ListBuyRequests(ctx context.Context, buyerAgentID string, limit int) ([]model.BuyRequest, error)
	// UpdateSearchProgress persists the orchestrator's projection and, when
	// status is non-empty, the buy request status in the same write.
	UpdateSearchProgress(ctx context.Context, id string, progress model.SearchProgress, status model.BuyRequestStatus) error

	SaveListing(ctx context.Context, l model.Listing) error
	GetListing(ctx context.Context, id string) (model.Listing, error)
	ListOpenListings(ctx context.Context) ([]model.Listing, error)
	UpdateListingStatus(ctx context.Context, id string, status model.ListingStatus) error

	SaveRoom(ctx context.Context, room model.NegotiationRoom) error
	GetRoom(ctx context.Context, id string) (model.NegotiationRoom, error)
	GetRoomByListing(ctx context.Context, listingID string) (model.NegotiationRoom, error)
	// ClaimRoom sets the buyer side of a WAITING room if and only if no buyer
	// holds it, and moves it to ACTIVE. Returns ErrRoomClaimed otherwise.
	ClaimRoom(ctx context.Context, roomID string, claim RoomClaim) (model.NegotiationRoom, error)
	// CloseRoom moves an ACTIVE room to a terminal status. agreedPrice is set
	// only for a satisfied price agreement.
	CloseRoom(ctx context.Context, roomID string, status model.RoomStatus, agreedPrice *float64) (model.NegotiationRoom, error)

	AppendMessage(ctx context.Context, msg model.NegotiationMessage) error
	ListMessages(ctx context.Context, roomID string) ([]model.NegotiationMessage, error)

	Close() error
}
