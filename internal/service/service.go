package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/agentcard"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/events"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/model"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/store"
)

var (
	ErrInvalidListing    = errors.New("invalid listing")
	ErrInvalidBuyRequest = errors.New("invalid buy request")
)

// ListingSubmission is the request to publish a listing.
type ListingSubmission struct {
	SellerAgentID string  `json:"seller_agent_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	BasePrice     float64 `json:"base_price"`
	ExpectedPrice float64 `json:"expected_price"`
}

// BuyRequestSubmission is the request to post a buy intent.
type BuyRequestSubmission struct {
	BuyerAgentID string  `json:"buyer_agent_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	Category     string  `json:"category,omitempty"`
}

// Service is the marketplace surface: listing and buy-request CRUD plus the
// trigger that launches the auto-search orchestrator.
type Service struct {
	store        store.Store
	directory    agentcard.Directory
	events       *events.Publisher
	orchestrator *Orchestrator
}

func New(st store.Store, directory agentcard.Directory, pub *events.Publisher, orchestrator *Orchestrator) *Service {
	return &Service{
		store:        st,
		directory:    directory,
		events:       pub,
		orchestrator: orchestrator,
	}
}

// CreateListing publishes a listing and opens its WAITING negotiation room.
// The room is created here so a buy request can later claim it atomically.
func (s *Service) CreateListing(ctx context.Context, req ListingSubmission) (model.Listing, error) {
	if strings.TrimSpace(req.SellerAgentID) == "" {
		return model.Listing{}, fmt.Errorf("%w: seller_agent_id is required", ErrInvalidListing)
	}
	if strings.TrimSpace(req.Title) == "" {
		return model.Listing{}, fmt.Errorf("%w: title is required", ErrInvalidListing)
	}
	if req.BasePrice <= 0 || req.ExpectedPrice <= 0 {
		return model.Listing{}, fmt.Errorf("%w: prices must be positive", ErrInvalidListing)
	}

	now := time.Now().UTC()
	listing := model.Listing{
		ID:            generateID("lst"),
		SellerAgentID: req.SellerAgentID,
		Title:         req.Title,
		Description:   req.Description,
		BasePrice:     req.BasePrice,
		ExpectedPrice: req.ExpectedPrice,
		Status:        model.ListingOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.SaveListing(ctx, listing); err != nil {
		return model.Listing{}, fmt.Errorf("save listing: %w", err)
	}

	room := model.NegotiationRoom{
		ID:            generateID("room"),
		ListingID:     listing.ID,
		SellerAgentID: listing.SellerAgentID,
		Status:        model.RoomWaiting,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.SaveRoom(ctx, room); err != nil {
		return model.Listing{}, fmt.Errorf("create negotiation room: %w", err)
	}

	s.events.Publish(ctx, events.EventListingPublished, events.TopicRoom(room.ID), map[string]any{
		"listing_id":      listing.ID,
		"seller_agent_id": listing.SellerAgentID,
		"room_id":         room.ID,
		"status":          string(listing.Status),
	})

	slog.InfoContext(ctx, "listing_published",
		"listing_id", listing.ID,
		"room_id", room.ID,
		"seller_agent_id", listing.SellerAgentID,
	)
	return listing, nil
}

func (s *Service) GetListing(ctx context.Context, id string) (model.Listing, error) {
	return s.store.GetListing(ctx, id)
}

func (s *Service) ListOpenListings(ctx context.Context) ([]model.Listing, error) {
	return s.store.ListOpenListings(ctx)
}

// CreateBuyRequest validates and persists a buy intent, then fires the
// auto-search orchestrator as an independent task. Validation failures are
// the only synchronous errors; everything downstream is reported through the
// search projection.
func (s *Service) CreateBuyRequest(ctx context.Context, req BuyRequestSubmission) (model.BuyRequest, error) {
	if strings.TrimSpace(req.BuyerAgentID) == "" {
		return model.BuyRequest{}, fmt.Errorf("%w: buyer_agent_id is required", ErrInvalidBuyRequest)
	}
	if strings.TrimSpace(req.Title) == "" {
		return model.BuyRequest{}, fmt.Errorf("%w: title is required", ErrInvalidBuyRequest)
	}
	if req.MinPrice < 0 {
		return model.BuyRequest{}, fmt.Errorf("%w: min_price must not be negative", ErrInvalidBuyRequest)
	}
	if req.MinPrice > req.MaxPrice {
		return model.BuyRequest{}, fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidBuyRequest)
	}

	now := time.Now().UTC()
	br := model.BuyRequest{
		ID:           generateID("buyreq"),
		BuyerAgentID: req.BuyerAgentID,
		Title:        req.Title,
		Description:  req.Description,
		MinPrice:     req.MinPrice,
		MaxPrice:     req.MaxPrice,
		Category:     req.Category,
		Status:       model.BuyRequestOpen,
		Search:       model.SearchProgress{Step: model.StepIdle, Message: "buy request created"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.SaveBuyRequest(ctx, br); err != nil {
		return model.BuyRequest{}, fmt.Errorf("save buy request: %w", err)
	}

	s.events.Publish(ctx, events.EventBuyRequestCreated, events.TopicBuyRequest(br.ID), map[string]any{
		"buy_request_id": br.ID,
		"buyer_agent_id": br.BuyerAgentID,
		"min_price":      br.MinPrice,
		"max_price":      br.MaxPrice,
	})

	slog.InfoContext(ctx, "buy_request_created", "buy_request_id", br.ID, "buyer_agent_id", br.BuyerAgentID)

	// Fire-and-forget: the orchestrator reports exclusively through the
	// persisted projection, never back to this caller.
	go s.orchestrator.Run(context.WithoutCancel(ctx), br.ID)

	return br, nil
}

func (s *Service) GetBuyRequest(ctx context.Context, id string) (model.BuyRequest, error) {
	return s.store.GetBuyRequest(ctx, id)
}

func (s *Service) ListBuyRequests(ctx context.Context, buyerAgentID string, limit int) ([]model.BuyRequest, error) {
	return s.store.ListBuyRequests(ctx, buyerAgentID, limit)
}

func (s *Service) GetRoom(ctx context.Context, id string) (model.NegotiationRoom, error) {
	return s.store.GetRoom(ctx, id)
}

func (s *Service) ListRoomMessages(ctx context.Context, roomID string) ([]model.NegotiationMessage, error) {
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, roomID)
}

// RegisterAgent records an agent's card base URL in the directory.
func (s *Service) RegisterAgent(ctx context.Context, agentID, baseURL string) error {
	if err := s.directory.Register(ctx, agentID, baseURL); err != nil {
		return err
	}
	slog.InfoContext(ctx, "agent_registered", "agent_id", agentID, "base_url", baseURL)
	return nil
}

func (s *Service) ListAgents(ctx context.Context) ([]model.AgentEntry, error) {
	return s.directory.List(ctx)
}

func generateID(prefix string) string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return prefix + "_" + hex.EncodeToString(b[:8])
}
