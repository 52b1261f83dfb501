package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/agentcard"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/events"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/matcher"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/model"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/negotiation"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/store"
)

// Orchestrator drives one buy request through the auto-search pipeline:
// searching -> verifying -> contacting -> joined_room -> negotiating ->
// complete/error. One run per buy request, never reentered; every step is
// persisted before the next begins and published after persisting.
type Orchestrator struct {
	store    store.Store
	matcher  *matcher.Matcher
	resolver *agentcard.Resolver
	engine   *negotiation.Engine
	events   *events.Publisher
}

func NewOrchestrator(st store.Store, m *matcher.Matcher, resolver *agentcard.Resolver, engine *negotiation.Engine, pub *events.Publisher) *Orchestrator {
	return &Orchestrator{
		store:    st,
		matcher:  m,
		resolver: resolver,
		engine:   engine,
		events:   pub,
	}
}

// Run executes the pipeline for one buy request. All failures are reported
// through the persisted projection; nothing here is fatal to the process.
func (o *Orchestrator) Run(ctx context.Context, buyRequestID string) {
	br, err := o.store.GetBuyRequest(ctx, buyRequestID)
	if err != nil {
		slog.ErrorContext(ctx, "auto-search: load buy request", "buy_request_id", buyRequestID, "error", err)
		return
	}

	progress := model.SearchProgress{Step: model.StepSearching, Message: "searching open listings"}
	if !o.advance(ctx, br.ID, progress, "") {
		return
	}

	listings, err := o.store.ListOpenListings(ctx)
	if err != nil {
		o.fail(ctx, br.ID, progress, fmt.Errorf("list open listings: %w", err))
		return
	}
	if len(listings) == 0 {
		progress.Step = model.StepNoResults
		progress.Message = "no open listings available"
		o.advance(ctx, br.ID, progress, "")
		return
	}

	match := o.matcher.BestMatch(ctx, br, listings)
	if match == nil {
		progress.Step = model.StepNoResults
		progress.Message = "no listing matched the buy request"
		o.advance(ctx, br.ID, progress, "")
		return
	}

	progress.Step = model.StepFound
	progress.Message = fmt.Sprintf("matched listing %s (score %d): %s", match.Listing.ID, match.Score, match.Reason)
	progress.MatchedListingID = match.Listing.ID
	progress.SellerAgentID = match.Listing.SellerAgentID
	if !o.advance(ctx, br.ID, progress, "") {
		return
	}

	// The match ranked a snapshot; the listing may have been reserved since.
	progress.Step = model.StepVerifying
	progress.Message = "verifying listing is still open"
	if !o.advance(ctx, br.ID, progress, "") {
		return
	}

	listing, err := o.store.GetListing(ctx, match.Listing.ID)
	if err != nil {
		o.fail(ctx, br.ID, progress, fmt.Errorf("verify listing: %w", err))
		return
	}
	if listing.Status != model.ListingOpen {
		o.fail(ctx, br.ID, progress, fmt.Errorf("listing %s is no longer open (status %s)", listing.ID, listing.Status))
		return
	}

	progress.Step = model.StepVerified
	progress.Message = "listing verified"
	if !o.advance(ctx, br.ID, progress, "") {
		return
	}

	progress.Step = model.StepContacting
	progress.Message = "resolving counterparty endpoint"
	if !o.advance(ctx, br.ID, progress, "") {
		return
	}

	sellerEndpoint, err := o.resolver.Endpoint(ctx, listing.SellerAgentID)
	if err != nil {
		o.fail(ctx, br.ID, progress, fmt.Errorf("resolve seller endpoint: %w", err))
		return
	}
	// The buyer may not serve a card of its own; the room simply records no
	// buyer endpoint then.
	buyerEndpoint, err := o.resolver.Endpoint(ctx, br.BuyerAgentID)
	if err != nil {
		buyerEndpoint = ""
	}

	progress.Step = model.StepContacted
	progress.Message = "counterparty endpoint resolved"
	progress.A2AEndpoint = sellerEndpoint
	if !o.advance(ctx, br.ID, progress, "") {
		return
	}

	room, err := o.store.GetRoomByListing(ctx, listing.ID)
	if err != nil {
		o.fail(ctx, br.ID, progress, fmt.Errorf("locate negotiation room: %w", err))
		return
	}

	// Single point where the room stops accepting other buyers. Only a
	// successful claim lets this buy request advance past joined_room.
	room, err = o.store.ClaimRoom(ctx, room.ID, store.RoomClaim{
		BuyerAgentID:   br.BuyerAgentID,
		BuyerEndpoint:  buyerEndpoint,
		SellerEndpoint: sellerEndpoint,
	})
	if err != nil {
		o.fail(ctx, br.ID, progress, fmt.Errorf("claim negotiation room: %w", err))
		return
	}
	o.events.Publish(ctx, events.EventNegotiationStatus, events.TopicRoom(room.ID), events.RoomStatusData{
		RoomID: room.ID,
		Status: string(room.Status),
	})

	if err := o.store.UpdateListingStatus(ctx, listing.ID, model.ListingReserved); err != nil {
		slog.WarnContext(ctx, "reserve listing failed", "listing_id", listing.ID, "error", err)
	}

	progress.Step = model.StepJoinedRoom
	progress.Message = "joined negotiation room"
	progress.RoomID = room.ID
	if !o.advance(ctx, br.ID, progress, model.BuyRequestMatched) {
		return
	}

	outcome, err := o.engine.Run(ctx, room, br, listing)
	if err != nil {
		o.fail(ctx, br.ID, progress, fmt.Errorf("negotiation: %w", err))
		return
	}

	progress.Step = model.StepNegotiationComplete
	switch {
	case outcome.Decision == negotiation.DecisionPriceAgreed:
		progress.Message = fmt.Sprintf("negotiation complete: agreed at %.2f HBAR after %d rounds", *outcome.AgreedPrice, outcome.Rounds)
	case outcome.Decision == negotiation.DecisionRejected:
		progress.Message = fmt.Sprintf("negotiation complete: rejected after %d rounds", outcome.Rounds)
	case outcome.Exhausted:
		progress.Message = fmt.Sprintf("negotiation stopped: no decision within %d rounds", outcome.Rounds)
	default:
		progress.Message = "negotiation stopped without a decision"
	}
	if !o.advance(ctx, br.ID, progress, "") {
		return
	}

	finalStatus := model.BuyRequestMatched
	if outcome.Decision == negotiation.DecisionPriceAgreed {
		finalStatus = model.BuyRequestClosed
		if err := o.store.UpdateListingStatus(ctx, listing.ID, model.ListingCompleted); err != nil {
			slog.WarnContext(ctx, "complete listing failed", "listing_id", listing.ID, "error", err)
		}
	}

	progress.Step = model.StepComplete
	o.advance(ctx, br.ID, progress, finalStatus)

	slog.InfoContext(ctx, "auto-search finished",
		"buy_request_id", br.ID,
		"room_id", room.ID,
		"decision", string(outcome.Decision),
		"rounds", outcome.Rounds,
	)
}

// advance persists the projection, then publishes it. Returns false when
// persistence fails: the previous step remains the durable state and the run
// stops, so observers never see a partial step.
func (o *Orchestrator) advance(ctx context.Context, buyRequestID string, progress model.SearchProgress, status model.BuyRequestStatus) bool {
	if err := o.store.UpdateSearchProgress(ctx, buyRequestID, progress, status); err != nil {
		slog.ErrorContext(ctx, "persist search progress",
			"buy_request_id", buyRequestID,
			"step", string(progress.Step),
			"error", err,
		)
		return false
	}

	o.events.Publish(ctx, events.EventSearchProgress, events.TopicBuyRequest(buyRequestID), events.SearchProgressData{
		BuyRequestID:     buyRequestID,
		SearchStep:       string(progress.Step),
		SearchMessage:    progress.Message,
		SearchError:      progress.Error,
		MatchedListingID: progress.MatchedListingID,
		SellerAgentID:    progress.SellerAgentID,
		A2AEndpoint:      progress.A2AEndpoint,
		RoomID:           progress.RoomID,
	})
	return true
}

// fail records an unrecoverable step failure. The error is captured verbatim
// in the projection; nothing is retried automatically.
func (o *Orchestrator) fail(ctx context.Context, buyRequestID string, progress model.SearchProgress, err error) {
	slog.ErrorContext(ctx, "auto-search step failed",
		"buy_request_id", buyRequestID,
		"step", string(progress.Step),
		"error", err,
	)
	progress.Step = model.StepError
	progress.Message = "auto-search failed"
	progress.Error = err.Error()
	o.advance(ctx, buyRequestID, progress, "")
}
