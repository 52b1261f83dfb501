package negotiation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/a2a"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/events"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/llm"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/model"
	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/store"
)

// DefaultMaxRounds bounds the bargaining loop.
const DefaultMaxRounds = 20

// ErrProtocolViolation marks a reply arriving out of turn. The loop halts
// but the room is left ACTIVE, resumable in principle.
var ErrProtocolViolation = errors.New("negotiation protocol violation")

// Outcome summarizes how a negotiation run ended. Exhausted means the round
// budget ran out with no decision, a valid non-error result distinct from
// rejection: the room stays ACTIVE.
type Outcome struct {
	Decision    DecisionType
	AgreedPrice *float64
	Rounds      int
	Exhausted   bool
}

// Engine drives the buyer side of a negotiation room through bounded
// rounds. Rounds are strictly sequential; a room is driven by exactly one
// engine at a time, guaranteed by the claim that activated it.
type Engine struct {
	store     store.Store
	protocol  *a2a.Client
	completer llm.Completer
	events    *events.Publisher
	maxRounds int
}

func NewEngine(st store.Store, protocol *a2a.Client, completer llm.Completer, pub *events.Publisher, maxRounds int) *Engine {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Engine{
		store:     st,
		protocol:  protocol,
		completer: completer,
		events:    pub,
		maxRounds: maxRounds,
	}
}

// Run sends the greeting and bargains until a terminal decision, a protocol
// fault, or round exhaustion. The room must already be ACTIVE with both
// endpoints set.
func (e *Engine) Run(ctx context.Context, room model.NegotiationRoom, br model.BuyRequest, listing model.Listing) (Outcome, error) {
	greeting := fmt.Sprintf(
		"Hello! I'm interested in %q listed at %.2f HBAR. My budget is %.2f to %.2f HBAR. Shall we discuss the price?",
		listing.Title, listing.ExpectedPrice, br.MinPrice, br.MaxPrice,
	)

	reply, err := e.exchange(ctx, room, br, greeting, model.MessageGreeting, 0)
	if err != nil {
		return Outcome{}, err
	}

	history := []llm.Turn{
		{Sender: string(model.SenderBuyer), Content: greeting},
		{Sender: string(model.SenderSeller), Content: reply},
	}
	lastSender := model.SenderSeller
	lastText := reply

	for round := 1; round <= e.maxRounds; round++ {
		// The driver only moves on the counterparty's turn.
		if lastSender != model.SenderSeller {
			return Outcome{Rounds: round - 1}, ErrProtocolViolation
		}

		if outcome, terminal, err := e.conclude(ctx, room, br, listing, lastText, round-1); err != nil {
			return Outcome{}, err
		} else if terminal {
			return outcome, nil
		}

		proposal, err := e.completer.NextProposal(ctx, llm.ProposalContext{
			ItemTitle:      listing.Title,
			Round:          round,
			BuyerMin:       br.MinPrice,
			BuyerMax:       br.MaxPrice,
			SellerBase:     listing.BasePrice,
			SellerExpected: listing.ExpectedPrice,
			History:        history,
		})
		if err != nil {
			return Outcome{Rounds: round - 1}, fmt.Errorf("generate proposal: %w", err)
		}

		reply, err := e.exchange(ctx, room, br, proposal, model.MessageNegotiation, round)
		if err != nil {
			return Outcome{Rounds: round - 1}, err
		}

		history = append(history,
			llm.Turn{Sender: string(model.SenderBuyer), Content: proposal},
			llm.Turn{Sender: string(model.SenderSeller), Content: reply},
		)
		lastText = reply
		lastSender = model.SenderSeller
	}

	// Either side's final message can still terminate the loop.
	if outcome, terminal, err := e.conclude(ctx, room, br, listing, lastText, e.maxRounds); err != nil {
		return Outcome{}, err
	} else if terminal {
		return outcome, nil
	}

	slog.InfoContext(ctx, "negotiation round budget exhausted",
		"room_id", room.ID,
		"rounds", e.maxRounds,
	)
	return Outcome{Decision: DecisionNone, Rounds: e.maxRounds, Exhausted: true}, nil
}

// conclude checks the counterparty's last message for a terminal decision
// and closes the room when one holds.
func (e *Engine) conclude(ctx context.Context, room model.NegotiationRoom, br model.BuyRequest, listing model.Listing, lastText string, rounds int) (Outcome, bool, error) {
	d := Detect(lastText)

	switch d.Type {
	case DecisionPriceAgreed:
		if !Feasible(d.Price, br.MinPrice, br.MaxPrice, listing.ExpectedPrice) {
			// An agreed price outside the constraints is not a settlement;
			// keep bargaining.
			slog.InfoContext(ctx, "agreed price infeasible, continuing",
				"room_id", room.ID,
				"price", d.Price,
			)
			return Outcome{}, false, nil
		}
		price := d.Price
		if err := e.closeRoom(ctx, room.ID, model.RoomCompleted, &price, "price agreed within both parties' constraints"); err != nil {
			return Outcome{}, false, err
		}
		return Outcome{Decision: DecisionPriceAgreed, AgreedPrice: &price, Rounds: rounds}, true, nil

	case DecisionRejected:
		if err := e.closeRoom(ctx, room.ID, model.RoomRejected, nil, "counterparty rejected the negotiation"); err != nil {
			return Outcome{}, false, err
		}
		return Outcome{Decision: DecisionRejected, Rounds: rounds}, true, nil
	}

	// Acceptance without a checkable price, counter-offers, and plain text
	// all keep the loop going.
	return Outcome{}, false, nil
}

// exchange performs one request/reply round trip and appends both turns to
// the room log, publishing each.
func (e *Engine) exchange(ctx context.Context, room model.NegotiationRoom, br model.BuyRequest, text string, msgType model.MessageType, round int) (string, error) {
	reply, err := e.protocol.Send(ctx, room.SellerEndpoint, a2a.RoleUser, text)
	if err != nil {
		return "", err
	}

	sent := model.NegotiationMessage{
		ID:            ulid.Make().String(),
		RoomID:        room.ID,
		Sender:        model.SenderBuyer,
		SenderAgentID: br.BuyerAgentID,
		Content:       text,
		MessageType:   msgType,
		Metadata:      map[string]any{"round": round},
		CreatedAt:     time.Now().UTC(),
	}
	if err := e.appendAndPublish(ctx, sent); err != nil {
		return "", err
	}

	received := model.NegotiationMessage{
		ID:            ulid.Make().String(),
		RoomID:        room.ID,
		Sender:        model.SenderSeller,
		SenderAgentID: room.SellerAgentID,
		Content:       reply.Text,
		MessageType:   model.MessageResponse,
		Metadata:      map[string]any{"round": round, "a2a_message_id": reply.MessageID},
		CreatedAt:     time.Now().UTC(),
	}
	if err := e.appendAndPublish(ctx, received); err != nil {
		return "", err
	}

	return reply.Text, nil
}

func (e *Engine) appendAndPublish(ctx context.Context, msg model.NegotiationMessage) error {
	if err := e.store.AppendMessage(ctx, msg); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	e.events.Publish(ctx, events.EventNegotiationMessage, events.TopicRoom(msg.RoomID), events.NegotiationMessageData{
		ID:            msg.ID,
		RoomID:        msg.RoomID,
		Sender:        string(msg.Sender),
		SenderAgentID: msg.SenderAgentID,
		Content:       msg.Content,
		MessageType:   string(msg.MessageType),
		Metadata:      msg.Metadata,
		CreatedAt:     msg.CreatedAt,
	})
	return nil
}

func (e *Engine) closeRoom(ctx context.Context, roomID string, status model.RoomStatus, agreedPrice *float64, reason string) error {
	room, err := e.store.CloseRoom(ctx, roomID, status, agreedPrice)
	if err != nil {
		return fmt.Errorf("close room: %w", err)
	}

	e.events.Publish(ctx, events.EventNegotiationStatus, events.TopicRoom(roomID), events.RoomStatusData{
		RoomID: roomID,
		Status: string(room.Status),
	})

	decisionType := DecisionRejected
	if status == model.RoomCompleted {
		decisionType = DecisionPriceAgreed
	}
	e.events.Publish(ctx, events.EventNegotiationConcluded, events.TopicRoom(roomID), events.ConclusionData{
		RoomID:       roomID,
		DecisionType: string(decisionType),
		AgreedPrice:  agreedPrice,
		Reason:       reason,
	})

	slog.InfoContext(ctx, "negotiation concluded",
		"room_id", roomID,
		"status", string(status),
		"decision", string(decisionType),
	)
	return nil
}
