package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/humuhimi/hedera-hackathon-ai-theme-sub000/internal/model"
)

func now() time.Time { return time.Now().UTC() }

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	mu            sync.RWMutex
	buyRequests   map[string]model.BuyRequest
	listings      map[string]model.Listing
	rooms         map[string]model.NegotiationRoom
	roomByListing map[string]string
	messages      map[string][]model.NegotiationMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buyRequests:   make(map[string]model.BuyRequest),
		listings:      make(map[string]model.Listing),
		rooms:         make(map[string]model.NegotiationRoom),
		roomByListing: make(map[string]string),
		messages:      make(map[string][]model.NegotiationMessage),
	}
}

func (s *MemoryStore) SaveBuyRequest(ctx context.Context, br model.BuyRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buyRequests[br.ID] = br
	return nil
}

func (s *MemoryStore) GetBuyRequest(ctx context.Context, id string) (model.BuyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	br, ok := s.buyRequests[id]
	if !ok {
		return model.BuyRequest{}, ErrBuyRequestNotFound
	}
	return br, nil
}

func (s *MemoryStore) ListBuyRequests(ctx context.Context, buyerAgentID string, limit int) ([]model.BuyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.BuyRequest
	for _, br := range s.buyRequests {
		if buyerAgentID == "" || br.BuyerAgentID == buyerAgentID {
			out = append(out, br)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateSearchProgress(ctx context.Context, id string, progress model.SearchProgress, status model.BuyRequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	br, ok := s.buyRequests[id]
	if !ok {
		return ErrBuyRequestNotFound
	}
	br.Search = progress
	if status != "" {
		br.Status = status
	}
	br.UpdatedAt = now()
	s.buyRequests[id] = br
	return nil
}

func (s *MemoryStore) SaveListing(ctx context.Context, l model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
	return nil
}

func (s *MemoryStore) GetListing(ctx context.Context, id string) (model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return model.Listing{}, ErrListingNotFound
	}
	return l, nil
}

func (s *MemoryStore) ListOpenListings(ctx context.Context) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Listing
	for _, l := range s.listings {
		if l.Status == model.ListingOpen {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateListingStatus(ctx context.Context, id string, status model.ListingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return ErrListingNotFound
	}
	l.Status = status
	l.UpdatedAt = now()
	s.listings[id] = l
	return nil
}

func (s *MemoryStore) SaveRoom(ctx context.Context, room model.NegotiationRoom) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roomByListing[room.ListingID]; ok {
		return ErrRoomExists
	}
	s.rooms[room.ID] = room
	s.roomByListing[room.ListingID] = room.ID
	return nil
}

func (s *MemoryStore) GetRoom(ctx context.Context, id string) (model.NegotiationRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return model.NegotiationRoom{}, ErrRoomNotFound
	}
	return room, nil
}

func (s *MemoryStore) GetRoomByListing(ctx context.Context, listingID string) (model.NegotiationRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.roomByListing[listingID]
	if !ok {
		return model.NegotiationRoom{}, ErrRoomNotFound
	}
	return s.rooms[id], nil
}

func (s *MemoryStore) ClaimRoom(ctx context.Context, roomID string, claim RoomClaim) (model.NegotiationRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return model.NegotiationRoom{}, ErrRoomNotFound
	}
	if room.Status != model.RoomWaiting || room.BuyerAgentID != "" {
		return model.NegotiationRoom{}, ErrRoomClaimed
	}
	room.BuyerAgentID = claim.BuyerAgentID
	room.BuyerEndpoint = claim.BuyerEndpoint
	if claim.SellerEndpoint != "" {
		room.SellerEndpoint = claim.SellerEndpoint
	}
	room.Status = model.RoomActive
	room.UpdatedAt = now()
	s.rooms[roomID] = room
	return room, nil
}

func (s *MemoryStore) CloseRoom(ctx context.Context, roomID string, status model.RoomStatus, agreedPrice *float64) (model.NegotiationRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return model.NegotiationRoom{}, ErrRoomNotFound
	}
	if room.Status.Terminal() {
		return model.NegotiationRoom{}, ErrRoomTerminal
	}
	room.Status = status
	room.AgreedPrice = agreedPrice
	room.UpdatedAt = now()
	s.rooms[roomID] = room
	return room, nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, msg model.NegotiationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.RoomID] = append(s.messages[msg.RoomID], msg)
	return nil
}

func (s *MemoryStore) ListMessages(ctx context.Context, roomID string) ([]model.NegotiationMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[roomID]
	out := make([]model.NegotiationMessage, len(msgs))
	copy(out, msgs)
	// ULID ids sort in creation order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
